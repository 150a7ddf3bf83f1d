// Package logging provides structured, context-aware logging built on zap.
//
// Loggers carry constant fields from configuration and pull correlation data
// (publish run ID, shape name) out of the context on every call:
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.Info(ctx, "publish started", zap.String("site", siteURL))
//
// Secrets are never logged verbatim; use RedactedString for values such as
// passwords.
package logging
