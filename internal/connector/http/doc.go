// Package http provides the REST client remote sessions are built on.
//
// Structure:
//
//	client.go     - HTTP client with rate limiting and retry
//	auth.go       - Authentication strategies (none, NTLM)
//	paginator.go  - OData next-link pagination
package http
