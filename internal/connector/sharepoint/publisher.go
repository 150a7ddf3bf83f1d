package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
	"github.com/nucleus/sharepoint-publisher/internal/logging"
)

// =============================================================================
// SHAREPOINT PUBLISHER
// Implements endpoint.Publisher
// =============================================================================

// TemplateID is the registry key of the SharePoint publisher.
const TemplateID = "http.sharepoint"

var _ endpoint.Publisher = (*Publisher)(nil)

// Publisher exposes the generic lists of one SharePoint site as shapes.
//
// The catalog and the settings recorded by Initialize are the only state kept
// across calls. Both are replaced wholesale, never mutated.
type Publisher struct {
	logger  *logging.Logger
	open    Opener
	catalog atomic.Pointer[endpoint.Catalog]
	config  atomic.Pointer[Config]
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithOpener replaces the REST session opener.
func WithOpener(open Opener) Option {
	return func(p *Publisher) {
		p.open = open
	}
}

// New creates a publisher.
func New(deps endpoint.Dependencies, opts ...Option) *Publisher {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Publisher{
		logger: logger.Named("sharepoint"),
		open:   NewRESTOpener(deps.Client),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// =============================================================================
// ENDPOINT INTERFACE
// =============================================================================

// ID returns the template ID.
func (p *Publisher) ID() string {
	return TemplateID
}

// GetDescriptor returns the SharePoint endpoint descriptor.
func (p *Publisher) GetDescriptor() *endpoint.Descriptor {
	return &endpoint.Descriptor{
		ID:          TemplateID,
		Family:      "http",
		Title:       "SharePoint Lists",
		Vendor:      "Microsoft",
		Description: "Publishes SharePoint generic lists as shapes and their items as upserts",
		Categories:  []string{"collaboration", "lists"},
		Protocols:   []string{"https", "http"},
		DocsURL:     "https://learn.microsoft.com/sharepoint/dev/sp-add-ins/working-with-lists-and-list-items-with-rest",
		Fields: []*endpoint.FieldDescriptor{
			{Key: SettingSiteURL, Label: "Site URL", ValueType: "string", Required: true, Semantic: "URL", Placeholder: "https://intranet.example.com/sites/team"},
			{Key: SettingUsername, Label: "Username", ValueType: "string", Required: false, Semantic: "USERNAME"},
			{Key: SettingPassword, Label: "Password", ValueType: "password", Required: false, Sensitive: true, Semantic: "PASSWORD"},
			{Key: SettingDomain, Label: "Domain", ValueType: "string", Required: false, Semantic: "GENERIC", Description: "Windows domain for NTLM sign-in"},
		},
	}
}

// ValidateConfig opens a session and loads the site.
func (p *Publisher) ValidateConfig(ctx context.Context, settings endpoint.Settings) (*endpoint.ValidationResult, error) {
	cfg, err := ParseConfig(settings)
	if err != nil {
		return &endpoint.ValidationResult{
			Valid:   false,
			Message: err.Error(),
			Code:    endpoint.CodeInvalidConfig,
		}, nil
	}

	session, err := p.open(ctx, cfg)
	if err != nil {
		return &endpoint.ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("Connection failed: %v", err),
			Code:    endpoint.CodeConnection,
		}, nil
	}
	defer p.closeSession(ctx, session)

	msg := "Connection successful"
	if titled, ok := session.(interface{ WebTitle() string }); ok && titled.WebTitle() != "" {
		msg = fmt.Sprintf("Connected to %s", titled.WebTitle())
	}
	return &endpoint.ValidationResult{
		Valid:   true,
		Message: msg,
	}, nil
}

// Close releases resources. Sessions never outlive a call, so there is
// nothing to release.
func (p *Publisher) Close() error {
	return nil
}

// =============================================================================
// PUBLISHER INTERFACE
// =============================================================================

// Catalog returns the current catalog, or nil before the first discovery.
func (p *Publisher) Catalog() *endpoint.Catalog {
	return p.catalog.Load()
}

// Initialize records the settings used by Publish and discovers the catalog
// unless one is already held.
func (p *Publisher) Initialize(ctx context.Context, settings endpoint.Settings) (*endpoint.InitializeResult, error) {
	cfg, err := ParseConfig(settings)
	if err != nil {
		return nil, err
	}
	p.config.Store(cfg)

	catalog := p.catalog.Load()
	if catalog == nil {
		catalog, err = p.discover(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	p.logger.Info(ctx, "publisher initialized",
		zap.String("site_url", cfg.SiteURL),
		zap.String("username", cfg.Username),
		logging.RedactedString("password", cfg.Password),
		zap.Int("shapes", catalog.Len()))

	return &endpoint.InitializeResult{Success: true, Shapes: catalog.Len()}, nil
}

// DiscoverShapes builds a fresh catalog and makes it the current one.
func (p *Publisher) DiscoverShapes(ctx context.Context, settings endpoint.Settings) (*endpoint.Catalog, error) {
	cfg, err := ParseConfig(settings)
	if err != nil {
		return nil, err
	}
	return p.discover(ctx, cfg)
}

func (p *Publisher) discover(ctx context.Context, cfg *Config) (catalog *endpoint.Catalog, err error) {
	start := time.Now()
	defer func() {
		RecordDiscovery(time.Since(start).Seconds(), catalog.Len(), err)
	}()

	session, err := p.open(ctx, cfg)
	if err != nil {
		p.logger.Error(ctx, "open session failed", zap.String("site_url", cfg.SiteURL), zap.Error(err))
		return nil, endpoint.ConnectionError(err)
	}
	defer p.closeSession(ctx, session)

	catalog, err = Discover(ctx, session)
	if err != nil {
		p.logger.Error(ctx, "discovery failed", zap.String("site_url", cfg.SiteURL), zap.Error(err))
		return nil, err
	}

	p.catalog.Store(catalog)
	p.logger.Info(ctx, "shapes discovered",
		zap.Int("shapes", catalog.Len()),
		zap.Strings("names", catalog.Names()),
		zap.Duration("duration", time.Since(start)))

	return catalog, nil
}

// Publish streams every record of the requested shape to sink.
func (p *Publisher) Publish(ctx context.Context, req *endpoint.PublishRequest, sink endpoint.Sink) (*endpoint.PublishResult, error) {
	if req == nil || req.ShapeName == "" {
		return nil, endpoint.WrapError(endpoint.CodeInvalidConfig, false, errors.New("shape name is required"))
	}
	if sink == nil {
		return nil, endpoint.WrapError(endpoint.CodeInvalidConfig, false, errors.New("sink is required"))
	}

	cfg := p.config.Load()
	if cfg == nil {
		return nil, endpoint.WrapError(endpoint.CodeNotInitialized, false, endpoint.ErrNotInitialized)
	}

	shape, ok := p.catalog.Load().Lookup(req.ShapeName)
	if !ok {
		RecordPublish(req.ShapeName, 0, "unknown_shape")
		p.logger.Warn(ctx, "publish requested for unknown shape", zap.String("shape", req.ShapeName))
		return nil, endpoint.UnknownShapeError(req.ShapeName)
	}

	runID := uuid.NewString()
	ctx = logging.WithShape(logging.WithRunID(ctx, runID), shape.Name)
	start := time.Now()

	sent, err := p.publish(ctx, cfg, runID, shape, sink)
	if err != nil {
		RecordPublish(shape.Name, sent, "error")
		p.logger.Error(ctx, "publish failed", zap.Int64("data_points", sent), zap.Error(err))
		return nil, err
	}

	RecordPublish(shape.Name, sent, "success")
	p.logger.Info(ctx, "publish completed",
		zap.Int64("data_points", sent),
		zap.Duration("duration", time.Since(start)))

	return &endpoint.PublishResult{Success: true, RunID: runID, DataPoints: sent}, nil
}

func (p *Publisher) publish(ctx context.Context, cfg *Config, runID string, shape endpoint.ShapeDefinition, sink endpoint.Sink) (int64, error) {
	if ps, ok := sink.(endpoint.ProvisioningSink); ok {
		if err := ps.Provision(ctx, runID, shape); err != nil {
			return 0, endpoint.WrapError(endpoint.CodeSinkWrite, true, fmt.Errorf("provision sink: %w", err))
		}
	}

	session, err := p.open(ctx, cfg)
	if err != nil {
		return 0, endpoint.ConnectionError(err)
	}
	defer p.closeSession(ctx, session)

	sent, err := Stream(ctx, session, shape, sink)
	if err != nil {
		return sent, err
	}

	if fs, ok := sink.(endpoint.FlushingSink); ok {
		if err := fs.Flush(ctx); err != nil {
			return sent, endpoint.WrapError(endpoint.CodeSinkWrite, true, fmt.Errorf("flush sink: %w", err))
		}
	}
	return sent, nil
}

func (p *Publisher) closeSession(ctx context.Context, session Session) {
	if err := session.Close(); err != nil {
		p.logger.Warn(ctx, "close session failed", zap.Error(err))
	}
}
