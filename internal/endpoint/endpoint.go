// Package endpoint defines the contracts a shape publisher implements and the
// host consumes.
//
// Architecture:
//
//	Endpoint   - Base contract (ID, ValidateConfig, Descriptor, Close)
//	Publisher  - Shape discovery and record publishing (Initialize, DiscoverShapes, Publish)
//	Sink       - Downstream destination for data points (Send)
//
// The host talks to publishers only through these interfaces; transport
// adapters live outside this package.
package endpoint

import "context"

// Endpoint is the base contract that every connector implements.
type Endpoint interface {
	// ID returns the unique template identifier (e.g., "http.sharepoint").
	ID() string

	// ValidateConfig tests settings validity and connectivity.
	ValidateConfig(ctx context.Context, settings Settings) (*ValidationResult, error)

	// GetDescriptor returns metadata about this endpoint type.
	GetDescriptor() *Descriptor

	// Close releases any resources held by the endpoint.
	Close() error
}

// Publisher exposes a remote store as a catalog of shapes and streams its
// records as data points.
type Publisher interface {
	Endpoint

	// Initialize records the connection settings and discovers the catalog
	// when none is held yet.
	Initialize(ctx context.Context, settings Settings) (*InitializeResult, error)

	// DiscoverShapes connects to the remote store, builds a fresh catalog and
	// makes it the current one.
	DiscoverShapes(ctx context.Context, settings Settings) (*Catalog, error)

	// Publish streams every record of one shape to the sink.
	Publish(ctx context.Context, req *PublishRequest, sink Sink) (*PublishResult, error)
}

// Sink accepts data points produced by a publish run.
// A nil error means the batch was accepted.
type Sink interface {
	Send(ctx context.Context, batch []DataPoint) error
}

// ProvisioningSink is told which shape a run will carry before the first Send.
type ProvisioningSink interface {
	Sink
	Provision(ctx context.Context, runID string, shape ShapeDefinition) error
}

// FlushingSink buffers data points and persists them on Flush, which the
// publisher calls once a run has streamed every record.
type FlushingSink interface {
	Sink
	Flush(ctx context.Context) error
}
