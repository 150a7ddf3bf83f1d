package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

var (
	_ endpoint.ProvisioningSink = (*NATSSink)(nil)
	_ endpoint.FlushingSink     = (*NATSSink)(nil)
)

// DefaultFlushTimeout bounds Flush when the caller's context has no deadline.
const DefaultFlushTimeout = 10 * time.Second

// NATSSink publishes every data point as a JSON Envelope on
// <prefix>.<entity>.
type NATSSink struct {
	nc           *nats.Conn
	prefix       string
	now          func() time.Time
	flushTimeout time.Duration

	mu    sync.Mutex
	runID string
}

// ConnectNATS dials a NATS server with reconnects enabled.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("sharepoint-publisher"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, wrapError(CodeEndpointUnreachable, true, fmt.Errorf("connect to NATS at %s: %w", url, err))
	}
	return nc, nil
}

// NewNATSSink creates a sink publishing on nc.
func NewNATSSink(nc *nats.Conn, subjectPrefix string) *NATSSink {
	if subjectPrefix == "" {
		subjectPrefix = "datapoints"
	}
	return &NATSSink{
		nc:           nc,
		prefix:       strings.TrimSuffix(subjectPrefix, "."),
		now:          time.Now,
		flushTimeout: DefaultFlushTimeout,
	}
}

// Subject returns the subject data points of entity are published on.
func (s *NATSSink) Subject(entity string) string {
	return s.prefix + "." + SubjectToken(entity)
}

func (s *NATSSink) Provision(ctx context.Context, runID string, shape endpoint.ShapeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	return nil
}

func (s *NATSSink) Send(ctx context.Context, batch []endpoint.DataPoint) error {
	s.mu.Lock()
	runID := s.runID
	s.mu.Unlock()

	for _, dp := range batch {
		data, err := json.Marshal(newEnvelope(runID, dp, s.now()))
		if err != nil {
			return wrapError(CodeWriteFailed, false, fmt.Errorf("marshal data point: %w", err))
		}
		if err := s.nc.Publish(s.Subject(dp.Entity), data); err != nil {
			return wrapError(CodeWriteFailed, true, fmt.Errorf("publish data point: %w", err))
		}
	}
	return nil
}

// Flush waits until the server has processed everything published. nats.go
// requires a deadline, so one is added when ctx carries none.
func (s *NATSSink) Flush(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.flushTimeout)
		defer cancel()
	}
	if err := s.nc.FlushWithContext(ctx); err != nil {
		return wrapError(CodeWriteFailed, true, fmt.Errorf("flush NATS connection: %w", err))
	}
	return nil
}

// Close drains and closes the connection.
func (s *NATSSink) Close() error {
	return s.nc.Drain()
}

// SubjectToken makes an entity name usable as one subject token.
func SubjectToken(entity string) string {
	if entity == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, entity)
}
