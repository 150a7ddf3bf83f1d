package sink

import (
	"context"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

var (
	_ endpoint.ProvisioningSink = (*MultiSink)(nil)
	_ endpoint.FlushingSink     = (*MultiSink)(nil)
)

// MultiSink forwards to every sink in order and stops at the first error.
type MultiSink struct {
	sinks []endpoint.Sink
}

// NewMultiSink fans out to sinks, skipping nils.
func NewMultiSink(sinks ...endpoint.Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Provision(ctx context.Context, runID string, shape endpoint.ShapeDefinition) error {
	for _, s := range m.sinks {
		if ps, ok := s.(endpoint.ProvisioningSink); ok {
			if err := ps.Provision(ctx, runID, shape); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) Send(ctx context.Context, batch []endpoint.DataPoint) error {
	for _, s := range m.sinks {
		if err := s.Send(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) Flush(ctx context.Context) error {
	for _, s := range m.sinks {
		if fs, ok := s.(endpoint.FlushingSink); ok {
			if err := fs.Flush(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
