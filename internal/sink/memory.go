package sink

import (
	"context"
	"sync"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

var (
	_ endpoint.ProvisioningSink = (*MemorySink)(nil)
	_ endpoint.FlushingSink     = (*MemorySink)(nil)
)

// MemorySink keeps every batch it receives in process memory.
type MemorySink struct {
	mu      sync.Mutex
	batches [][]endpoint.DataPoint
	runID   string
	shape   endpoint.ShapeDefinition
	flushes int
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Provision(ctx context.Context, runID string, shape endpoint.ShapeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.shape = shape
	return nil
}

func (s *MemorySink) Send(ctx context.Context, batch []endpoint.DataPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, cloneBatch(batch))
	return nil
}

func (s *MemorySink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

// Batches returns the received batches in arrival order.
func (s *MemorySink) Batches() [][]endpoint.DataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]endpoint.DataPoint, len(s.batches))
	for i, b := range s.batches {
		out[i] = cloneBatch(b)
	}
	return out
}

// DataPoints returns every received data point, flattened.
func (s *MemorySink) DataPoints() []endpoint.DataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []endpoint.DataPoint
	for _, b := range s.batches {
		out = append(out, cloneBatch(b)...)
	}
	return out
}

// RunID returns the run announced by the last Provision.
func (s *MemorySink) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Shape returns the shape announced by the last Provision.
func (s *MemorySink) Shape() endpoint.ShapeDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shape
}

// Flushes returns how many times Flush was called.
func (s *MemorySink) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Reset drops everything received so far.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = nil
	s.runID = ""
	s.shape = endpoint.ShapeDefinition{}
	s.flushes = 0
}

func cloneBatch(batch []endpoint.DataPoint) []endpoint.DataPoint {
	out := make([]endpoint.DataPoint, len(batch))
	for i, dp := range batch {
		data := make(map[string]any, len(dp.Data))
		for k, v := range dp.Data {
			data[k] = v
		}
		dp.Data = data
		out[i] = dp
	}
	return out
}
