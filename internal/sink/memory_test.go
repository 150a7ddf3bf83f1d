package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

func TestMemorySink_RecordsBatchesInOrder(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, s.Provision(ctx, "run-1", contactsShape()))
	require.NoError(t, s.Send(ctx, []endpoint.DataPoint{contactPoint("a", true, 1.0)}))
	require.NoError(t, s.Send(ctx, []endpoint.DataPoint{contactPoint("b", false, 2.0), contactPoint("c", nil, nil)}))
	require.NoError(t, s.Flush(ctx))

	batches := s.Batches()
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 1)
	assert.Len(t, batches[1], 2)

	points := s.DataPoints()
	require.Len(t, points, 3)
	assert.Equal(t, "c", points[2].Data["Title"])
	assert.Equal(t, "run-1", s.RunID())
	assert.Equal(t, "Contacts", s.Shape().Name)
	assert.Equal(t, 1, s.Flushes())

	s.Reset()
	assert.Empty(t, s.DataPoints())
	assert.Equal(t, 0, s.Flushes())
}

func TestMemorySink_CopiesData(t *testing.T) {
	s := NewMemorySink()
	dp := contactPoint("a", true, 1.0)
	require.NoError(t, s.Send(context.Background(), []endpoint.DataPoint{dp}))

	dp.Data["Title"] = "changed"
	assert.Equal(t, "a", s.DataPoints()[0].Data["Title"])
}

func TestMemorySink_RejectsCancelledContext(t *testing.T) {
	s := NewMemorySink()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.Send(ctx, []endpoint.DataPoint{contactPoint("a", true, 1.0)}))
}
