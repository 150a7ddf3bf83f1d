package sink

import (
	"time"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// Envelope is the serialized form of a data point outside the process.
type Envelope struct {
	RunID     string                   `json:"run_id,omitempty"`
	Action    endpoint.DataPointAction `json:"action"`
	Entity    string                   `json:"entity"`
	Data      map[string]any           `json:"data"`
	EmittedAt time.Time                `json:"emitted_at"`
}

func newEnvelope(runID string, dp endpoint.DataPoint, now time.Time) Envelope {
	return Envelope{
		RunID:     runID,
		Action:    dp.Action,
		Entity:    dp.Entity,
		Data:      dp.Data,
		EmittedAt: now.UTC(),
	}
}
