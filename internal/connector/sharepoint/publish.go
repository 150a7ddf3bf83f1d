package sharepoint

import (
	"context"
	"fmt"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// BuildDataPoint converts one record into an upsert of shape. Every property
// is present in Data; values are read verbatim under the encoded key.
func BuildDataPoint(shape endpoint.ShapeDefinition, record Record) endpoint.DataPoint {
	data := make(map[string]any, len(shape.Properties))
	for _, prop := range shape.Properties {
		if v, ok := record[EncodeFieldName(prop.Name)]; ok {
			data[prop.Name] = v
		} else {
			data[prop.Name] = nil
		}
	}
	return endpoint.DataPoint{
		Action: endpoint.ActionUpsert,
		Entity: shape.Name,
		Data:   data,
	}
}

// Stream fetches every record of shape and sends each one to sink as its own
// batch, in fetch order. It returns how many data points the sink accepted.
func Stream(ctx context.Context, session Session, shape endpoint.ShapeDefinition, sink endpoint.Sink) (int64, error) {
	collection, err := session.CollectionByTitle(ctx, shape.Name)
	if err != nil {
		return 0, endpoint.ConnectionError(err)
	}

	records, err := session.FetchAllRecords(ctx, collection)
	if err != nil {
		return 0, endpoint.ConnectionError(err)
	}

	var sent int64
	for _, record := range records {
		dp := BuildDataPoint(shape, record)
		if err := sink.Send(ctx, []endpoint.DataPoint{dp}); err != nil {
			return sent, endpoint.WrapError(endpoint.CodeSinkWrite, false,
				fmt.Errorf("send data point %d of %q: %w", sent+1, shape.Name, err))
		}
		sent++
	}
	return sent, nil
}
