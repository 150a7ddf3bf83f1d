package sink

import (
	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

func contactsShape() endpoint.ShapeDefinition {
	return endpoint.ShapeDefinition{
		Name: "Contacts",
		Properties: []endpoint.PropertyDefinition{
			{Name: "Title", Type: endpoint.PropertyTypeString},
			{Name: "Email Address", Type: endpoint.PropertyTypeString},
			{Name: "Active", Type: endpoint.PropertyTypeBoolean},
			{Name: "Score", Type: endpoint.PropertyTypeNumber},
		},
	}
}

func contactPoint(title string, active any, score any) endpoint.DataPoint {
	return endpoint.DataPoint{
		Action: endpoint.ActionUpsert,
		Entity: "Contacts",
		Data: map[string]any{
			"Title":         title,
			"Email Address": nil,
			"Active":        active,
			"Score":         score,
		},
	}
}
