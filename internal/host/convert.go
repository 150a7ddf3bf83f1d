package host

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

func settingsFrom(req *structpb.Struct) endpoint.Settings {
	if req == nil {
		return endpoint.Settings{}
	}
	v, ok := req.GetFields()["settings"]
	if !ok || v.GetStructValue() == nil {
		return endpoint.Settings{}
	}
	return v.GetStructValue().AsMap()
}

func catalogToStruct(catalog *endpoint.Catalog) (*structpb.Struct, error) {
	shapes := make([]any, 0, catalog.Len())
	for _, s := range catalog.Shapes() {
		props := make([]any, 0, len(s.Properties))
		for _, p := range s.Properties {
			props = append(props, map[string]any{
				"name":        p.Name,
				"description": p.Description,
				"type":        string(p.Type),
			})
		}
		shapes = append(shapes, map[string]any{
			"name":        s.Name,
			"description": s.Description,
			"properties":  props,
		})
	}
	return structpb.NewStruct(map[string]any{"shapes": shapes})
}

// CatalogFromStruct rebuilds a catalog from a DiscoverShapes response.
func CatalogFromStruct(resp *structpb.Struct) *endpoint.Catalog {
	var shapes []endpoint.ShapeDefinition
	for _, sv := range resp.GetFields()["shapes"].GetListValue().GetValues() {
		sf := sv.GetStructValue().GetFields()
		shape := endpoint.ShapeDefinition{
			Name:        sf["name"].GetStringValue(),
			Description: sf["description"].GetStringValue(),
		}
		for _, pv := range sf["properties"].GetListValue().GetValues() {
			pf := pv.GetStructValue().GetFields()
			shape.Properties = append(shape.Properties, endpoint.PropertyDefinition{
				Name:        pf["name"].GetStringValue(),
				Description: pf["description"].GetStringValue(),
				Type:        endpoint.PropertyType(pf["type"].GetStringValue()),
			})
		}
		shapes = append(shapes, shape)
	}
	return endpoint.NewCatalog(shapes)
}

func dataPointToStruct(dp endpoint.DataPoint) (*structpb.Struct, error) {
	data := make(map[string]*structpb.Value, len(dp.Data))
	for k, v := range dp.Data {
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		data[k] = val
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"action": structpb.NewStringValue(string(dp.Action)),
		"entity": structpb.NewStringValue(dp.Entity),
		"data":   structpb.NewStructValue(&structpb.Struct{Fields: data}),
	}}, nil
}

// DataPointFromStruct decodes one Publish stream message.
func DataPointFromStruct(msg *structpb.Struct) endpoint.DataPoint {
	f := msg.GetFields()
	data := map[string]any{}
	if s := f["data"].GetStructValue(); s != nil {
		data = s.AsMap()
	}
	return endpoint.DataPoint{
		Action: endpoint.DataPointAction(f["action"].GetStringValue()),
		Entity: f["entity"].GetStringValue(),
		Data:   data,
	}
}

// toValue converts a remote value. Types structpb does not know are passed
// through their JSON form.
func toValue(v any) (*structpb.Value, error) {
	if val, err := structpb.NewValue(v); err == nil {
		return val, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return structpb.NewValue(generic)
}
