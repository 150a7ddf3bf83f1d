package sharepoint

import (
	"context"

	"github.com/nucleus/sharepoint-publisher/internal/endpoint"
)

// Remote field types exposed as properties.
const (
	FieldTypeText    = "Text"
	FieldTypeNote    = "Note"
	FieldTypeNumber  = "Number"
	FieldTypeInteger = "Integer"
	FieldTypeGuid    = "Guid"
	FieldTypeBoolean = "Boolean"
)

// PropertyTypeFor maps a remote field type onto the generic type set.
// ok is false for types that are not published.
func PropertyTypeFor(typeKind string) (endpoint.PropertyType, bool) {
	switch typeKind {
	case FieldTypeBoolean:
		return endpoint.PropertyTypeBoolean, true
	case FieldTypeNumber, FieldTypeInteger:
		return endpoint.PropertyTypeNumber, true
	case FieldTypeText, FieldTypeNote, FieldTypeGuid:
		return endpoint.PropertyTypeString, true
	default:
		return "", false
	}
}

// Discover builds a catalog with one shape per generic list of the site.
// Any session failure discards the partial result.
func Discover(ctx context.Context, session Session) (*endpoint.Catalog, error) {
	collections, err := session.ListCollections(ctx)
	if err != nil {
		return nil, endpoint.ConnectionError(err)
	}

	shapes := make([]endpoint.ShapeDefinition, 0, len(collections))
	for _, collection := range collections {
		if collection.Kind != KindGenericList {
			continue
		}

		fields, err := session.ListFields(ctx, collection)
		if err != nil {
			return nil, endpoint.ConnectionError(err)
		}

		shapes = append(shapes, buildShape(collection, fields))
	}

	return endpoint.NewCatalog(shapes), nil
}

func buildShape(collection Collection, fields []Field) endpoint.ShapeDefinition {
	shape := endpoint.ShapeDefinition{
		Name:        collection.Title,
		Description: collection.Description,
		Properties:  make([]endpoint.PropertyDefinition, 0, len(fields)),
	}

	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		propType, ok := PropertyTypeFor(field.TypeKind)
		if !ok {
			continue
		}

		name := NormalizeDiscoveredName(field.Title)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		shape.Properties = append(shape.Properties, endpoint.PropertyDefinition{
			Name:        name,
			Description: field.Description,
			Type:        propType,
		})
	}

	return shape
}
