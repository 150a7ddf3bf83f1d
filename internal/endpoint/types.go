package endpoint

// Settings is the configuration bag a host passes to a publisher.
type Settings = map[string]any

// --- Validation Types ---

type ValidationResult struct {
	Valid           bool
	Message         string
	DetectedVersion string
	Code            string
}

// --- Shape Types ---

// PropertyType is the generic type a remote field collapses onto.
type PropertyType string

const (
	PropertyTypeBoolean PropertyType = "boolean"
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeString  PropertyType = "string"
)

// PropertyDefinition is one exposed field of a shape.
type PropertyDefinition struct {
	Name        string
	Description string
	Type        PropertyType
}

// ShapeDefinition maps one remote collection onto the generic model.
// Properties keep the remote field enumeration order.
type ShapeDefinition struct {
	Name        string
	Description string
	Properties  []PropertyDefinition
}

// PropertyNames returns the property names in declared order.
func (s ShapeDefinition) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	return names
}

// --- Data Point Types ---

// DataPointAction is the mutation a data point describes.
type DataPointAction string

const (
	ActionUpsert DataPointAction = "upsert"
)

// DataPoint is one record-level change event.
// Data holds every property of the owning shape; missing values are nil.
type DataPoint struct {
	Action DataPointAction `json:"action"`
	Entity string          `json:"entity"`
	Data   map[string]any  `json:"data"`
}

// --- Call Types ---

type InitializeResult struct {
	Success bool
	Shapes  int
}

type PublishRequest struct {
	ShapeName string
}

type PublishResult struct {
	Success    bool
	RunID      string
	DataPoints int64
}
