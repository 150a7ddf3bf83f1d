package endpoint

// Descriptor provides metadata about an endpoint type.
// Hosts use it to render settings forms.
type Descriptor struct {
	ID          string
	Family      string
	Title       string
	Vendor      string
	Description string
	Categories  []string
	Protocols   []string
	DocsURL     string
	Fields      []*FieldDescriptor
}

// FieldDescriptor defines a settings field.
type FieldDescriptor struct {
	Key         string
	Label       string
	ValueType   string // "string", "password"
	Required    bool
	Semantic    string // "GENERIC", "URL", "USERNAME", "PASSWORD"
	Description string
	Placeholder string
	Sensitive   bool
}
