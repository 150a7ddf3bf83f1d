package endpoint

// Catalog is the ordered, immutable set of shapes produced by one discovery.
// Re-discovery builds a new Catalog; an existing one is never mutated.
type Catalog struct {
	shapes []ShapeDefinition
	index  map[string]int
}

// NewCatalog builds a catalog from shapes in enumeration order.
// When two shapes share a name the first one wins the lookup.
func NewCatalog(shapes []ShapeDefinition) *Catalog {
	c := &Catalog{
		shapes: make([]ShapeDefinition, len(shapes)),
		index:  make(map[string]int, len(shapes)),
	}
	for i, s := range shapes {
		c.shapes[i] = cloneShape(s)
		if _, exists := c.index[s.Name]; !exists {
			c.index[s.Name] = i
		}
	}
	return c
}

// Shapes returns a copy of the shapes in enumeration order.
func (c *Catalog) Shapes() []ShapeDefinition {
	if c == nil {
		return nil
	}
	out := make([]ShapeDefinition, len(c.shapes))
	for i, s := range c.shapes {
		out[i] = cloneShape(s)
	}
	return out
}

// Lookup resolves a shape by exact name.
func (c *Catalog) Lookup(name string) (ShapeDefinition, bool) {
	if c == nil {
		return ShapeDefinition{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return ShapeDefinition{}, false
	}
	return cloneShape(c.shapes[i]), true
}

// Len returns the number of shapes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.shapes)
}

// Names returns the shape names in enumeration order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.shapes))
	for _, s := range c.shapes {
		names = append(names, s.Name)
	}
	return names
}

func cloneShape(s ShapeDefinition) ShapeDefinition {
	props := make([]PropertyDefinition, len(s.Properties))
	copy(props, s.Properties)
	s.Properties = props
	return s
}
