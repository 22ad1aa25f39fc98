package battle

// AnimationCatalog resolves animation names to their logical duration.
type AnimationCatalog interface {
	Duration(name string) (float64, bool)
}

// Catalog is a fixed AnimationCatalog.
type Catalog map[string]float64

func (c Catalog) Duration(name string) (float64, bool) {
	d, ok := c[name]
	return d, ok
}
