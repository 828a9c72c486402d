package model

// Record is a stored command template.
type Record struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Catalog maps each category to its records in insertion order.
type Catalog map[Category][]Record

// NewCatalog returns the default empty catalog with every known category present.
func NewCatalog() Catalog {
	c := make(Catalog, len(Categories))
	for _, cat := range Categories {
		c[cat] = []Record{}
	}
	return c
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for cat, recs := range c {
		out[cat] = append([]Record{}, recs...)
	}
	return out
}

// Len returns the total number of records across categories.
func (c Catalog) Len() int {
	n := 0
	for _, recs := range c {
		n += len(recs)
	}
	return n
}
