package nqs

// District is one scoreable area in the bundled datasets.
type District struct {
	Key  string  `yaml:"key" json:"key"`
	City string  `yaml:"city" json:"city"`
	Name string  `yaml:"name" json:"name"`
	Lon  float64 `yaml:"lon" json:"lon"`
	Lat  float64 `yaml:"lat" json:"lat"`
}

// ScoreTable maps district keys to a 0..100 scalar.
type ScoreTable map[string]float64

// Get returns the district's value, if present.
func (t ScoreTable) Get(key string) (float64, bool) {
	v, ok := t[key]
	return v, ok
}

// Dataset bundles the district registry with its per-category tables.
// It is built once at startup and never mutated afterwards.
type Dataset struct {
	Districts []District
	Tables    map[Category]ScoreTable
}

// Table returns the table for category, or an empty one.
func (d Dataset) Table(c Category) ScoreTable {
	if t, ok := d.Tables[c]; ok {
		return t
	}
	return ScoreTable{}
}
