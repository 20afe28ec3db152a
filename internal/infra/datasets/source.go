package datasets

import (
	"context"
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
)

//go:embed data/districts.yaml
var embeddedDistricts []byte

// Source loads the district dataset at startup.
type Source interface {
	Load(ctx context.Context) (nqs.Dataset, error)
}

// EmbeddedSource serves the dataset compiled into the binary.
type EmbeddedSource struct{}

// NewEmbeddedSource returns the built-in dataset source.
func NewEmbeddedSource() EmbeddedSource {
	return EmbeddedSource{}
}

// Load implements Source.
func (EmbeddedSource) Load(_ context.Context) (nqs.Dataset, error) {
	return Parse(embeddedDistricts)
}

type datasetFile struct {
	Districts []nqs.District                `yaml:"districts"`
	Tables    map[string]map[string]float64 `yaml:"tables"`
}

// Parse decodes and validates a YAML dataset document.
func Parse(data []byte) (nqs.Dataset, error) {
	var file datasetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nqs.Dataset{}, fmt.Errorf("parse dataset: %w", err)
	}
	return build(file.Districts, file.Tables)
}

func build(districts []nqs.District, raw map[string]map[string]float64) (nqs.Dataset, error) {
	seen := make(map[string]struct{}, len(districts))
	for i, d := range districts {
		if d.Key == "" {
			return nqs.Dataset{}, fmt.Errorf("district #%d has no key", i)
		}
		if _, dup := seen[d.Key]; dup {
			return nqs.Dataset{}, fmt.Errorf("duplicate district key %q", d.Key)
		}
		seen[d.Key] = struct{}{}
	}

	known := make(map[nqs.Category]struct{}, len(nqs.Categories))
	for _, c := range nqs.Categories {
		known[c] = struct{}{}
	}

	tables := make(map[nqs.Category]nqs.ScoreTable, len(raw))
	for name, values := range raw {
		category := nqs.Category(name)
		if _, ok := known[category]; !ok {
			return nqs.Dataset{}, fmt.Errorf("unknown dataset table %q", name)
		}
		table := make(nqs.ScoreTable, len(values))
		for key, score := range values {
			if math.IsNaN(score) || score < 0 || score > 100 {
				return nqs.Dataset{}, fmt.Errorf("table %s: district %q score %v outside 0..100", name, key, score)
			}
			table[key] = score
		}
		tables[category] = table
	}
	return nqs.Dataset{Districts: districts, Tables: tables}, nil
}
