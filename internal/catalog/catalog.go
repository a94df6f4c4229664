// Package catalog holds the suggested entry categories and industries shown
// to users. Suggestions are advisory; entries accept any category.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"esgreporter/internal/core"
)

type Catalog struct {
	Emissions  []string `yaml:"emissions" json:"emissions"`
	Water      []string `yaml:"water" json:"water"`
	Waste      []string `yaml:"waste" json:"waste"`
	Industries []string `yaml:"industries" json:"industries"`
}

func Default() Catalog {
	return Catalog{
		Emissions: []string{"electricity", "fuel", "travel", "shipping", "other"},
		Water:     []string{"operations", "facilities", "irrigation", "other"},
		Waste:     []string{"landfill", "recycled", "composted", "hazardous", "other"},
		Industries: []string{
			"Manufacturing", "Retail", "Technology", "Healthcare", "Food & Beverage",
			"Construction", "Transportation", "Agriculture", "Other",
		},
	}
}

// Categories returns the suggestions for kind.
func (c Catalog) Categories(kind core.MetricKind) []string {
	switch kind {
	case core.Emissions:
		return c.Emissions
	case core.Water:
		return c.Water
	case core.Waste:
		return c.Waste
	}
	return nil
}

// Load returns the default catalog with any list present in the YAML file at
// path replacing its default. An empty path yields the defaults.
func Load(path string) (Catalog, error) {
	cat := Default()
	if strings.TrimSpace(path) == "" {
		return cat, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read categories file: %w", err)
	}

	var override Catalog
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Catalog{}, fmt.Errorf("parse categories file %s: %w", path, err)
	}

	merge(&cat.Emissions, override.Emissions)
	merge(&cat.Water, override.Water)
	merge(&cat.Waste, override.Waste)
	merge(&cat.Industries, override.Industries)
	return cat, nil
}

func merge(dst *[]string, src []string) {
	cleaned := dedupe(src)
	if len(cleaned) > 0 {
		*dst = cleaned
	}
}

// dedupe trims values and drops blanks and repeats, keeping input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
