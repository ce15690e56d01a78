// Package catalog loads product records for the listing page.
//
// The catalog is the viewer's upstream collaborator: it supplies model
// descriptors and preview fallbacks but knows nothing about rendering.
package catalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModelDescriptor identifies one loadable 3D asset variant.
// Immutable once created; a new URL means "switch asset".
type ModelDescriptor struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

// ProductPreviewConfig holds the static presentation for a card when no
// live 3D preview is available.
type ProductPreviewConfig struct {
	FallbackImage string `yaml:"fallback_image"` // Path to a static image
	PreviewColor  string `yaml:"preview_color"`  // "#RRGGBB" placeholder color
	ProductName   string `yaml:"product_name"`
}

// ProductRecord is one product in the listing.
type ProductRecord struct {
	ID      string               `yaml:"id"`
	Name    string               `yaml:"name"`
	Price   string               `yaml:"price"`
	Preview ProductPreviewConfig `yaml:"preview"`
	Model   *ModelDescriptor     `yaml:"model,omitempty"` // nil = no 3D preview
}

// Catalog is the full product listing.
type Catalog struct {
	Products []ProductRecord `yaml:"products"`
}

// Load reads and validates a catalog YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return &c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if p.ID == "" {
			return fmt.Errorf("product %d: missing id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = true

		if p.Name == "" {
			return fmt.Errorf("product %q: missing name", p.ID)
		}
		if p.Model != nil && p.Model.URL == "" {
			return fmt.Errorf("product %q: model without url", p.ID)
		}
	}
	return nil
}

// ParseColor converts a "#RRGGBB" string to normalized RGB components.
// Unparseable values fall back to a neutral gray.
func ParseColor(s string) [3]float32 {
	gray := [3]float32{0.5, 0.5, 0.5}

	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return gray
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return gray
	}

	return [3]float32{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}
}
