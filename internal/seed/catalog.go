// Package seed loads the quiz/product catalog from YAML. The catalog is
// pure data: parsing and validation live here, persistence belongs to the
// catalog service.
package seed

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultFS embed.FS

type Choice struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type Question struct {
	ID       string   `yaml:"id"`
	Prompt   string   `yaml:"prompt"`
	Category string   `yaml:"category"`
	Multi    bool     `yaml:"multi"`
	Required bool     `yaml:"required"`
	Choices  []Choice `yaml:"choices"`
}

type Ingredient struct {
	Name      string `yaml:"name"`
	Purpose   string `yaml:"purpose"`
	Highlight bool   `yaml:"highlight"`
}

type Product struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Brand       string       `yaml:"brand"`
	Category    string       `yaml:"category"`
	Description string       `yaml:"description"`
	Price       *float64     `yaml:"price"`
	Rating      *float64     `yaml:"rating"`
	ImageURL    string       `yaml:"image_url"`
	Ingredients []Ingredient `yaml:"ingredients"`
	Tags        []string     `yaml:"tags"`
	Concerns    []string     `yaml:"concerns"`
	SkinTypes   []string     `yaml:"skin_types"`
	AvoidFor    []string     `yaml:"avoid_for"`
	Published   *bool        `yaml:"published"`
}

// IsPublished defaults to true when the seed file omits the flag.
func (p Product) IsPublished() bool { return p.Published == nil || *p.Published }

type Catalog struct {
	Questions []Question `yaml:"questions"`
	Products  []Product  `yaml:"products"`
}

// Load reads the catalog at path, or the compiled-in default when path is
// empty. The result is validated.
func Load(path string) (Catalog, error) {
	var raw []byte
	var err error
	if strings.TrimSpace(path) == "" {
		raw, err = defaultFS.ReadFile("default_catalog.yaml")
		if err != nil {
			return Catalog{}, fmt.Errorf("read embedded catalog: %w", err)
		}
	} else {
		raw, err = os.ReadFile(path)
		if err != nil {
			return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return Parse(raw)
}

// Parse decodes and validates catalog YAML.
func Parse(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate enforces the structural rules the server relies on: unique slugs,
// non-empty choice lists, choice ids unique within their question.
func (c Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("catalog has no questions")
	}
	questionIDs := map[string]struct{}{}
	for _, q := range c.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return fmt.Errorf("question with empty id (prompt %q)", q.Prompt)
		}
		if _, dup := questionIDs[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		questionIDs[q.ID] = struct{}{}
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("question %q has no prompt", q.ID)
		}
		if strings.TrimSpace(q.Category) == "" {
			return fmt.Errorf("question %q has no category", q.ID)
		}
		if len(q.Choices) == 0 {
			return fmt.Errorf("question %q has no choices", q.ID)
		}
		choiceIDs := map[string]struct{}{}
		for _, ch := range q.Choices {
			if strings.TrimSpace(ch.ID) == "" {
				return fmt.Errorf("question %q has a choice with empty id", q.ID)
			}
			if _, dup := choiceIDs[ch.ID]; dup {
				return fmt.Errorf("question %q has duplicate choice id %q", q.ID, ch.ID)
			}
			choiceIDs[ch.ID] = struct{}{}
			if strings.TrimSpace(ch.Label) == "" {
				return fmt.Errorf("question %q choice %q has no label", q.ID, ch.ID)
			}
		}
	}

	productIDs := map[string]struct{}{}
	for _, p := range c.Products {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("product with empty id (name %q)", p.Name)
		}
		if _, dup := productIDs[p.ID]; dup {
			return fmt.Errorf("duplicate product id %q", p.ID)
		}
		productIDs[p.ID] = struct{}{}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("product %q has no name", p.ID)
		}
		if strings.TrimSpace(p.Category) == "" {
			return fmt.Errorf("product %q has no category", p.ID)
		}
	}
	return nil
}
