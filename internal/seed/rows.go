package seed

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/dermatch/dermatch-go/internal/types"
)

// QuestionRows converts the catalog to storable rows. Sort order follows
// file order, 1-based; choice sort order likewise.
func (c Catalog) QuestionRows() ([]*types.QuizQuestion, error) {
	rows := make([]*types.QuizQuestion, 0, len(c.Questions))
	for i, q := range c.Questions {
		choices := make([]types.QuestionChoice, 0, len(q.Choices))
		for j, ch := range q.Choices {
			choices = append(choices, types.QuestionChoice{
				ID:          ch.ID,
				Label:       ch.Label,
				Description: ch.Description,
				SortOrder:   j + 1,
			})
		}
		raw, err := json.Marshal(choices)
		if err != nil {
			return nil, fmt.Errorf("encode choices for question %q: %w", q.ID, err)
		}
		rows = append(rows, &types.QuizQuestion{
			ID:        q.ID,
			Prompt:    q.Prompt,
			Category:  q.Category,
			IsMulti:   q.Multi,
			Required:  q.Required,
			SortOrder: i + 1,
			Choices:   datatypes.JSON(raw),
		})
	}
	return rows, nil
}

func (c Catalog) ProductRows() ([]*types.Product, error) {
	rows := make([]*types.Product, 0, len(c.Products))
	for _, p := range c.Products {
		ingredients := make([]types.ProductIngredient, 0, len(p.Ingredients))
		for _, ing := range p.Ingredients {
			ingredients = append(ingredients, types.ProductIngredient{
				Name:      ing.Name,
				Purpose:   ing.Purpose,
				Highlight: ing.Highlight,
			})
		}
		row := &types.Product{
			ID:          p.ID,
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    p.Category,
			Description: p.Description,
			Price:       p.Price,
			Rating:      p.Rating,
			ImageURL:    p.ImageURL,
			Published:   p.IsPublished(),
		}
		var err error
		if row.Ingredients, err = marshalJSON(ingredients); err != nil {
			return nil, fmt.Errorf("encode ingredients for product %q: %w", p.ID, err)
		}
		if row.Tags, err = marshalJSON(emptyIfNil(p.Tags)); err != nil {
			return nil, fmt.Errorf("encode tags for product %q: %w", p.ID, err)
		}
		if row.Concerns, err = marshalJSON(emptyIfNil(p.Concerns)); err != nil {
			return nil, fmt.Errorf("encode concerns for product %q: %w", p.ID, err)
		}
		if row.SkinTypes, err = marshalJSON(emptyIfNil(p.SkinTypes)); err != nil {
			return nil, fmt.Errorf("encode skin types for product %q: %w", p.ID, err)
		}
		if row.AvoidFor, err = marshalJSON(emptyIfNil(p.AvoidFor)); err != nil {
			return nil, fmt.Errorf("encode avoid-for for product %q: %w", p.ID, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func marshalJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
