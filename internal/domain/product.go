package domain

// ProductIngredient is one entry of a product's ordered ingredient list.
type ProductIngredient struct {
	Name      string `json:"name"`
	Purpose   string `json:"purpose"`
	Highlight bool   `json:"highlight"`
}

// ProductDetail is the full product record behind a recommendation card.
type ProductDetail struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Brand       string              `json:"brand"`
	Category    string              `json:"category"`
	Description string              `json:"description"`
	Price       *float64            `json:"price"`
	Rating      *float64            `json:"rating"`
	ImageURL    string              `json:"imageUrl"`
	Ingredients []ProductIngredient `json:"ingredients"`
	Tags        []string            `json:"tags"`
}
