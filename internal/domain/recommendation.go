package domain

import "time"

// ProductSummary is the nested product view carried inside a
// recommendation; the full record lives behind the product detail endpoint.
type ProductSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	ImageURL string   `json:"imageUrl"`
}

// Recommendation is one ranked, scored product suggestion. Rank is 1-based
// and unique within a result set; the server sorts, the client must not.
type Recommendation struct {
	ProductID   string              `json:"productId"`
	Rank        int                 `json:"rank"`
	Score       float64             `json:"score"`
	Product     ProductSummary      `json:"product"`
	Ingredients []string            `json:"ingredients"`
	Rationale   map[string][]string `json:"rationale"`
}

type IngredientAdvice struct {
	Ingredient string `json:"ingredient"`
	Reason     string `json:"reason"`
}

// ResultSummary is the aggregated view of a finalized session. Treated as
// opaque versioned scorer output.
type ResultSummary struct {
	PrimaryConcerns   []string           `json:"primaryConcerns"`
	TopIngredients    []string           `json:"topIngredients"`
	Prioritize        []IngredientAdvice `json:"prioritize"`
	Avoid             []IngredientAdvice `json:"avoid"`
	CategoryBreakdown map[string]int     `json:"categoryBreakdown"`
	GeneratedAt       time.Time          `json:"generatedAt"`
	AlgorithmVersion  string             `json:"algorithmVersion"`
}

// FinalizeResult is the finalize envelope. RequiresAuth means the
// computation succeeded but durable persistence (history, profile linkage)
// needs an authenticated identity; the recommendations are still complete
// and displayable.
type FinalizeResult struct {
	Session         Session          `json:"session"`
	CompletedAt     time.Time        `json:"completedAt"`
	RequiresAuth    bool             `json:"requiresAuth"`
	Profile         *Profile         `json:"profile"`
	Summary         ResultSummary    `json:"summary"`
	StrategyNotes   []string         `json:"strategyNotes"`
	Recommendations []Recommendation `json:"recommendations"`
}
