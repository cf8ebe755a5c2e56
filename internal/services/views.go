package services

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/dermatch/dermatch-go/internal/types"
)

// View types are the JSON shapes the dev server serves: flat, snake_case,
// matching what the SDK's transport layer decodes. They are built from
// storage rows here so handlers never touch gorm types.

type ChoiceView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

type QuestionView struct {
	ID        string       `json:"id"`
	Prompt    string       `json:"prompt"`
	Category  string       `json:"category"`
	IsMulti   bool         `json:"is_multi"`
	Required  bool         `json:"required"`
	SortOrder int          `json:"sort_order"`
	Choices   []ChoiceView `json:"choices"`
}

type QuestionListView struct {
	Questions []QuestionView `json:"questions"`
}

type SessionView struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

type ProfileView struct {
	ID            string    `json:"id"`
	SkinType      string    `json:"skin_type"`
	Concerns      []string  `json:"concerns"`
	Sensitivities []string  `json:"sensitivities"`
	Restrictions  []string  `json:"restrictions"`
	Budget        string    `json:"budget"`
	IsLatest      bool      `json:"is_latest"`
	CreatedAt     time.Time `json:"created_at"`
}

type AdviceView struct {
	Ingredient string `json:"ingredient"`
	Reason     string `json:"reason"`
}

type SummaryView struct {
	PrimaryConcerns   []string       `json:"primary_concerns"`
	TopIngredients    []string       `json:"top_ingredients"`
	Prioritize        []AdviceView   `json:"prioritize"`
	Avoid             []AdviceView   `json:"avoid"`
	CategoryBreakdown map[string]int `json:"category_breakdown"`
	GeneratedAt       time.Time      `json:"generated_at"`
	AlgorithmVersion  string         `json:"algorithm_version"`
}

type ProductSummaryView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
	ImageURL string   `json:"image_url"`
}

type RecommendationView struct {
	ProductID   string              `json:"product_id"`
	Rank        int                 `json:"rank"`
	Score       float64             `json:"score"`
	Product     *ProductSummaryView `json:"product,omitempty"`
	Ingredients []string            `json:"ingredients"`
	Rationale   map[string][]string `json:"rationale"`
}

type FinalizeView struct {
	Session         SessionView          `json:"session"`
	CompletedAt     time.Time            `json:"completed_at"`
	RequiresAuth    bool                 `json:"requires_auth"`
	Profile         *ProfileView         `json:"profile,omitempty"`
	Summary         *SummaryView         `json:"summary"`
	StrategyNotes   []string             `json:"strategy_notes"`
	Recommendations []RecommendationView `json:"recommendations"`
}

type AnswerEntryView struct {
	QuestionID string   `json:"question_id"`
	ChoiceIDs  []string `json:"choice_ids"`
}

type HistoryItemView struct {
	SessionID       string               `json:"session_id"`
	CompletedAt     time.Time            `json:"completed_at"`
	ProfileID       string               `json:"profile_id,omitempty"`
	Profile         *ProfileView         `json:"profile,omitempty"`
	ResultSummary   *SummaryView         `json:"result_summary,omitempty"`
	Recommendations []RecommendationView `json:"recommendations"`
	AnswerSnapshot  []AnswerEntryView    `json:"answer_snapshot"`
}

type HistoryListView struct {
	Items []HistoryItemView `json:"items"`
}

type DeleteReceiptView struct {
	OK        bool `json:"ok"`
	WasLatest bool `json:"was_latest"`
}

type SessionDetailView struct {
	ID          string            `json:"id"`
	StartedAt   time.Time         `json:"started_at"`
	Status      string            `json:"status"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Answers     []AnswerEntryView `json:"answers"`
}

type ProductIngredientView struct {
	Name      string `json:"name"`
	Purpose   string `json:"purpose,omitempty"`
	Highlight bool   `json:"highlight"`
}

type ProductDetailView struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Brand       string                  `json:"brand"`
	Category    string                  `json:"category"`
	Description string                  `json:"description"`
	Price       *float64                `json:"price"`
	Rating      *float64                `json:"rating"`
	ImageURL    string                  `json:"image_url"`
	Ingredients []ProductIngredientView `json:"ingredients"`
	Tags        []string                `json:"tags"`
}

func sessionViewFromRow(row *types.QuizSession) SessionView {
	return SessionView{ID: row.ID.String(), StartedAt: row.StartedAt.UTC()}
}

func profileViewFromRow(row *types.SkinProfile) *ProfileView {
	if row == nil {
		return nil
	}
	return &ProfileView{
		ID:            row.ID.String(),
		SkinType:      row.SkinType,
		Concerns:      decodeStringList(row.Concerns),
		Sensitivities: decodeStringList(row.Sensitivities),
		Restrictions:  decodeStringList(row.Restrictions),
		Budget:        row.Budget,
		IsLatest:      row.IsLatest,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

// summaryViewFromRow restores the stored summary JSON; the generator
// metadata columns win over whatever the blob carries.
func summaryViewFromRow(row *types.QuizResult) *SummaryView {
	if row == nil {
		return nil
	}
	var view SummaryView
	if len(row.Summary) > 0 {
		_ = json.Unmarshal(row.Summary, &view)
	}
	if view.PrimaryConcerns == nil {
		view.PrimaryConcerns = []string{}
	}
	if view.TopIngredients == nil {
		view.TopIngredients = []string{}
	}
	if view.Prioritize == nil {
		view.Prioritize = []AdviceView{}
	}
	if view.Avoid == nil {
		view.Avoid = []AdviceView{}
	}
	if view.CategoryBreakdown == nil {
		view.CategoryBreakdown = map[string]int{}
	}
	view.GeneratedAt = row.GeneratedAt.UTC()
	view.AlgorithmVersion = row.AlgorithmVersion
	return &view
}

func recommendationViewsFromRows(rows []*types.SessionRecommendation) []RecommendationView {
	views := make([]RecommendationView, 0, len(rows))
	for _, row := range rows {
		view := RecommendationView{
			ProductID:   row.ProductID,
			Rank:        row.Rank,
			Score:       row.Score,
			Ingredients: decodeStringList(row.Ingredients),
			Rationale:   decodeRationale(row.Rationale),
		}
		if row.Product != nil {
			view.Product = &ProductSummaryView{
				ID:       row.Product.ID,
				Name:     row.Product.Name,
				Brand:    row.Product.Brand,
				Category: row.Product.Category,
				Price:    row.Product.Price,
				ImageURL: row.Product.ImageURL,
			}
		}
		views = append(views, view)
	}
	return views
}

func answerEntryViewsFromRows(rows []*types.QuizAnswer) []AnswerEntryView {
	views := make([]AnswerEntryView, 0, len(rows))
	for _, row := range rows {
		views = append(views, AnswerEntryView{
			QuestionID: row.QuestionID,
			ChoiceIDs:  decodeStringList(row.ChoiceIDs),
		})
	}
	return views
}

func questionViewFromRow(row *types.QuizQuestion) QuestionView {
	var choices []types.QuestionChoice
	if len(row.Choices) > 0 {
		_ = json.Unmarshal(row.Choices, &choices)
	}
	choiceViews := make([]ChoiceView, 0, len(choices))
	for _, ch := range choices {
		choiceViews = append(choiceViews, ChoiceView{
			ID:          ch.ID,
			Label:       ch.Label,
			Description: ch.Description,
			SortOrder:   ch.SortOrder,
		})
	}
	return QuestionView{
		ID:        row.ID,
		Prompt:    row.Prompt,
		Category:  row.Category,
		IsMulti:   row.IsMulti,
		Required:  row.Required,
		SortOrder: row.SortOrder,
		Choices:   choiceViews,
	}
}

func productDetailViewFromRow(row *types.Product) *ProductDetailView {
	var ingredients []types.ProductIngredient
	if len(row.Ingredients) > 0 {
		_ = json.Unmarshal(row.Ingredients, &ingredients)
	}
	ingredientViews := make([]ProductIngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		ingredientViews = append(ingredientViews, ProductIngredientView{
			Name:      ing.Name,
			Purpose:   ing.Purpose,
			Highlight: ing.Highlight,
		})
	}
	return &ProductDetailView{
		ID:          row.ID,
		Name:        row.Name,
		Brand:       row.Brand,
		Category:    row.Category,
		Description: row.Description,
		Price:       row.Price,
		Rating:      row.Rating,
		ImageURL:    row.ImageURL,
		Ingredients: ingredientViews,
		Tags:        decodeStringList(row.Tags),
	}
}

func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return []string{}
	}
	return values
}

func decodeRationale(raw datatypes.JSON) map[string][]string {
	if len(raw) == 0 {
		return map[string][]string{}
	}
	var values map[string][]string
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return map[string][]string{}
	}
	return values
}
