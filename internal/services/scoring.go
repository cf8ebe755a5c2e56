package services

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/dermatch/dermatch-go/internal/types"
)

// AlgorithmVersion tags every result produced by the dev scorer. The
// production matching algorithm lives elsewhere; this one exists so the quiz
// pipeline has a deterministic counterparty to run against.
const AlgorithmVersion = "dev-scorer/1"

const maxRecommendations = 5

// profileDraft is the scorer's interpretation of a session's answers,
// grouped by question category.
type profileDraft struct {
	SkinType      string
	Concerns      []string
	Sensitivities []string
	Restrictions  []string
	Budget        string
}

const (
	categorySkinType    = "skin_type"
	categoryConcerns    = "concerns"
	categorySensitivity = "sensitivity"
	categoryBudget      = "budget"
	categoryRestriction = "restrictions"
)

// restrictionTags maps a restriction choice to the product tag it rules out.
var restrictionTags = map[string]string{
	"no-retinoids": "retinoid",
	"no-aha-bha":   "exfoliant",
	"no-vitamin-c": "antioxidant",
}

var budgetCeilings = map[string]float64{
	"budget-low":  15,
	"budget-mid":  35,
	"budget-high": math.MaxFloat64,
}

var prioritizeByConcern = map[string]AdviceView{
	"acne":       {Ingredient: "Salicylic Acid", Reason: "keeps pores clear without over-drying"},
	"redness":    {Ingredient: "Azelaic Acid", Reason: "calms visible redness over time"},
	"dryness":    {Ingredient: "Ceramides", Reason: "rebuild the moisture barrier"},
	"aging":      {Ingredient: "Retinal", Reason: "best-studied ingredient for fine lines"},
	"dark-spots": {Ingredient: "Niacinamide", Reason: "fades discoloration gradually"},
	"texture":    {Ingredient: "Glycolic Acid", Reason: "smooths uneven surface texture"},
}

var avoidBySensitivity = map[string]AdviceView{
	"fragrance":      {Ingredient: "Fragrance", Reason: "flagged as a trigger in your answers"},
	"alcohol":        {Ingredient: "Denatured Alcohol", Reason: "dries out reactive skin"},
	"essential-oils": {Ingredient: "Essential Oils", Reason: "common irritant for sensitized skin"},
	"exfoliants":     {Ingredient: "High-strength Acids", Reason: "your skin reacts to strong exfoliation"},
}

// deriveDraft folds the session's answers into a profile draft using the
// question categories. Unknown categories are ignored; single-select
// categories take the first choice.
func deriveDraft(questions map[string]*types.QuizQuestion, answers []*types.QuizAnswer) profileDraft {
	draft := profileDraft{
		Concerns:      []string{},
		Sensitivities: []string{},
		Restrictions:  []string{},
	}
	for _, answer := range answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			continue
		}
		var choices []string
		if err := json.Unmarshal(answer.ChoiceIDs, &choices); err != nil || len(choices) == 0 {
			continue
		}
		switch question.Category {
		case categorySkinType:
			draft.SkinType = choices[0]
		case categoryConcerns:
			draft.Concerns = append(draft.Concerns, choices...)
		case categorySensitivity:
			draft.Sensitivities = append(draft.Sensitivities, choices...)
		case categoryBudget:
			draft.Budget = choices[0]
		case categoryRestriction:
			draft.Restrictions = append(draft.Restrictions, choices...)
		}
	}
	sort.Strings(draft.Concerns)
	sort.Strings(draft.Sensitivities)
	sort.Strings(draft.Restrictions)
	return draft
}

type scoredProduct struct {
	Product   *types.Product
	Score     float64
	Rationale map[string][]string
}

// scoreProducts ranks published products against the draft. Restriction
// conflicts exclude a product outright; everything else adjusts a base
// score that is clamped to [0,1] and rounded to two decimals. Ties break on
// product id so the ordering is stable across runs.
func scoreProducts(draft profileDraft, products []*types.Product) []scoredProduct {
	scored := make([]scoredProduct, 0, len(products))

	excludedTags := map[string]bool{}
	for _, restriction := range draft.Restrictions {
		if tag, ok := restrictionTags[restriction]; ok {
			excludedTags[tag] = true
		}
	}

	for _, product := range products {
		tags := decodeStringList(product.Tags)
		if hasAny(tags, excludedTags) {
			continue
		}

		score := 0.5
		rationale := map[string][]string{}

		concerns := decodeStringList(product.Concerns)
		for _, concern := range draft.Concerns {
			if contains(concerns, concern) {
				score += 0.12
				rationale["concerns"] = append(rationale["concerns"], "targets "+concern)
			}
		}

		skinTypes := decodeStringList(product.SkinTypes)
		if draft.SkinType != "" && contains(skinTypes, draft.SkinType) {
			score += 0.1
			rationale["skin_type"] = append(rationale["skin_type"], "formulated for "+draft.SkinType+" skin")
		}

		avoidFor := decodeStringList(product.AvoidFor)
		for _, sensitivity := range draft.Sensitivities {
			if contains(avoidFor, sensitivity) {
				score -= 0.15
				rationale["cautions"] = append(rationale["cautions"], "may bother "+sensitivity+"-sensitive skin")
			}
		}

		if ceiling, ok := budgetCeilings[draft.Budget]; ok && product.Price != nil {
			if *product.Price <= ceiling {
				score += 0.05
				rationale["budget"] = append(rationale["budget"], "within your budget")
			} else {
				score -= 0.05
				rationale["budget"] = append(rationale["budget"], "above your usual spend")
			}
		}

		score = math.Round(clamp01(score)*100) / 100
		scored = append(scored, scoredProduct{Product: product, Score: score, Rationale: rationale})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Product.ID < scored[j].Product.ID
	})
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}
	return scored
}

// buildSummary aggregates the ranked set into the result summary served
// with every finalize response and history item.
func buildSummary(draft profileDraft, ranked []scoredProduct, generatedAt time.Time) SummaryView {
	summary := SummaryView{
		PrimaryConcerns:   append([]string{}, draft.Concerns...),
		TopIngredients:    []string{},
		Prioritize:        []AdviceView{},
		Avoid:             []AdviceView{},
		CategoryBreakdown: map[string]int{},
		GeneratedAt:       generatedAt.UTC(),
		AlgorithmVersion:  AlgorithmVersion,
	}

	seen := map[string]bool{}
	for _, entry := range ranked {
		summary.CategoryBreakdown[entry.Product.Category]++

		var ingredients []types.ProductIngredient
		if len(entry.Product.Ingredients) > 0 {
			_ = json.Unmarshal(entry.Product.Ingredients, &ingredients)
		}
		for _, ing := range ingredients {
			if ing.Highlight && !seen[ing.Name] && len(summary.TopIngredients) < maxRecommendations {
				seen[ing.Name] = true
				summary.TopIngredients = append(summary.TopIngredients, ing.Name)
			}
		}
	}

	for _, concern := range draft.Concerns {
		if advice, ok := prioritizeByConcern[concern]; ok {
			summary.Prioritize = append(summary.Prioritize, advice)
		}
	}
	for _, sensitivity := range draft.Sensitivities {
		if advice, ok := avoidBySensitivity[sensitivity]; ok {
			summary.Avoid = append(summary.Avoid, advice)
		}
	}
	return summary
}

// buildStrategyNotes emits short routine guidance derived from the draft.
func buildStrategyNotes(draft profileDraft, ranked []scoredProduct) []string {
	notes := []string{"Introduce one new product at a time and patch test actives."}
	if len(draft.Sensitivities) > 0 {
		notes = append(notes, "Your answers flag sensitivities; favor fragrance-free formulas.")
	}
	if draft.Budget == "budget-low" {
		notes = append(notes, "Picks are filtered toward your budget; swap in splurges gradually.")
	}
	if len(ranked) == 0 {
		notes = append(notes, "Your restrictions excluded every candidate; relax one to see matches.")
	}
	return notes
}

func ingredientNames(product *types.Product) []string {
	var ingredients []types.ProductIngredient
	if len(product.Ingredients) > 0 {
		_ = json.Unmarshal(product.Ingredients, &ingredients)
	}
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, ing.Name)
	}
	return names
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func hasAny(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[v] {
			return true
		}
	}
	return false
}
