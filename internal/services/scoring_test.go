package services

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/dermatch/dermatch-go/internal/pkg/pointers"
	"github.com/dermatch/dermatch-go/internal/types"
)

func jsonList(t *testing.T, values []string) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(raw)
}

func testProduct(t *testing.T, id string, price float64, tags, concerns, skinTypes, avoidFor []string) *types.Product {
	t.Helper()
	return &types.Product{
		ID:        id,
		Name:      id,
		Category:  "serum",
		Price:     pointers.Float64(price),
		Tags:      jsonList(t, tags),
		Concerns:  jsonList(t, concerns),
		SkinTypes: jsonList(t, skinTypes),
		AvoidFor:  jsonList(t, avoidFor),
		Published: true,
	}
}

func TestDeriveDraftGroupsByCategory(t *testing.T) {
	questions := map[string]*types.QuizQuestion{
		"skin-type":     {ID: "skin-type", Category: categorySkinType},
		"concerns":      {ID: "concerns", Category: categoryConcerns, IsMulti: true},
		"sensitivities": {ID: "sensitivities", Category: categorySensitivity, IsMulti: true},
		"budget":        {ID: "budget", Category: categoryBudget},
		"restrictions":  {ID: "restrictions", Category: categoryRestriction, IsMulti: true},
	}
	answers := []*types.QuizAnswer{
		{QuestionID: "concerns", ChoiceIDs: jsonList(t, []string{"texture", "acne"})},
		{QuestionID: "skin-type", ChoiceIDs: jsonList(t, []string{"oily"})},
		{QuestionID: "budget", ChoiceIDs: jsonList(t, []string{"budget-mid"})},
		{QuestionID: "restrictions", ChoiceIDs: jsonList(t, []string{"no-retinoids"})},
	}

	draft := deriveDraft(questions, answers)
	if draft.SkinType != "oily" {
		t.Fatalf("skin type: got %q", draft.SkinType)
	}
	if !reflect.DeepEqual(draft.Concerns, []string{"acne", "texture"}) {
		t.Fatalf("concerns not sorted: %v", draft.Concerns)
	}
	if draft.Budget != "budget-mid" {
		t.Fatalf("budget: got %q", draft.Budget)
	}
	if len(draft.Sensitivities) != 0 {
		t.Fatalf("unanswered sensitivities should be empty, got %v", draft.Sensitivities)
	}
	if !reflect.DeepEqual(draft.Restrictions, []string{"no-retinoids"}) {
		t.Fatalf("restrictions: %v", draft.Restrictions)
	}
}

func TestScoreProductsRestrictionExcludes(t *testing.T) {
	draft := profileDraft{Restrictions: []string{"no-retinoids"}}
	products := []*types.Product{
		testProduct(t, "retinal-serum", 20, []string{"retinoid"}, nil, nil, nil),
		testProduct(t, "plain-moisturizer", 20, []string{"fragrance-free"}, nil, nil, nil),
	}

	ranked := scoreProducts(draft, products)
	if len(ranked) != 1 {
		t.Fatalf("want 1 survivor, got %d", len(ranked))
	}
	if ranked[0].Product.ID != "plain-moisturizer" {
		t.Fatalf("restricted product survived: %s", ranked[0].Product.ID)
	}
}

func TestScoreProductsFormula(t *testing.T) {
	draft := profileDraft{
		SkinType:      "oily",
		Concerns:      []string{"acne", "texture"},
		Sensitivities: []string{"fragrance"},
		Budget:        "budget-mid",
	}
	// 0.5 + 2*0.12 + 0.1 - 0.15 + 0.05 = 0.74
	product := testProduct(t, "bha-serum", 22,
		nil,
		[]string{"acne", "texture"},
		[]string{"oily"},
		[]string{"fragrance"})

	ranked := scoreProducts(draft, []*types.Product{product})
	if len(ranked) != 1 {
		t.Fatalf("want 1 product, got %d", len(ranked))
	}
	if ranked[0].Score != 0.74 {
		t.Fatalf("score: want 0.74, got %v", ranked[0].Score)
	}
	if got := ranked[0].Rationale["cautions"]; len(got) != 1 {
		t.Fatalf("expected one caution, got %v", got)
	}
}

func TestScoreProductsClampAndRounding(t *testing.T) {
	draft := profileDraft{
		SkinType: "oily",
		Concerns: []string{"acne", "aging", "dark-spots", "dryness", "redness", "texture"},
		Budget:   "budget-high",
	}
	product := testProduct(t, "everything-serum", 50,
		nil,
		[]string{"acne", "aging", "dark-spots", "dryness", "redness", "texture"},
		[]string{"oily"},
		nil)

	ranked := scoreProducts(draft, []*types.Product{product})
	if ranked[0].Score != 1 {
		t.Fatalf("score should clamp to 1, got %v", ranked[0].Score)
	}
}

func TestScoreProductsTieBreakAndLimit(t *testing.T) {
	draft := profileDraft{}
	products := []*types.Product{
		testProduct(t, "zeta", 10, nil, nil, nil, nil),
		testProduct(t, "alpha", 10, nil, nil, nil, nil),
		testProduct(t, "mid", 10, nil, nil, nil, nil),
		testProduct(t, "beta", 10, nil, nil, nil, nil),
		testProduct(t, "gamma", 10, nil, nil, nil, nil),
		testProduct(t, "delta", 10, nil, nil, nil, nil),
	}

	ranked := scoreProducts(draft, products)
	if len(ranked) != maxRecommendations {
		t.Fatalf("want %d recommendations, got %d", maxRecommendations, len(ranked))
	}
	ids := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		ids = append(ids, entry.Product.ID)
	}
	want := []string{"alpha", "beta", "delta", "gamma", "mid"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("tie-break ordering: want %v, got %v", want, ids)
	}
}

func TestScoreProductsDeterministic(t *testing.T) {
	draft := profileDraft{
		SkinType: "dry",
		Concerns: []string{"dryness", "redness"},
		Budget:   "budget-low",
	}
	products := []*types.Product{
		testProduct(t, "ceramide-cream", 12, nil, []string{"dryness"}, []string{"dry"}, nil),
		testProduct(t, "azelaic-gel", 18, nil, []string{"redness"}, []string{"dry"}, nil),
		testProduct(t, "basic-lotion", 9, nil, nil, nil, nil),
	}

	first := scoreProducts(draft, products)
	second := scoreProducts(draft, products)
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Product.ID != second[i].Product.ID || first[i].Score != second[i].Score {
			t.Fatalf("rank %d differs across runs: %s/%v vs %s/%v",
				i, first[i].Product.ID, first[i].Score, second[i].Product.ID, second[i].Score)
		}
	}
}

func TestBuildSummaryAdviceTables(t *testing.T) {
	draft := profileDraft{
		Concerns:      []string{"acne", "redness"},
		Sensitivities: []string{"fragrance"},
	}
	summary := buildSummary(draft, nil, time.Now())

	if len(summary.Prioritize) != 2 {
		t.Fatalf("prioritize: want 2 entries, got %v", summary.Prioritize)
	}
	if summary.Prioritize[0].Ingredient != "Salicylic Acid" {
		t.Fatalf("acne advice: got %q", summary.Prioritize[0].Ingredient)
	}
	if len(summary.Avoid) != 1 || summary.Avoid[0].Ingredient != "Fragrance" {
		t.Fatalf("avoid advice: got %v", summary.Avoid)
	}
	if summary.AlgorithmVersion != AlgorithmVersion {
		t.Fatalf("algorithm version: got %q", summary.AlgorithmVersion)
	}
}

func TestBuildStrategyNotesEmptyRanking(t *testing.T) {
	notes := buildStrategyNotes(profileDraft{Restrictions: []string{"no-retinoids"}}, nil)
	found := false
	for _, note := range notes {
		if note == "Your restrictions excluded every candidate; relax one to see matches." {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing empty-ranking note: %v", notes)
	}
}
