package quizapi

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dermatch/dermatch-go/internal/domain"
)

// Mapping is total: one pure function per entity, every domain field
// populated. Absent or malformed wire values are repaired (nil for optional
// scalars, 0 for counts, empty never-nil lists and maps) and never
// rejected. Ordering is preserved exactly as the server sent it.

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case float32:
		return asFloat(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asFloatPtr(v any) *float64 {
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func asInt(v any) int {
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	return int(f)
}

func asScore(v any) float64 {
	f, ok := asFloat(v)
	if !ok {
		return 0
	}
	return f
}

// asStringList keeps string elements, trimmed, dropping entries that are
// empty after trimming. Always returns a non-nil slice.
func asStringList(v any) []string {
	out := []string{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asRationale(v any) map[string][]string {
	out := map[string][]string{}
	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for k, val := range m {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = asStringList(val)
		}
	}
	return out
}

func asCountMap(v any) map[string]int {
	out := map[string]int{}
	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for k, val := range m {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = asInt(val)
		}
	}
	return out
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s string) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func mapSession(w wireSession) domain.Session {
	return domain.Session{
		ID:        strings.TrimSpace(w.ID),
		StartedAt: parseTime(w.StartedAt),
	}
}

func mapChoice(w wireChoice) domain.Choice {
	return domain.Choice{
		ID:          strings.TrimSpace(w.ID),
		Label:       strings.TrimSpace(w.Label),
		Description: strings.TrimSpace(w.Description),
		SortOrder:   asInt(w.SortOrder),
	}
}

func mapQuestion(w wireQuestion) domain.Question {
	choices := make([]domain.Choice, 0, len(w.Choices))
	for _, c := range w.Choices {
		choices = append(choices, mapChoice(c))
	}
	return domain.Question{
		ID:        strings.TrimSpace(w.ID),
		Prompt:    strings.TrimSpace(w.Prompt),
		Category:  strings.TrimSpace(w.Category),
		IsMulti:   w.IsMulti,
		Required:  w.Required,
		SortOrder: asInt(w.SortOrder),
		Choices:   choices,
	}
}

func mapQuestions(ws []wireQuestion) []domain.Question {
	out := make([]domain.Question, 0, len(ws))
	for _, w := range ws {
		out = append(out, mapQuestion(w))
	}
	return out
}

func mapProfile(w *wireProfile) *domain.Profile {
	if w == nil {
		return nil
	}
	p := domain.Profile{
		ID:            strings.TrimSpace(w.ID),
		SkinType:      strings.TrimSpace(w.SkinType),
		Concerns:      asStringList(w.Concerns),
		Sensitivities: asStringList(w.Sensitivities),
		Restrictions:  asStringList(w.Restrictions),
		Budget:        strings.TrimSpace(w.Budget),
		IsLatest:      w.IsLatest,
		CreatedAt:     parseTime(w.CreatedAt),
	}
	return &p
}

func mapAdvice(ws []wireAdvice) []domain.IngredientAdvice {
	out := []domain.IngredientAdvice{}
	for _, w := range ws {
		ingredient := strings.TrimSpace(w.Ingredient)
		if ingredient == "" {
			continue
		}
		out = append(out, domain.IngredientAdvice{
			Ingredient: ingredient,
			Reason:     strings.TrimSpace(w.Reason),
		})
	}
	return out
}

// mapSummary accepts nil: legacy finalize payloads omit the summary block
// entirely and still must yield fully-populated collections.
func mapSummary(w *wireSummary) domain.ResultSummary {
	if w == nil {
		w = &wireSummary{}
	}
	return domain.ResultSummary{
		PrimaryConcerns:   asStringList(w.PrimaryConcerns),
		TopIngredients:    asStringList(w.TopIngredients),
		Prioritize:        mapAdvice(w.Prioritize),
		Avoid:             mapAdvice(w.Avoid),
		CategoryBreakdown: asCountMap(w.CategoryBreakdown),
		GeneratedAt:       parseTime(w.GeneratedAt),
		AlgorithmVersion:  strings.TrimSpace(w.AlgorithmVersion),
	}
}

func mapSummaryPtr(w *wireSummary) *domain.ResultSummary {
	if w == nil {
		return nil
	}
	s := mapSummary(w)
	return &s
}

func mapProductSummary(w *wireProductSummary) domain.ProductSummary {
	if w == nil {
		w = &wireProductSummary{}
	}
	return domain.ProductSummary{
		ID:       strings.TrimSpace(w.ID),
		Name:     strings.TrimSpace(w.Name),
		Brand:    strings.TrimSpace(w.Brand),
		Category: strings.TrimSpace(w.Category),
		Price:    asFloatPtr(w.Price),
		ImageURL: strings.TrimSpace(w.ImageURL),
	}
}

func mapRecommendation(w wireRecommendation) domain.Recommendation {
	return domain.Recommendation{
		ProductID:   strings.TrimSpace(w.ProductID),
		Rank:        asInt(w.Rank),
		Score:       asScore(w.Score),
		Product:     mapProductSummary(w.Product),
		Ingredients: asStringList(w.Ingredients),
		Rationale:   asRationale(w.Rationale),
	}
}

func mapRecommendations(ws []wireRecommendation) []domain.Recommendation {
	out := []domain.Recommendation{}
	for _, w := range ws {
		out = append(out, mapRecommendation(w))
	}
	return out
}

func mapFinalize(w wireFinalizeResult) domain.FinalizeResult {
	return domain.FinalizeResult{
		Session:         mapSession(w.Session),
		CompletedAt:     parseTime(w.CompletedAt),
		RequiresAuth:    w.RequiresAuth,
		Profile:         mapProfile(w.Profile),
		Summary:         mapSummary(w.Summary),
		StrategyNotes:   asStringList(w.StrategyNotes),
		Recommendations: mapRecommendations(w.Recommendations),
	}
}

func mapAnswerEntries(ws []wireAnswerEntry) []domain.AnswerEntry {
	out := []domain.AnswerEntry{}
	for _, w := range ws {
		out = append(out, domain.AnswerEntry{
			QuestionID: strings.TrimSpace(w.QuestionID),
			ChoiceIDs:  asStringList(w.ChoiceIDs),
		})
	}
	return out
}

// mapHistoryItem tags the record once, at the boundary: items exposing
// neither a profile id nor a session id are legacy and can never be deleted
// or deep-linked.
func mapHistoryItem(w wireHistoryItem) domain.HistoryRecord {
	sessionID := strings.TrimSpace(w.SessionID)
	profileID := strings.TrimSpace(w.ProfileID)
	kind := domain.RecordLinked
	if sessionID == "" && profileID == "" {
		kind = domain.RecordLegacy
	}
	return domain.HistoryRecord{
		Kind:            kind,
		SessionID:       sessionID,
		CompletedAt:     parseTime(w.CompletedAt),
		ProfileID:       profileID,
		Profile:         mapProfile(w.Profile),
		Summary:         mapSummaryPtr(w.ResultSummary),
		Recommendations: mapRecommendations(w.Recommendations),
		Answers:         mapAnswerEntries(w.AnswerSnapshot),
	}
}

func mapHistoryItems(ws []wireHistoryItem) []domain.HistoryRecord {
	out := []domain.HistoryRecord{}
	for _, w := range ws {
		out = append(out, mapHistoryItem(w))
	}
	return out
}

func mapDeleteReceipt(w wireDeleteReceipt) domain.DeleteReceipt {
	return domain.DeleteReceipt{OK: w.OK, WasLatest: w.WasLatest}
}

func mapSessionDetail(w wireSessionDetail) domain.SessionDetail {
	status := domain.SessionOpen
	if strings.EqualFold(strings.TrimSpace(w.Status), string(domain.SessionCompleted)) {
		status = domain.SessionCompleted
	}
	return domain.SessionDetail{
		Session: domain.Session{
			ID:        strings.TrimSpace(w.ID),
			StartedAt: parseTime(w.StartedAt),
		},
		Status:      status,
		CompletedAt: parseTimePtr(w.CompletedAt),
		Answers:     mapAnswerEntries(w.Answers),
	}
}

func mapProductIngredients(ws []wireProductIngredient) []domain.ProductIngredient {
	out := []domain.ProductIngredient{}
	for _, w := range ws {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			continue
		}
		out = append(out, domain.ProductIngredient{
			Name:      name,
			Purpose:   strings.TrimSpace(w.Purpose),
			Highlight: w.Highlight,
		})
	}
	return out
}

func mapProductDetail(w wireProductDetail) domain.ProductDetail {
	return domain.ProductDetail{
		ID:          strings.TrimSpace(w.ID),
		Name:        strings.TrimSpace(w.Name),
		Brand:       strings.TrimSpace(w.Brand),
		Category:    strings.TrimSpace(w.Category),
		Description: strings.TrimSpace(w.Description),
		Price:       asFloatPtr(w.Price),
		Rating:      asFloatPtr(w.Rating),
		ImageURL:    strings.TrimSpace(w.ImageURL),
		Ingredients: mapProductIngredients(w.Ingredients),
		Tags:        asStringList(w.Tags),
	}
}
