package quizapi

// Raw wire records: flat, snake_case, nullable. Fields the server is allowed
// to send in more than one shape (numbers as strings, missing lists, null
// maps) are typed any and repaired by the mapper. These types never leave
// this package.

type wireSession struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
}

type wireChoice struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	SortOrder   any    `json:"sort_order"`
}

type wireQuestion struct {
	ID        string       `json:"id"`
	Prompt    string       `json:"prompt"`
	Category  string       `json:"category"`
	IsMulti   bool         `json:"is_multi"`
	Required  bool         `json:"required"`
	SortOrder any          `json:"sort_order"`
	Choices   []wireChoice `json:"choices"`
}

type wireQuestionList struct {
	Questions []wireQuestion `json:"questions"`
}

type wireProfile struct {
	ID            string `json:"id"`
	SkinType      string `json:"skin_type"`
	Concerns      any    `json:"concerns"`
	Sensitivities any    `json:"sensitivities"`
	Restrictions  any    `json:"restrictions"`
	Budget        string `json:"budget"`
	IsLatest      bool   `json:"is_latest"`
	CreatedAt     string `json:"created_at"`
}

type wireAdvice struct {
	Ingredient string `json:"ingredient"`
	Reason     string `json:"reason"`
}

type wireSummary struct {
	PrimaryConcerns   any          `json:"primary_concerns"`
	TopIngredients    any          `json:"top_ingredients"`
	Prioritize        []wireAdvice `json:"prioritize"`
	Avoid             []wireAdvice `json:"avoid"`
	CategoryBreakdown any          `json:"category_breakdown"`
	GeneratedAt       string       `json:"generated_at"`
	AlgorithmVersion  string       `json:"algorithm_version"`
}

type wireProductSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Price    any    `json:"price"`
	ImageURL string `json:"image_url"`
}

type wireRecommendation struct {
	ProductID   string              `json:"product_id"`
	Rank        any                 `json:"rank"`
	Score       any                 `json:"score"`
	Product     *wireProductSummary `json:"product"`
	Ingredients any                 `json:"ingredients"`
	Rationale   any                 `json:"rationale"`
}

type wireFinalizeResult struct {
	Session         wireSession          `json:"session"`
	CompletedAt     string               `json:"completed_at"`
	RequiresAuth    bool                 `json:"requires_auth"`
	Profile         *wireProfile         `json:"profile"`
	Summary         *wireSummary         `json:"summary"`
	StrategyNotes   any                  `json:"strategy_notes"`
	Recommendations []wireRecommendation `json:"recommendations"`
}

type wireAnswerEntry struct {
	QuestionID string `json:"question_id"`
	ChoiceIDs  any    `json:"choice_ids"`
}

type wireHistoryItem struct {
	SessionID       string               `json:"session_id"`
	CompletedAt     string               `json:"completed_at"`
	ProfileID       string               `json:"profile_id"`
	Profile         *wireProfile         `json:"profile"`
	ResultSummary   *wireSummary         `json:"result_summary"`
	Recommendations []wireRecommendation `json:"recommendations"`
	AnswerSnapshot  []wireAnswerEntry    `json:"answer_snapshot"`
}

type wireHistoryList struct {
	Items []wireHistoryItem `json:"items"`
}

type wireDeleteReceipt struct {
	OK        bool `json:"ok"`
	WasLatest bool `json:"was_latest"`
}

type wireSessionDetail struct {
	ID          string            `json:"id"`
	StartedAt   string            `json:"started_at"`
	Status      string            `json:"status"`
	CompletedAt string            `json:"completed_at"`
	Answers     []wireAnswerEntry `json:"answers"`
}

type wireProductIngredient struct {
	Name      string `json:"name"`
	Purpose   string `json:"purpose"`
	Highlight bool   `json:"highlight"`
}

type wireProductDetail struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Brand       string                  `json:"brand"`
	Category    string                  `json:"category"`
	Description string                  `json:"description"`
	Price       any                     `json:"price"`
	Rating      any                     `json:"rating"`
	ImageURL    string                  `json:"image_url"`
	Ingredients []wireProductIngredient `json:"ingredients"`
	Tags        any                     `json:"tags"`
}

// submitAnswerRequest is the only request body this client sends.
type submitAnswerRequest struct {
	SessionID  string   `json:"session_id"`
	QuestionID string   `json:"question_id"`
	ChoiceIDs  []string `json:"choice_ids"`
}
