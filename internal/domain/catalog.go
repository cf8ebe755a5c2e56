package domain

// Question is a static catalog entry. Choices keep server order.
type Question struct {
	ID        string   `json:"id"`
	Prompt    string   `json:"prompt"`
	Category  string   `json:"category"`
	IsMulti   bool     `json:"isMulti"`
	Required  bool     `json:"required"`
	SortOrder int      `json:"sortOrder"`
	Choices   []Choice `json:"choices"`
}

type Choice struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}
