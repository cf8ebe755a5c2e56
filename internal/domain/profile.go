package domain

import "time"

// Profile is the durable server-side interpretation of a finalized
// session's answers. Owned by the server; at most one profile per identity
// has IsLatest set at any observed instant.
type Profile struct {
	ID            string    `json:"id"`
	SkinType      string    `json:"skinType"`
	Concerns      []string  `json:"concerns"`
	Sensitivities []string  `json:"sensitivities"`
	Restrictions  []string  `json:"restrictions"`
	Budget        string    `json:"budget"`
	IsLatest      bool      `json:"isLatest"`
	CreatedAt     time.Time `json:"createdAt"`
}
