package entities

import "time"

// RuleDoc is the searchable prose for one registry rule. Conditions are
// code and cannot be queried, so the doc carries the rule's meaning in
// words: what it forbids or records, and the classical source it rests on.
// Docs are what the vector index stores and what a search returns.
type RuleDoc struct {
	ID         string    `json:"id"`
	RuleID     string    `json:"rule_id"`
	CategoryID string    `json:"category_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Source     string    `json:"source,omitempty"` // Citation (e.g., "Vayikra 18:16")
	Score      float32   `json:"score,omitempty"`  // Similarity score, set on search results
	Embedding  []float32 `json:"embedding,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
