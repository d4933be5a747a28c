package entities

// Status is one matched rule in a computation result.
type Status struct {
	RuleID            string `json:"rule_id"`
	RuleName          string `json:"rule_name"`
	CategoryID        string `json:"category_id"`
	CategoryName      string `json:"category_name"`
	Severity          int    `json:"severity"`
	ProhibitsMarriage bool   `json:"prohibits_marriage"`
	DisputeID         string `json:"dispute_id,omitempty"`
	OpinionID         string `json:"opinion_id,omitempty"`
}

// DisputeRecord names a dispute that was relevant to a computation and the
// opinion that governed it. Part of the result contract: callers can always
// explain which contested readings shaped an answer.
type DisputeRecord struct {
	DisputeID string        `json:"dispute_id"`
	OpinionID string        `json:"opinion_id"`
	Source    OpinionSource `json:"source"`
}

// ComputedStatus is the full answer to a pair status query: every matching
// status in rule declaration order, the single primary status (highest
// severity, ties broken by earliest declared rule), the levirate ties
// touching the pair, and the disputes consulted. An empty AllStatuses means
// the pair is implicitly permitted.
type ComputedStatus struct {
	FromID      string          `json:"from_id"`
	ToID        string          `json:"to_id"`
	Slice       int             `json:"slice"`
	AllStatuses []Status        `json:"all_statuses"`
	Primary     *Status         `json:"primary,omitempty"`
	Ties        []Tie           `json:"ties,omitempty"`
	Disputes    []DisputeRecord `json:"disputes,omitempty"`
}

// Permitted reports whether no matched status belongs to a
// marriage-prohibiting category.
func (c *ComputedStatus) Permitted() bool {
	for _, s := range c.AllStatuses {
		if s.ProhibitsMarriage {
			return false
		}
	}
	return true
}
