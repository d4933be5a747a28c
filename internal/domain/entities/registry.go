package entities

import (
	"github.com/ersonp/yichus-core/internal/errors"
)

// Category groups rules by the gravity of the status they assign. Higher
// severity outranks lower when picking a primary status; ProhibitsMarriage
// marks the category as blocking for permission queries.
type Category struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Severity          int    `json:"severity"`
	ProhibitsMarriage bool   `json:"prohibits_marriage"`
	Description       string `json:"description,omitempty"`
}

// Opinion is one side of a dispute.
type Opinion struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dispute is a legally unresolved question with two or more opinions and a
// declared default. Rules bound to a dispute carry one condition variant per
// opinion; which variant applies is decided per computation by the opinion
// profile, falling back to the default.
type Dispute struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Opinions         []Opinion `json:"opinions"`
	DefaultOpinionID string    `json:"default_opinion_id"`
}

// Opinion returns the opinion by ID.
func (d Dispute) Opinion(opinionID string) (Opinion, bool) {
	for _, o := range d.Opinions {
		if o.ID == opinionID {
			return o, true
		}
	}
	return Opinion{}, false
}

// EvalContext carries everything a rule condition may inspect: the resolved
// snapshot, the registry configuration, and the levirate ties derived for
// the snapshot's slice. Conditions never mutate it.
type EvalContext struct {
	Snapshot *Snapshot
	Registry *Registry
	Ties     []Tie
}

// Condition decides whether a rule matches the ordered pair against the
// evaluation context. Conditions must be pure: same inputs, same answer.
type Condition func(ctx *EvalContext, from, to Person) bool

// Rule assigns a status to a pair when its condition matches. An undisputed
// rule carries a single Condition; a rule bound to a dispute carries one
// variant per opinion and leaves Condition nil.
type Rule struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	CategoryID  string               `json:"category_id"`
	Description string               `json:"description,omitempty"`
	Source      string               `json:"source,omitempty"` // Citation (e.g., "Vayikra 18:16")
	DisputeID   string               `json:"dispute_id,omitempty"`
	Condition   Condition            `json:"-"`
	Variants    map[string]Condition `json:"-"`
}

// Registry is the rule configuration a status computation runs against:
// categories, rules in declaration order, disputes, and derivation flags.
// Rule declaration order is part of the contract: it fixes the order of
// reported statuses and breaks severity ties.
type Registry struct {
	Categories          []Category `json:"categories"`
	Rules               []Rule     `json:"rules"`
	Disputes            []Dispute  `json:"disputes"`
	IncludeHalfSiblings bool       `json:"include_half_siblings"`
}

// CategoryByID returns the category by ID.
func (r *Registry) CategoryByID(categoryID string) (Category, bool) {
	for _, c := range r.Categories {
		if c.ID == categoryID {
			return c, true
		}
	}
	return Category{}, false
}

// DisputeByID returns the dispute by ID.
func (r *Registry) DisputeByID(disputeID string) (Dispute, bool) {
	for _, d := range r.Disputes {
		if d.ID == disputeID {
			return d, true
		}
	}
	return Dispute{}, false
}

// RuleByID returns the rule by ID.
func (r *Registry) RuleByID(ruleID string) (Rule, bool) {
	for _, rule := range r.Rules {
		if rule.ID == ruleID {
			return rule, true
		}
	}
	return Rule{}, false
}

// EffectiveOpinion returns the opinion governing a dispute for the given
// profile: the profile's selection when it names a known opinion, otherwise
// the dispute's declared default. A nil profile always yields the default.
func (r *Registry) EffectiveOpinion(disputeID string, profile *OpinionProfile) (string, OpinionSource, error) {
	dispute, ok := r.DisputeByID(disputeID)
	if !ok {
		return "", "", errors.Newf("unknown dispute %q", disputeID)
	}
	if profile != nil {
		if selected, ok := profile.Opinion(disputeID); ok {
			if _, known := dispute.Opinion(selected); known {
				return selected, OpinionFromProfile, nil
			}
		}
	}
	return dispute.DefaultOpinionID, OpinionFromDefault, nil
}

// Validate checks the registry's internal references: unique IDs, rules
// pointing at existing categories, dispute-bound rules carrying a variant
// per opinion, and defaults naming declared opinions.
func (r *Registry) Validate() error {
	categoryIDs := make(map[string]bool)
	for _, c := range r.Categories {
		if c.ID == "" {
			return errors.New("category with empty id")
		}
		if categoryIDs[c.ID] {
			return errors.Newf("duplicate category id %q", c.ID)
		}
		categoryIDs[c.ID] = true
	}

	disputeIDs := make(map[string]bool)
	for _, d := range r.Disputes {
		if d.ID == "" {
			return errors.New("dispute with empty id")
		}
		if disputeIDs[d.ID] {
			return errors.Newf("duplicate dispute id %q", d.ID)
		}
		disputeIDs[d.ID] = true
		if len(d.Opinions) < 2 {
			return errors.Newf("dispute %q needs at least two opinions", d.ID)
		}
		opinionIDs := make(map[string]bool)
		for _, o := range d.Opinions {
			if opinionIDs[o.ID] {
				return errors.Newf("dispute %q has duplicate opinion %q", d.ID, o.ID)
			}
			opinionIDs[o.ID] = true
		}
		if !opinionIDs[d.DefaultOpinionID] {
			return errors.Newf("dispute %q default opinion %q is not declared", d.ID, d.DefaultOpinionID)
		}
	}

	ruleIDs := make(map[string]bool)
	for _, rule := range r.Rules {
		if rule.ID == "" {
			return errors.New("rule with empty id")
		}
		if ruleIDs[rule.ID] {
			return errors.Newf("duplicate rule id %q", rule.ID)
		}
		ruleIDs[rule.ID] = true
		if !categoryIDs[rule.CategoryID] {
			return errors.Newf("rule %q references unknown category %q", rule.ID, rule.CategoryID)
		}
		if rule.DisputeID == "" {
			if rule.Condition == nil {
				return errors.Newf("rule %q has no condition", rule.ID)
			}
			continue
		}
		dispute, ok := r.DisputeByID(rule.DisputeID)
		if !ok {
			return errors.Newf("rule %q references unknown dispute %q", rule.ID, rule.DisputeID)
		}
		for _, o := range dispute.Opinions {
			if rule.Variants[o.ID] == nil {
				return errors.Newf("rule %q is missing a variant for opinion %q", rule.ID, o.ID)
			}
		}
	}
	return nil
}
