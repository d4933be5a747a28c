package entities

// OpinionSource records where the governing opinion for a consulted dispute
// came from.
type OpinionSource string

const (
	OpinionFromProfile OpinionSource = "profile"
	OpinionFromDefault OpinionSource = "default"
)

// OpinionProfile selects an opinion per dispute. Disputes the profile does
// not name fall back to the registry's declared default.
type OpinionProfile struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Selections map[string]string `json:"selections"`
}

// DefaultProfile builds a profile selecting every dispute's declared default
// opinion.
func DefaultProfile(r *Registry) *OpinionProfile {
	p := &OpinionProfile{
		ID:         "default",
		Name:       "default",
		Selections: make(map[string]string, len(r.Disputes)),
	}
	for _, d := range r.Disputes {
		p.Selections[d.ID] = d.DefaultOpinionID
	}
	return p
}

// Select sets the opinion for a dispute.
func (p *OpinionProfile) Select(disputeID, opinionID string) {
	if p.Selections == nil {
		p.Selections = make(map[string]string)
	}
	p.Selections[disputeID] = opinionID
}

// Opinion returns the selected opinion for a dispute, if any.
func (p *OpinionProfile) Opinion(disputeID string) (string, bool) {
	opinionID, ok := p.Selections[disputeID]
	return opinionID, ok
}
