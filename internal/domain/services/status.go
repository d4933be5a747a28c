package services

import (
	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/logging"
)

// StatusService answers pair status queries: which rules match two people at
// a slice, which status governs, and whether marriage between them is
// permitted. It composes the resolver's snapshot, the levirate derivation,
// and the registry's rules under a caller-chosen opinion profile.
type StatusService struct {
	resolver *ResolverService
	levirate *LevirateService
	registry *entities.Registry
}

// NewStatusService creates a new StatusService.
func NewStatusService(resolver *ResolverService, levirate *LevirateService, registry *entities.Registry) *StatusService {
	return &StatusService{
		resolver: resolver,
		levirate: levirate,
		registry: registry,
	}
}

// ComputeStatus evaluates every registry rule against the ordered pair at
// the slice. All matches are reported in rule declaration order; the primary
// status is the highest-severity match, ties broken by the earliest declared
// rule. An empty result means the pair is implicitly permitted. A nil
// profile evaluates disputes under their declared defaults.
func (s *StatusService) ComputeStatus(g *entities.TemporalGraph, fromID, toID string, sliceIndex int, profile *entities.OpinionProfile) (*entities.ComputedStatus, error) {
	if fromID == toID {
		return nil, errors.Wrapf(errors.ErrInvalidPair, "%q on both sides", fromID)
	}
	snap, err := s.resolver.Resolve(g, sliceIndex)
	if err != nil {
		return nil, err
	}
	from, ok := snap.Person(fromID)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidPair, "person %q at slice %d", fromID, sliceIndex)
	}
	to, ok := snap.Person(toID)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidPair, "person %q at slice %d", toID, sliceIndex)
	}

	ties, err := s.levirate.tiesFromSnapshot(g, snap)
	if err != nil {
		return nil, err
	}
	evalCtx := &entities.EvalContext{
		Snapshot: snap,
		Registry: s.registry,
		Ties:     ties,
	}

	result := &entities.ComputedStatus{
		FromID: fromID,
		ToID:   toID,
		Slice:  sliceIndex,
	}
	recordedDisputes := make(map[string]bool)
	for _, rule := range s.registry.Rules {
		matched, record, err := s.evaluateRule(rule, evalCtx, from, to, profile)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %q", rule.ID)
		}
		if record != nil && !recordedDisputes[record.DisputeID] {
			recordedDisputes[record.DisputeID] = true
			result.Disputes = append(result.Disputes, *record)
		}
		if !matched {
			continue
		}
		category, ok := s.registry.CategoryByID(rule.CategoryID)
		if !ok {
			return nil, errors.AssertionFailedf("rule %q references unknown category %q", rule.ID, rule.CategoryID)
		}
		status := entities.Status{
			RuleID:            rule.ID,
			RuleName:          rule.Name,
			CategoryID:        category.ID,
			CategoryName:      category.Name,
			Severity:          category.Severity,
			ProhibitsMarriage: category.ProhibitsMarriage,
			DisputeID:         rule.DisputeID,
		}
		if record != nil {
			status.OpinionID = record.OpinionID
		}
		result.AllStatuses = append(result.AllStatuses, status)
	}

	for i := range result.AllStatuses {
		if result.Primary == nil || result.AllStatuses[i].Severity > result.Primary.Severity {
			result.Primary = &result.AllStatuses[i]
		}
	}
	for _, t := range ties {
		if t.Touches(fromID) || t.Touches(toID) {
			result.Ties = append(result.Ties, t)
		}
	}

	logging.Debugw("computed status",
		"graph", g.ID,
		"from", fromID,
		"to", toID,
		"slice", sliceIndex,
		"matches", len(result.AllStatuses),
		"disputes", len(result.Disputes))
	return result, nil
}

// IsMarriagePermitted reports whether no marriage-prohibiting rule matches
// the pair at the slice.
func (s *StatusService) IsMarriagePermitted(g *entities.TemporalGraph, fromID, toID string, sliceIndex int, profile *entities.OpinionProfile) (bool, error) {
	computed, err := s.ComputeStatus(g, fromID, toID, sliceIndex, profile)
	if err != nil {
		return false, err
	}
	return computed.Permitted(), nil
}

// evaluateRule runs one rule against the pair. For dispute-bound rules it
// evaluates the variant of the effective opinion, and reports the dispute as
// consulted when the opinions disagree about this pair or the effective
// variant matched: the cases where the answer depends on, or carries, a
// contested reading.
func (s *StatusService) evaluateRule(rule entities.Rule, evalCtx *entities.EvalContext, from, to entities.Person, profile *entities.OpinionProfile) (bool, *entities.DisputeRecord, error) {
	if rule.DisputeID == "" {
		if rule.Condition == nil {
			return false, nil, errors.AssertionFailedf("rule %q has no condition", rule.ID)
		}
		return rule.Condition(evalCtx, from, to), nil, nil
	}

	opinionID, source, err := s.registry.EffectiveOpinion(rule.DisputeID, profile)
	if err != nil {
		return false, nil, err
	}
	effective, ok := rule.Variants[opinionID]
	if !ok {
		return false, nil, errors.AssertionFailedf("rule %q has no variant for opinion %q", rule.ID, opinionID)
	}
	matched := effective(evalCtx, from, to)

	relevant := matched
	if !relevant {
		dispute, ok := s.registry.DisputeByID(rule.DisputeID)
		if !ok {
			return false, nil, errors.AssertionFailedf("rule %q references unknown dispute %q", rule.ID, rule.DisputeID)
		}
		for _, opinion := range dispute.Opinions {
			variant, ok := rule.Variants[opinion.ID]
			if !ok {
				return false, nil, errors.AssertionFailedf("rule %q has no variant for opinion %q", rule.ID, opinion.ID)
			}
			if variant(evalCtx, from, to) != matched {
				relevant = true
				break
			}
		}
	}
	if !relevant {
		return false, nil, nil
	}
	return matched, &entities.DisputeRecord{
		DisputeID: rule.DisputeID,
		OpinionID: opinionID,
		Source:    source,
	}, nil
}
