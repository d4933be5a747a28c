package handlers

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
)

// StatusHandler answers status, marriage permission, and levirate queries
// against a tree at a point in time.
type StatusHandler struct {
	treeService     *services.TreeService
	statusService   *services.StatusService
	levirateService *services.LevirateService
	profileService  *services.ProfileService
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(treeService *services.TreeService, statusService *services.StatusService, levirateService *services.LevirateService, profileService *services.ProfileService) *StatusHandler {
	return &StatusHandler{
		treeService:     treeService,
		statusService:   statusService,
		levirateService: levirateService,
		profileService:  profileService,
	}
}

// StatusOptions selects the slice and opinion profile for a query. A
// negative Slice means the latest slice; an empty Profile means registry
// defaults.
type StatusOptions struct {
	Slice   int
	Profile string
}

// StatusResult contains a computed status and the profile it ran under.
type StatusResult struct {
	Status  *entities.ComputedStatus
	Profile string
}

// PermittedResult contains the answer to a marriage permission query.
type PermittedResult struct {
	Permitted bool
	Blocking  []entities.Status // Statuses from marriage-prohibiting categories
	Profile   string
}

// YevamimResult lists the levirate candidates for one widow.
type YevamimResult struct {
	WidowID string
	Slice   int
	Yevamim []entities.Person
}

// TiesResult lists levirate ties visible at a slice.
type TiesResult struct {
	Slice int
	Ties  []entities.Tie
}

// YevamosResult lists the people holding an outstanding levirate
// obligation at a slice.
type YevamosResult struct {
	Slice  int
	Widows []entities.Person
}

// HandleStatus computes the halachic statuses between two people.
func (h *StatusHandler) HandleStatus(ctx context.Context, treeID, fromID, toID string, opts StatusOptions) (*StatusResult, error) {
	graph, slice, err := loadGraphAt(ctx, h.treeService, treeID, opts.Slice)
	if err != nil {
		return nil, err
	}

	profile, err := h.profileService.Resolve(ctx, opts.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "resolving profile")
	}

	status, err := h.statusService.ComputeStatus(graph, fromID, toID, slice, profile)
	if err != nil {
		return nil, errors.Wrap(err, "computing status")
	}

	return &StatusResult{
		Status:  status,
		Profile: profileLabel(profile),
	}, nil
}

// HandlePermitted answers whether a marriage between two people would be
// permitted, along with the statuses blocking it.
func (h *StatusHandler) HandlePermitted(ctx context.Context, treeID, fromID, toID string, opts StatusOptions) (*PermittedResult, error) {
	result, err := h.HandleStatus(ctx, treeID, fromID, toID, opts)
	if err != nil {
		return nil, err
	}

	var blocking []entities.Status
	for _, s := range result.Status.AllStatuses {
		if s.ProhibitsMarriage {
			blocking = append(blocking, s)
		}
	}

	return &PermittedResult{
		Permitted: result.Status.Permitted(),
		Blocking:  blocking,
		Profile:   result.Profile,
	}, nil
}

// HandleYevamim lists the living levirate candidates for a widow.
func (h *StatusHandler) HandleYevamim(ctx context.Context, treeID, widowID string, sliceIndex int) (*YevamimResult, error) {
	graph, slice, err := loadGraphAt(ctx, h.treeService, treeID, sliceIndex)
	if err != nil {
		return nil, err
	}

	yevamim, err := h.levirateService.YevamimFor(graph, widowID, slice)
	if err != nil {
		return nil, errors.Wrap(err, "deriving yevamim")
	}

	return &YevamimResult{
		WidowID: widowID,
		Slice:   slice,
		Yevamim: yevamim,
	}, nil
}

// HandleTies lists levirate ties at a slice, optionally only those touching
// one person.
func (h *StatusHandler) HandleTies(ctx context.Context, treeID, personID string, sliceIndex int) (*TiesResult, error) {
	graph, slice, err := loadGraphAt(ctx, h.treeService, treeID, sliceIndex)
	if err != nil {
		return nil, err
	}

	var ties []entities.Tie
	if personID == "" {
		ties, err = h.levirateService.TiesAt(graph, slice)
	} else {
		ties, err = h.levirateService.TiesFor(graph, personID, slice)
	}
	if err != nil {
		return nil, errors.Wrap(err, "deriving ties")
	}

	return &TiesResult{
		Slice: slice,
		Ties:  ties,
	}, nil
}

// HandleYevamos lists everyone holding an outstanding levirate obligation
// at a slice.
func (h *StatusHandler) HandleYevamos(ctx context.Context, treeID string, sliceIndex int) (*YevamosResult, error) {
	graph, slice, err := loadGraphAt(ctx, h.treeService, treeID, sliceIndex)
	if err != nil {
		return nil, err
	}

	widows, err := h.levirateService.Yevamos(graph, slice)
	if err != nil {
		return nil, errors.Wrap(err, "deriving yevamos")
	}

	return &YevamosResult{
		Slice:  slice,
		Widows: widows,
	}, nil
}

// loadGraphAt loads a tree's graph and resolves the slice a query should
// run at: the given slice, or the latest when negative. Slices beyond the
// timeline are left for the resolver to reject.
func loadGraphAt(ctx context.Context, trees *services.TreeService, treeID string, sliceIndex int) (*entities.TemporalGraph, int, error) {
	graph, err := trees.LoadGraph(ctx, treeID)
	if err != nil {
		return nil, 0, errors.Wrap(err, "loading tree")
	}

	latest := graph.LatestSlice()
	if latest < 0 {
		return nil, 0, errors.Newf("tree %q has no events", treeID)
	}
	if sliceIndex < 0 {
		sliceIndex = latest
	}
	return graph, sliceIndex, nil
}

// profileLabel names the profile a computation ran under.
func profileLabel(p *entities.OpinionProfile) string {
	if p == nil {
		return services.DefaultProfileName
	}
	return p.Name
}
