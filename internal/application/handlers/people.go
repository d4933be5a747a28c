package handlers

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
)

// PeopleHandler answers person and relation listing queries against a
// tree's snapshot at a point in time.
type PeopleHandler struct {
	treeService *services.TreeService
	resolver    *services.ResolverService
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(treeService *services.TreeService, resolver *services.ResolverService) *PeopleHandler {
	return &PeopleHandler{
		treeService: treeService,
		resolver:    resolver,
	}
}

// PeopleListResult contains the people visible at a slice.
type PeopleListResult struct {
	Slice  int
	People []entities.Person
	Total  int
}

// RelationListResult contains the relations visible at a slice.
type RelationListResult struct {
	Slice     int
	Relations []entities.Relation
	Total     int
}

// PersonDetail describes a person at a slice: vital status, the parents
// and children the snapshot derives, and every relation naming them.
type PersonDetail struct {
	Person    entities.Person
	Slice     int
	Alive     bool
	Parents   []string
	Children  []string
	Relations []entities.Relation
}

// HandleList lists the people known at a slice, in introduction order.
func (h *PeopleHandler) HandleList(ctx context.Context, treeID string, sliceIndex int) (*PeopleListResult, error) {
	snap, slice, err := h.snapshotAt(ctx, treeID, sliceIndex)
	if err != nil {
		return nil, err
	}

	people := snap.People()
	return &PeopleListResult{
		Slice:  slice,
		People: people,
		Total:  len(people),
	}, nil
}

// HandleRelations lists the relations known at a slice, in introduction
// order.
func (h *PeopleHandler) HandleRelations(ctx context.Context, treeID string, sliceIndex int) (*RelationListResult, error) {
	snap, slice, err := h.snapshotAt(ctx, treeID, sliceIndex)
	if err != nil {
		return nil, err
	}

	relations := snap.Relations()
	return &RelationListResult{
		Slice:     slice,
		Relations: relations,
		Total:     len(relations),
	}, nil
}

// HandleShow describes one person at a slice.
func (h *PeopleHandler) HandleShow(ctx context.Context, treeID, personID string, sliceIndex int) (*PersonDetail, error) {
	snap, slice, err := h.snapshotAt(ctx, treeID, sliceIndex)
	if err != nil {
		return nil, err
	}

	person, ok := snap.Person(personID)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownPerson, "person %q at slice %d", personID, slice)
	}

	return &PersonDetail{
		Person:    person,
		Slice:     slice,
		Alive:     snap.Alive(personID),
		Parents:   snap.ParentsOf(personID),
		Children:  snap.ChildrenOf(personID),
		Relations: snap.RelationsOf(personID),
	}, nil
}

// snapshotAt resolves a tree's snapshot at the given slice, or at the
// latest slice when negative.
func (h *PeopleHandler) snapshotAt(ctx context.Context, treeID string, sliceIndex int) (*entities.Snapshot, int, error) {
	graph, slice, err := loadGraphAt(ctx, h.treeService, treeID, sliceIndex)
	if err != nil {
		return nil, 0, err
	}

	snap, err := h.resolver.Resolve(graph, slice)
	if err != nil {
		return nil, 0, errors.Wrap(err, "resolving snapshot")
	}
	return snap, slice, nil
}
