package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/errors"
)

// DefaultProfileName is the reserved name of the seeded profile that tracks
// every dispute's declared default.
const DefaultProfileName = "default"

// validProfileNameRegex allows lowercase alphanumerics, underscores and
// hyphens, starting with a letter.
var validProfileNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ProfileService manages opinion profiles. Profiles select one opinion per
// dispute; disputes a profile does not name fall back to the registry's
// declared default, so an empty profile is legal and behaves like no
// profile at all.
type ProfileService struct {
	store    ports.TreeStore
	registry *entities.Registry

	cache       map[string]*entities.OpinionProfile // keyed by normalized name
	sortedNames []string                            // cached sorted names, populated with cache
	cacheMu     sync.RWMutex
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store ports.TreeStore, registry *entities.Registry) *ProfileService {
	return &ProfileService{
		store:    store,
		registry: registry,
		cache:    make(map[string]*entities.OpinionProfile),
	}
}

// LoadDefaults seeds the default profile into the store if it is missing.
func (s *ProfileService) LoadDefaults(ctx context.Context) error {
	existing, err := s.store.FindProfileByName(ctx, DefaultProfileName)
	if err != nil {
		return errors.Wrap(err, "checking default profile")
	}
	if existing != nil {
		return nil
	}
	if err := s.store.SaveProfile(ctx, entities.DefaultProfile(s.registry)); err != nil {
		return errors.Wrap(err, "seeding default profile")
	}
	s.invalidateCache()
	return nil
}

// Create adds a new empty profile. Until opinions are selected it behaves
// exactly like the registry defaults.
func (s *ProfileService) Create(ctx context.Context, name string) (*entities.OpinionProfile, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if !validProfileNameRegex.MatchString(name) {
		return nil, errors.New("invalid profile name: must be lowercase alphanumeric with underscores or hyphens, starting with a letter")
	}

	existing, err := s.store.FindProfileByName(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "checking profile name")
	}
	if existing != nil {
		return nil, errors.Newf("profile %q already exists", name)
	}

	profile := &entities.OpinionProfile{
		ID:         uuid.New().String(),
		Name:       name,
		Selections: make(map[string]string),
	}
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "saving profile")
	}

	s.invalidateCache()
	return profile, nil
}

// SetOpinion selects the opinion a profile follows for a dispute. Both the
// dispute and the opinion must be declared in the registry.
func (s *ProfileService) SetOpinion(ctx context.Context, nameOrID, disputeID, opinionID string) (*entities.OpinionProfile, error) {
	dispute, ok := s.registry.DisputeByID(disputeID)
	if !ok {
		return nil, errors.Newf("unknown dispute %q", disputeID)
	}
	if _, ok := dispute.Opinion(opinionID); !ok {
		return nil, errors.Newf("dispute %q has no opinion %q", disputeID, opinionID)
	}

	profile, err := s.Find(ctx, nameOrID)
	if err != nil {
		return nil, err
	}
	profile.Select(disputeID, opinionID)
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "saving profile")
	}

	s.invalidateCache()
	return profile, nil
}

// Find resolves a profile by ID or, failing that, by name.
func (s *ProfileService) Find(ctx context.Context, nameOrID string) (*entities.OpinionProfile, error) {
	profile, err := s.store.FindProfile(ctx, nameOrID)
	if err != nil {
		return nil, errors.Wrap(err, "finding profile by id")
	}
	if profile == nil {
		profile, err = s.store.FindProfileByName(ctx, nameOrID)
		if err != nil {
			return nil, errors.Wrap(err, "finding profile by name")
		}
	}
	if profile == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "profile %q", nameOrID)
	}
	return profile, nil
}

// List returns all profiles.
func (s *ProfileService) List(ctx context.Context) ([]entities.OpinionProfile, error) {
	return s.store.ListProfiles(ctx)
}

// Remove deletes a profile. The seeded default profile cannot be removed.
func (s *ProfileService) Remove(ctx context.Context, nameOrID string) error {
	profile, err := s.Find(ctx, nameOrID)
	if err != nil {
		return err
	}
	if profile.Name == DefaultProfileName {
		return errors.Newf("cannot remove the %q profile", DefaultProfileName)
	}
	if err := s.store.DeleteProfile(ctx, profile.ID); err != nil {
		return errors.Wrap(err, "deleting profile")
	}

	s.invalidateCache()
	return nil
}

// Resolve returns the profile a computation should run under: nil for an
// empty name (registry defaults apply), otherwise the named profile.
// Cached, since every status query goes through here.
func (s *ProfileService) Resolve(ctx context.Context, name string) (*entities.OpinionProfile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	key := entities.NormalizeName(name)

	// Fast path: check cache with read lock
	s.cacheMu.RLock()
	if len(s.cache) > 0 {
		profile, ok := s.cache[key]
		s.cacheMu.RUnlock()
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "profile %q", name)
		}
		return profile, nil
	}
	s.cacheMu.RUnlock()

	// Slow path: need to populate cache
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	// Double-check: another goroutine may have populated the cache
	if len(s.cache) == 0 {
		profiles, err := s.store.ListProfiles(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "listing profiles")
		}
		s.populateCache(profiles)
	}

	profile, ok := s.cache[key]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "profile %q", name)
	}
	return profile, nil
}

// Names returns all profile names, sorted. The returned slice is shared and
// must not be modified by callers.
func (s *ProfileService) Names(ctx context.Context) ([]string, error) {
	s.cacheMu.RLock()
	if len(s.cache) > 0 {
		names := s.sortedNames
		s.cacheMu.RUnlock()
		return names, nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if len(s.cache) == 0 {
		profiles, err := s.store.ListProfiles(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "listing profiles")
		}
		s.populateCache(profiles)
	}
	return s.sortedNames, nil
}

// populateCache fills the cache and sortedNames from a profiles slice.
// Caller must hold cacheMu write lock.
func (s *ProfileService) populateCache(profiles []entities.OpinionProfile) {
	s.cache = make(map[string]*entities.OpinionProfile, len(profiles))
	s.sortedNames = make([]string, len(profiles))
	for i := range profiles {
		s.cache[entities.NormalizeName(profiles[i].Name)] = &profiles[i]
		s.sortedNames[i] = profiles[i].Name
	}
	sort.Strings(s.sortedNames)
}

func (s *ProfileService) invalidateCache() {
	s.cacheMu.Lock()
	s.cache = make(map[string]*entities.OpinionProfile)
	s.sortedNames = nil
	s.cacheMu.Unlock()
}
