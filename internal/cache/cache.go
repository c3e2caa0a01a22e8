// Package cache keeps the session's local mirror of the recipe collection.
// Every mutation is persisted first and mirrored locally only after the
// store accepted it, so a failed call leaves the mirror untouched.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/otiai10/recipebox/internal/auth"
	"github.com/otiai10/recipebox/internal/recipe"
	"github.com/otiai10/recipebox/internal/search"
	"github.com/otiai10/recipebox/internal/store"
	"github.com/otiai10/recipebox/internal/user"
)

// Error definitions
var (
	// ErrUnauthenticated is returned when no user is signed in
	ErrUnauthenticated = auth.ErrUnauthenticated

	// ErrNotFound is returned when a recipe does not exist
	ErrNotFound = store.ErrNotFound

	// ErrProfileIncomplete is returned when reviewing before profile setup
	ErrProfileIncomplete = user.ErrProfileIncomplete

	// ErrNotAuthor is returned by RequireAuthor for recipes of other users
	ErrNotAuthor = errors.New("only the author can change this recipe")

	// ErrClosed is returned by operations on a closed Store
	ErrClosed = errors.New("recipe cache is closed")
)

// Profiles looks up user profiles.
// Get returns nil without error when the user has no profile.
type Profiles interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// Store is the recipe cache of one signed-in session.
// It is safe for concurrent use; its lock is never held during remote calls.
type Store struct {
	recipes   recipe.Repository
	profiles  Profiles
	validator recipe.Validator
	now       func() time.Time
	logger    zerolog.Logger

	mu        sync.RWMutex
	all       []recipe.Recipe
	displayed []recipe.Recipe
	query     string
	closed    bool
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger for remote failures and mutations
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocalAssets permits http://localhost image URLs
func WithLocalAssets(allow bool) Option {
	return func(s *Store) {
		s.validator.AllowLocalAssets = allow
	}
}

// New creates an empty Store
func New(recipes recipe.Repository, profiles Profiles, opts ...Option) *Store {
	s := &Store{
		recipes:   recipes,
		profiles:  profiles,
		now:       time.Now,
		logger:    zerolog.Nop(),
		all:       []recipe.Recipe{},
		displayed: []recipe.Recipe{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close drops the mirror. Later mutations fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.all = []recipe.Recipe{}
	s.displayed = []recipe.Recipe{}
	s.query = ""
	return nil
}

// All returns a copy of every known recipe, newest first
func (s *Store) All() []recipe.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.all)
}

// Displayed returns a copy of the recipes matching the current query
func (s *Store) Displayed() []recipe.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.displayed)
}

// Query returns the current search query
func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Search sets the query and recomputes the displayed set from All
func (s *Store) Search(q string) []recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = q
	s.refreshDisplayedLocked()
	return cloneAll(s.displayed)
}

// Suggestions returns at most search.MaxSuggestions recipes matching q.
// It does not change the displayed set.
func (s *Store) Suggestions(q string) []recipe.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(search.Suggestions(s.all, q))
}

// Create validates and persists a new recipe authored by the signed-in
// user, then adds it at the front of both the full and the displayed set,
// whatever the current query.
func (s *Store) Create(ctx context.Context, d recipe.Draft) (*recipe.Recipe, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	d = d.Normalized()
	if err := s.validator.ValidateDraft(d); err != nil {
		return nil, err
	}

	author, err := s.authorOf(ctx, claims)
	if err != nil {
		return nil, err
	}

	rec := recipe.New(d, author, s.now().UTC())
	id, err := s.recipes.Create(ctx, rec)
	if err != nil {
		s.logger.Error().Err(err).Str("uid", claims.UID).Msg("failed to create recipe")
		return nil, err
	}
	rec.ID = id

	s.mu.Lock()
	s.all = prepend(s.all, rec)
	s.displayed = prepend(s.displayed, rec)
	s.mu.Unlock()

	s.logger.Debug().Str("recipe_id", id).Str("uid", claims.UID).Msg("recipe created")
	return &rec, nil
}

// LoadAll replaces the mirror with every stored recipe, newest first.
// The current query is applied to the new displayed set.
func (s *Store) LoadAll(ctx context.Context) ([]recipe.Recipe, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	list, err := s.recipes.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load recipes")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.all = list
	s.refreshDisplayedLocked()

	s.logger.Debug().Int("count", len(list)).Msg("recipes loaded")
	return cloneAll(s.all), nil
}

// Update applies patch to a recipe. The caller must have checked
// ownership, see RequireAuthor. Only the full set is updated; the displayed
// set keeps the old entry until the search is run again with Search(Query()).
func (s *Store) Update(ctx context.Context, id string, patch recipe.Patch) (*recipe.Recipe, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	patch = patch.Normalized()
	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.recipes.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Str("recipe_id", id).Msg("failed to update recipe")
		return nil, err
	}

	s.mu.Lock()
	replace(s.all, *updated)
	s.mu.Unlock()

	s.logger.Debug().Str("recipe_id", id).Msg("recipe updated")
	return updated, nil
}

// Delete removes a recipe from the store and the mirror. The caller must
// have checked ownership, see RequireAuthor.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("recipe_id", id).Msg("failed to delete recipe")
		return err
	}

	s.mu.Lock()
	s.all = remove(s.all, id)
	s.displayed = remove(s.displayed, id)
	s.mu.Unlock()

	s.logger.Debug().Str("recipe_id", id).Msg("recipe deleted")
	return nil
}

// AddReview appends a review by the signed-in user and returns it along
// with the updated recipe. The append and the rating recompute happen in
// one atomic store operation.
func (s *Store) AddReview(ctx context.Context, recipeID string, in recipe.ReviewInput) (recipe.Review, *recipe.Recipe, error) {
	if err := s.checkOpen(); err != nil {
		return recipe.Review{}, nil, err
	}

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return recipe.Review{}, nil, ErrUnauthenticated
	}

	profile, err := s.profiles.Get(ctx, claims.UID)
	if err != nil {
		return recipe.Review{}, nil, err
	}
	if profile == nil || !profile.IsComplete() {
		return recipe.Review{}, nil, ErrProfileIncomplete
	}

	if err := in.Validate(); err != nil {
		return recipe.Review{}, nil, err
	}

	rev, err := recipe.NewReview(in, profile.Author(), s.now().UTC())
	if err != nil {
		return recipe.Review{}, nil, err
	}

	updated, err := s.recipes.AddReview(ctx, recipeID, rev)
	if err != nil {
		s.logger.Error().Err(err).Str("recipe_id", recipeID).Msg("failed to add review")
		return recipe.Review{}, nil, err
	}

	s.mu.Lock()
	replaceReviewed(s.all, *updated)
	replaceReviewed(s.displayed, *updated)
	s.mu.Unlock()

	s.logger.Debug().
		Str("recipe_id", recipeID).
		Str("review_id", rev.ID).
		Float64("rating", updated.Rating).
		Int("review_count", updated.ReviewCount).
		Msg("review added")
	return rev, updated, nil
}

// FetchOne returns the cached recipe, or reads it from the store without
// adding it to the mirror.
func (s *Store) FetchOne(ctx context.Context, id string) (*recipe.Recipe, error) {
	s.mu.RLock()
	for _, r := range s.all {
		if r.ID == id {
			rec := r.Clone()
			s.mu.RUnlock()
			return &rec, nil
		}
	}
	s.mu.RUnlock()

	rec, err := s.recipes.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().Err(err).Str("recipe_id", id).Msg("failed to fetch recipe")
		}
		return nil, err
	}
	return rec, nil
}

// ListByAuthor returns the recipes of one author, newest first
func (s *Store) ListByAuthor(ctx context.Context, authorID string) ([]recipe.Recipe, error) {
	list, err := s.recipes.ListByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", authorID).Msg("failed to list recipes by author")
		return nil, err
	}

	recipe.SortNewestFirst(list)
	return list, nil
}

// RequireAuthor returns the recipe if the signed-in user wrote it
func (s *Store) RequireAuthor(ctx context.Context, id string) (*recipe.Recipe, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	rec, err := s.FetchOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.AuthorID != claims.UID {
		return nil, ErrNotAuthor
	}
	return rec, nil
}

// authorOf snapshots the signed-in user, preferring the stored profile
// over the token claims.
func (s *Store) authorOf(ctx context.Context, claims *auth.Claims) (recipe.Author, error) {
	profile, err := s.profiles.Get(ctx, claims.UID)
	if err != nil {
		return recipe.Author{}, err
	}
	if profile != nil && profile.DisplayName != "" {
		return profile.Author(), nil
	}
	return recipe.NewAuthor(claims.UID, claims.Name, claims.Picture), nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// refreshDisplayedLocked recomputes the displayed set. Callers hold s.mu.
func (s *Store) refreshDisplayedLocked() {
	s.displayed = append([]recipe.Recipe(nil), search.Results(s.all, s.query)...)
}

func prepend(list []recipe.Recipe, r recipe.Recipe) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(list)+1)
	out = append(out, r)
	return append(out, list...)
}

// replace swaps the entry with r's ID in place, if present
func replace(list []recipe.Recipe, r recipe.Recipe) {
	for i := range list {
		if list[i].ID == r.ID {
			list[i] = r
			return
		}
	}
}

// replaceReviewed is replace for review results. Concurrent reviews may
// return out of order, so a result with fewer reviews than the cached entry
// is dropped.
func replaceReviewed(list []recipe.Recipe, r recipe.Recipe) {
	for i := range list {
		if list[i].ID == r.ID {
			if len(r.Reviews) >= len(list[i].Reviews) {
				list[i] = r
			}
			return
		}
	}
}

func remove(list []recipe.Recipe, id string) []recipe.Recipe {
	out := make([]recipe.Recipe, 0, len(list))
	for _, r := range list {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func cloneAll(list []recipe.Recipe) []recipe.Recipe {
	out := make([]recipe.Recipe, len(list))
	for i, r := range list {
		out[i] = r.Clone()
	}
	return out
}
