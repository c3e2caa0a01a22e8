package recipe

import (
	"context"
	"time"

	"github.com/otiai10/recipebox/internal/store"
)

// ErrNotFound is returned when a recipe does not exist
var ErrNotFound = store.ErrNotFound

// Repository defines the interface for recipe persistence
type Repository interface {
	// Create stores a new recipe and returns its ID
	Create(ctx context.Context, r Recipe) (string, error)

	// Get retrieves a recipe by ID.
	// Returns ErrNotFound if the recipe does not exist.
	Get(ctx context.Context, id string) (*Recipe, error)

	// List returns every recipe, newest first
	List(ctx context.Context) ([]Recipe, error)

	// ListByAuthor returns the recipes of one author in no particular order
	ListByAuthor(ctx context.Context, authorID string) ([]Recipe, error)

	// Update applies patch to the stored recipe and replaces it, stamping
	// updatedAt. The read and the write are atomic.
	// Returns ErrNotFound if the recipe does not exist.
	Update(ctx context.Context, id string, patch Patch, now time.Time) (*Recipe, error)

	// AddReview appends rev and recomputes the rating aggregate atomically.
	// Returns ErrNotFound if the recipe does not exist.
	AddReview(ctx context.Context, id string, rev Review) (*Recipe, error)

	// Delete removes a recipe.
	// Returns ErrNotFound if the recipe does not exist.
	Delete(ctx context.Context, id string) error
}
