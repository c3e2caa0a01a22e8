package store

import (
	"context"
	"errors"
)

// Collection names used by the application
const (
	CollectionUsers     = "users"
	CollectionRecipes   = "recipes"
	CollectionUsernames = "usernames"
)

// Error definitions
var (
	// ErrNotFound is returned when the referenced document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned when creating a document whose ID is taken
	ErrAlreadyExists = errors.New("document already exists")

	// ErrRemote marks every other failure reported by the remote store.
	// It is never classified further.
	ErrRemote = errors.New("remote store failure")
)

// Direction is the sort order of an ordered query
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Document is a single stored record addressed by collection and ID
type Document struct {
	ID   string
	Data map[string]any
}

// Mutator computes the next state of a document from its current state.
// It may be invoked more than once when the store retries a contended
// transaction, so it must not have side effects.
type Mutator func(current Document) (map[string]any, error)

// Store defines the base interface for data store operations
type Store interface {
	// Close releases any resources held by the store
	Close() error
}

// Gateway is the document store the core persists to.
//
// Values in Document.Data follow Firestore's decoded shapes: strings,
// int64, float64, bool, time.Time, []any and map[string]any.
type Gateway interface {
	// CreateDocument stores data under a store-assigned ID and returns it
	CreateDocument(ctx context.Context, collection string, data map[string]any) (string, error)

	// CreateDocumentWithID stores data under id.
	// Returns ErrAlreadyExists if a document with that ID exists.
	CreateDocumentWithID(ctx context.Context, collection, id string, data map[string]any) error

	// GetDocument retrieves a document.
	// Returns ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, collection, id string) (Document, error)

	// UpdateDocument writes data to id, creating the document if needed.
	// With merge the given fields are merged into the stored document,
	// otherwise the stored document is replaced.
	UpdateDocument(ctx context.Context, collection, id string, data map[string]any, merge bool) error

	// DeleteDocument removes a document.
	// Returns ErrNotFound if it does not exist.
	DeleteDocument(ctx context.Context, collection, id string) error

	// QueryEquals returns documents whose field equals value, in no particular order
	QueryEquals(ctx context.Context, collection, field string, value any) ([]Document, error)

	// QueryOrdered returns every document of the collection ordered by field
	QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error)

	// AtomicUpdate reads id, applies fn and writes the result as one atomic
	// operation, returning the committed document.
	// Returns ErrNotFound if the document does not exist.
	AtomicUpdate(ctx context.Context, collection, id string, fn Mutator) (Document, error)
}
