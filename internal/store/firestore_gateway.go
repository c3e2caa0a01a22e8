package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errNilClient is returned when the gateway was built without a client
var errNilClient = errors.New("firestore client is nil")

// FirestoreGateway implements Gateway using Firestore
type FirestoreGateway struct {
	client *firestore.Client
}

// Ensure FirestoreGateway implements Gateway interface
var _ Gateway = (*FirestoreGateway)(nil)

// NewFirestoreGateway creates a new FirestoreGateway
//
// Parameters:
//   - client: Firestore client instance
//
// Returns:
//   - FirestoreGateway instance
func NewFirestoreGateway(client *firestore.Client) *FirestoreGateway {
	return &FirestoreGateway{
		client: client,
	}
}

// CreateDocument adds a document with an auto-generated ID
func (g *FirestoreGateway) CreateDocument(ctx context.Context, collection string, data map[string]any) (string, error) {
	if g.client == nil {
		return "", remoteError("create document", errNilClient)
	}

	docRef, _, err := g.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", remoteError("create document in "+collection, err)
	}

	return docRef.ID, nil
}

// CreateDocumentWithID creates a document under id, failing if it exists
func (g *FirestoreGateway) CreateDocumentWithID(ctx context.Context, collection, id string, data map[string]any) error {
	if g.client == nil {
		return remoteError("create document", errNilClient)
	}

	_, err := g.client.Collection(collection).Doc(id).Create(ctx, data)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrAlreadyExists
		}
		return remoteError("create document "+collection+"/"+id, err)
	}

	return nil
}

// GetDocument retrieves a document by ID
func (g *FirestoreGateway) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	if g.client == nil {
		return Document{}, remoteError("get document", errNilClient)
	}

	snap, err := g.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, ErrNotFound
		}
		return Document{}, remoteError("get document "+collection+"/"+id, err)
	}

	return snapshotToDocument(snap), nil
}

// UpdateDocument sets a document, merging fields when merge is true
func (g *FirestoreGateway) UpdateDocument(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	if g.client == nil {
		return remoteError("update document", errNilClient)
	}

	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}

	if _, err := g.client.Collection(collection).Doc(id).Set(ctx, data, opts...); err != nil {
		return remoteError("update document "+collection+"/"+id, err)
	}

	return nil
}

// DeleteDocument removes a document, failing with ErrNotFound if it is absent
func (g *FirestoreGateway) DeleteDocument(ctx context.Context, collection, id string) error {
	if g.client == nil {
		return remoteError("delete document", errNilClient)
	}

	_, err := g.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return remoteError("delete document "+collection+"/"+id, err)
	}

	return nil
}

// QueryEquals runs a single equality filter
func (g *FirestoreGateway) QueryEquals(ctx context.Context, collection, field string, value any) ([]Document, error) {
	if g.client == nil {
		return nil, remoteError("query documents", errNilClient)
	}

	snaps, err := g.client.Collection(collection).
		Where(field, "==", value).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, remoteError("query "+collection+" by "+field, err)
	}

	return snapshotsToDocuments(snaps), nil
}

// QueryOrdered lists a whole collection ordered by a single field
func (g *FirestoreGateway) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	if g.client == nil {
		return nil, remoteError("query documents", errNilClient)
	}

	order := firestore.Asc
	if dir == Desc {
		order = firestore.Desc
	}

	snaps, err := g.client.Collection(collection).
		OrderBy(field, order).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, remoteError("list "+collection+" ordered by "+field, err)
	}

	return snapshotsToDocuments(snaps), nil
}

// AtomicUpdate applies fn inside a Firestore transaction.
// Firestore reruns the transaction on contention, so concurrent updates to
// the same document are serialized and none is lost.
func (g *FirestoreGateway) AtomicUpdate(ctx context.Context, collection, id string, fn Mutator) (Document, error) {
	if g.client == nil {
		return Document{}, remoteError("update document atomically", errNilClient)
	}

	docRef := g.client.Collection(collection).Doc(id)

	var (
		committed Document
		fnErr     error
	)
	err := g.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		next, err := fn(snapshotToDocument(snap))
		if err != nil {
			fnErr = err
			return err
		}

		committed = Document{ID: id, Data: next}
		return tx.Set(docRef, next)
	})
	if fnErr != nil {
		return Document{}, fnErr
	}
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Document{}, ErrNotFound
		}
		return Document{}, remoteError("update document "+collection+"/"+id, err)
	}

	return committed, nil
}

// snapshotToDocument converts a Firestore snapshot to a Document
func snapshotToDocument(snap *firestore.DocumentSnapshot) Document {
	return Document{
		ID:   snap.Ref.ID,
		Data: snap.Data(),
	}
}

// snapshotsToDocuments converts query results, preserving their order
func snapshotsToDocuments(snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, snapshotToDocument(snap))
	}
	return docs
}

// remoteError wraps a store failure so callers can match ErrRemote
func remoteError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrRemote, op, err)
}
