package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGateway_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	id, err := g.CreateDocument(ctx, CollectionRecipes, map[string]any{
		"title":       "Miso Soup",
		"ingredients": []string{"miso", "tofu"},
		"reviewCount": 0,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := g.GetDocument(ctx, CollectionRecipes, id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Miso Soup", doc.Data["title"])
	assert.Equal(t, []any{"miso", "tofu"}, doc.Data["ingredients"])
	assert.Equal(t, int64(0), doc.Data["reviewCount"])
}

func TestMemoryGateway_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	id, err := g.CreateDocument(ctx, CollectionRecipes, map[string]any{"tags": []string{"a"}})
	require.NoError(t, err)

	doc, err := g.GetDocument(ctx, CollectionRecipes, id)
	require.NoError(t, err)
	doc.Data["tags"].([]any)[0] = "mutated"

	again, err := g.GetDocument(ctx, CollectionRecipes, id)
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, again.Data["tags"])
}

func TestMemoryGateway_NotFound(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	_, err := g.GetDocument(ctx, CollectionRecipes, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = g.DeleteDocument(ctx, CollectionRecipes, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = g.AtomicUpdate(ctx, CollectionRecipes, "missing", func(Document) (map[string]any, error) {
		t.Fatal("mutator must not run for a missing document")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGateway_CreateDocumentWithID(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	require.NoError(t, g.CreateDocumentWithID(ctx, CollectionUsernames, "chef1", map[string]any{"uid": "u1"}))

	err := g.CreateDocumentWithID(ctx, CollectionUsernames, "chef1", map[string]any{"uid": "u2"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	doc, err := g.GetDocument(ctx, CollectionUsernames, "chef1")
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.Data["uid"])
}

func TestMemoryGateway_UpdateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("merge keeps other fields", func(t *testing.T) {
		g := NewMemoryGateway()
		require.NoError(t, g.UpdateDocument(ctx, CollectionUsers, "u1", map[string]any{"email": "a@example.com", "bio": ""}, false))
		require.NoError(t, g.UpdateDocument(ctx, CollectionUsers, "u1", map[string]any{"bio": "hello"}, true))

		doc, err := g.GetDocument(ctx, CollectionUsers, "u1")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", doc.Data["email"])
		assert.Equal(t, "hello", doc.Data["bio"])
	})

	t.Run("replace drops other fields", func(t *testing.T) {
		g := NewMemoryGateway()
		require.NoError(t, g.UpdateDocument(ctx, CollectionUsers, "u1", map[string]any{"email": "a@example.com"}, false))
		require.NoError(t, g.UpdateDocument(ctx, CollectionUsers, "u1", map[string]any{"bio": "hello"}, false))

		doc, err := g.GetDocument(ctx, CollectionUsers, "u1")
		require.NoError(t, err)
		_, hasEmail := doc.Data["email"]
		assert.False(t, hasEmail)
	})
}

func TestMemoryGateway_QueryEquals(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()

	require.NoError(t, g.UpdateDocument(ctx, CollectionUsers, "u1", map[string]any{"username": "chef1"}, false))
	require.NoError(t, g.UpdateDocument(ctx, CollectionUsers, "u2", map[string]any{"username": "chef2"}, false))
	require.NoError(t, g.UpdateDocument(ctx, CollectionUsers, "u3", map[string]any{"email": "x@example.com"}, false))

	docs, err := g.QueryEquals(ctx, CollectionUsers, "username", "chef2")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "u2", docs[0].ID)

	docs, err = g.QueryEquals(ctx, CollectionUsers, "username", "nobody")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryGateway_QueryOrdered(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, g.UpdateDocument(ctx, CollectionRecipes, "old", map[string]any{"createdAt": base}, false))
	require.NoError(t, g.UpdateDocument(ctx, CollectionRecipes, "new", map[string]any{"createdAt": base.Add(2 * time.Hour)}, false))
	require.NoError(t, g.UpdateDocument(ctx, CollectionRecipes, "mid", map[string]any{"createdAt": base.Add(time.Hour)}, false))
	require.NoError(t, g.UpdateDocument(ctx, CollectionRecipes, "undated", map[string]any{"title": "x"}, false))

	docs, err := g.QueryOrdered(ctx, CollectionRecipes, "createdAt", Desc)
	require.NoError(t, err)

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)

	docs, err = g.QueryOrdered(ctx, CollectionRecipes, "createdAt", Asc)
	require.NoError(t, err)
	assert.Equal(t, "old", docs[0].ID)
}

func TestMemoryGateway_AtomicUpdateSerializes(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	require.NoError(t, g.UpdateDocument(ctx, CollectionRecipes, "r1", map[string]any{"count": 0}, false))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.AtomicUpdate(ctx, CollectionRecipes, "r1", func(cur Document) (map[string]any, error) {
				next := cur.Data
				next["count"] = cur.Data["count"].(int64) + 1
				return next, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := g.GetDocument(ctx, CollectionRecipes, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), doc.Data["count"])
}

func TestMemoryGateway_AtomicUpdateMutatorError(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	require.NoError(t, g.UpdateDocument(ctx, CollectionRecipes, "r1", map[string]any{"count": 1}, false))

	boom := errors.New("boom")
	_, err := g.AtomicUpdate(ctx, CollectionRecipes, "r1", func(Document) (map[string]any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := g.GetDocument(ctx, CollectionRecipes, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Data["count"])
}

func TestMemoryGateway_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewMemoryGateway()
	_, err := g.CreateDocument(ctx, CollectionRecipes, map[string]any{})
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeValue(t *testing.T) {
	type level string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"int widens", 3, int64(3)},
		{"float32 widens", float32(1.5), float64(1.5)},
		{"named string", level("Easy"), "Easy"},
		{"string slice", []string{"a", "b"}, []any{"a", "b"}},
		{"nested maps", []map[string]any{{"n": 1}}, []any{map[string]any{"n": int64(1)}}},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}
