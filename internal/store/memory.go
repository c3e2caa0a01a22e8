package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryGateway is an in-process Gateway.
// Stored values are normalized to the shapes Firestore returns and copied on
// every read and write, so callers never share state with the store.
type MemoryGateway struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
}

// Ensure MemoryGateway implements Gateway interface
var _ Gateway = (*MemoryGateway)(nil)

// NewMemoryGateway creates an empty MemoryGateway
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		collections: make(map[string]map[string]map[string]any),
	}
}

// Close implements Store
func (g *MemoryGateway) Close() error {
	return nil
}

// CreateDocument stores data under a generated ID
func (g *MemoryGateway) CreateDocument(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", remoteError("create document in "+collection, err)
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")

	g.mu.Lock()
	defer g.mu.Unlock()
	g.collection(collection)[id] = normalizeMap(data)

	return id, nil
}

// CreateDocumentWithID stores data under id unless it is taken
func (g *MemoryGateway) CreateDocumentWithID(ctx context.Context, collection, id string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return remoteError("create document "+collection+"/"+id, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	docs := g.collection(collection)
	if _, exists := docs[id]; exists {
		return ErrAlreadyExists
	}
	docs[id] = normalizeMap(data)

	return nil
}

// GetDocument returns a copy of the stored document
func (g *MemoryGateway) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, remoteError("get document "+collection+"/"+id, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	data, ok := g.collection(collection)[id]
	if !ok {
		return Document{}, ErrNotFound
	}

	return Document{ID: id, Data: normalizeMap(data)}, nil
}

// UpdateDocument replaces or merges a document, creating it if needed
func (g *MemoryGateway) UpdateDocument(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	if err := ctx.Err(); err != nil {
		return remoteError("update document "+collection+"/"+id, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	docs := g.collection(collection)
	existing, ok := docs[id]
	if !merge || !ok {
		docs[id] = normalizeMap(data)
		return nil
	}

	merged := normalizeMap(existing)
	for k, v := range normalizeMap(data) {
		merged[k] = v
	}
	docs[id] = merged

	return nil
}

// DeleteDocument removes a document
func (g *MemoryGateway) DeleteDocument(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return remoteError("delete document "+collection+"/"+id, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	docs := g.collection(collection)
	if _, ok := docs[id]; !ok {
		return ErrNotFound
	}
	delete(docs, id)

	return nil
}

// QueryEquals returns matching documents ordered by ID
func (g *MemoryGateway) QueryEquals(ctx context.Context, collection, field string, value any) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, remoteError("query "+collection+" by "+field, err)
	}

	want := normalizeValue(value)

	g.mu.Lock()
	defer g.mu.Unlock()

	result := make([]Document, 0)
	for id, data := range g.collection(collection) {
		got, ok := data[field]
		if ok && equalValues(got, want) {
			result = append(result, Document{ID: id, Data: normalizeMap(data)})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

// QueryOrdered returns documents that have field, sorted by it.
// Ties are broken by document ID, and documents missing the field are
// skipped, matching Firestore.
func (g *MemoryGateway) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, remoteError("list "+collection+" ordered by "+field, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	result := make([]Document, 0)
	for id, data := range g.collection(collection) {
		if _, ok := data[field]; ok {
			result = append(result, Document{ID: id, Data: normalizeMap(data)})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		c := compareValues(result[i].Data[field], result[j].Data[field])
		if c == 0 {
			return result[i].ID < result[j].ID
		}
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})

	return result, nil
}

// AtomicUpdate holds the store lock for the whole read-modify-write
func (g *MemoryGateway) AtomicUpdate(ctx context.Context, collection, id string, fn Mutator) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, remoteError("update document "+collection+"/"+id, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	docs := g.collection(collection)
	current, ok := docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}

	next, err := fn(Document{ID: id, Data: normalizeMap(current)})
	if err != nil {
		return Document{}, err
	}

	docs[id] = normalizeMap(next)
	return Document{ID: id, Data: normalizeMap(next)}, nil
}

// collection returns the named collection, creating it. Callers hold g.mu.
func (g *MemoryGateway) collection(name string) map[string]map[string]any {
	docs, ok := g.collections[name]
	if !ok {
		docs = make(map[string]map[string]any)
		g.collections[name] = docs
	}
	return docs
}

// normalizeMap deep-copies data into Firestore's decoded shapes
func normalizeMap(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

// normalizeValue converts v the way a Firestore round trip would
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64:
		return t
	case time.Time:
		return t.UTC()
	case map[string]any:
		return normalizeMap(t)
	case []byte:
		out := make([]byte, len(t))
		copy(out, t)
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalizeValue(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem().Interface())
	}

	return v
}

// equalValues compares two normalized values
func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two normalized values of the same kind
func compareValues(a, b any) int {
	switch ta := a.(type) {
	case time.Time:
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	case string:
		if tb, ok := b.(string); ok {
			return strings.Compare(ta, tb)
		}
	}

	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	return 0
}

// toFloat widens numeric values
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
