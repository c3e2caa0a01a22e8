package recipe

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/otiai10/recipebox/internal/store"
)

// GatewayRepository implements Repository on a store.Gateway
type GatewayRepository struct {
	gateway store.Gateway
}

// Ensure GatewayRepository implements Repository interface
var _ Repository = (*GatewayRepository)(nil)

// NewGatewayRepository creates a new GatewayRepository
func NewGatewayRepository(gateway store.Gateway) *GatewayRepository {
	return &GatewayRepository{gateway: gateway}
}

// Create stores a new recipe and returns its ID
func (r *GatewayRepository) Create(ctx context.Context, rec Recipe) (string, error) {
	id, err := r.gateway.CreateDocument(ctx, store.CollectionRecipes, recipeToMap(rec))
	if err != nil {
		return "", fmt.Errorf("failed to create recipe: %w", err)
	}
	return id, nil
}

// Get retrieves a recipe by ID
func (r *GatewayRepository) Get(ctx context.Context, id string) (*Recipe, error) {
	doc, err := r.gateway.GetDocument(ctx, store.CollectionRecipes, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %s: %w", id, err)
	}

	rec := documentToRecipe(doc)
	return &rec, nil
}

// List returns every recipe ordered by createdAt, newest first
func (r *GatewayRepository) List(ctx context.Context) ([]Recipe, error) {
	docs, err := r.gateway.QueryOrdered(ctx, store.CollectionRecipes, "createdAt", store.Desc)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return documentsToRecipes(docs), nil
}

// ListByAuthor returns the recipes whose authorId matches
func (r *GatewayRepository) ListByAuthor(ctx context.Context, authorID string) ([]Recipe, error) {
	docs, err := r.gateway.QueryEquals(ctx, store.CollectionRecipes, "authorId", authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes by author %s: %w", authorID, err)
	}
	return documentsToRecipes(docs), nil
}

// Update applies patch inside one atomic read-modify-write and replaces the
// stored document with the result.
func (r *GatewayRepository) Update(ctx context.Context, id string, patch Patch, now time.Time) (*Recipe, error) {
	var updated Recipe
	_, err := r.gateway.AtomicUpdate(ctx, store.CollectionRecipes, id, func(cur store.Document) (map[string]any, error) {
		updated = patch.Apply(documentToRecipe(cur))
		stamp := now
		updated.UpdatedAt = &stamp
		return recipeToMap(updated), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %s: %w", id, err)
	}

	return &updated, nil
}

// AddReview appends rev inside one atomic read-modify-write.
// The aggregate is recomputed from the stored reviews, so concurrent
// reviews of the same recipe are never lost.
func (r *GatewayRepository) AddReview(ctx context.Context, id string, rev Review) (*Recipe, error) {
	var updated Recipe
	_, err := r.gateway.AtomicUpdate(ctx, store.CollectionRecipes, id, func(cur store.Document) (map[string]any, error) {
		updated = documentToRecipe(cur).WithReview(rev)
		return recipeToMap(updated), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add review to recipe %s: %w", id, err)
	}

	return &updated, nil
}

// Delete removes a recipe
func (r *GatewayRepository) Delete(ctx context.Context, id string) error {
	if err := r.gateway.DeleteDocument(ctx, store.CollectionRecipes, id); err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	return nil
}

// SortNewestFirst orders recipes by createdAt descending, keeping the
// relative order of recipes created at the same instant.
func SortNewestFirst(recipes []Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].CreatedAt.After(recipes[j].CreatedAt)
	})
}

// recipeToMap converts a Recipe to a map for Firestore storage.
// The ID is not stored; it is the document ID.
func recipeToMap(rec Recipe) map[string]any {
	reviews := make([]any, 0, len(rec.Reviews))
	for _, rev := range rec.Reviews {
		reviews = append(reviews, reviewToMap(rev))
	}

	data := map[string]any{
		"title":        rec.Title,
		"ingredients":  stringsToAny(rec.Ingredients),
		"instructions": stringsToAny(rec.Instructions),
		"cookingTime":  rec.CookingTime,
		"difficulty":   string(rec.Difficulty),
		"image":        rec.Image,
		"authorId":     rec.AuthorID,
		"author": map[string]any{
			"id":     rec.Author.ID,
			"name":   rec.Author.Name,
			"avatar": rec.Author.Avatar,
		},
		"rating":      rec.Rating,
		"reviewCount": int64(rec.ReviewCount),
		"reviews":     reviews,
		"createdAt":   rec.CreatedAt,
	}

	if rec.UpdatedAt != nil {
		data["updatedAt"] = *rec.UpdatedAt
	}

	return data
}

// reviewToMap converts a Review to a map for embedding in its recipe
func reviewToMap(rev Review) map[string]any {
	return map[string]any{
		"id":              rev.ID,
		"userId":          rev.UserID,
		"userDisplayName": rev.UserDisplayName,
		"avatar":          rev.Avatar,
		"rating":          int64(rev.Rating),
		"comment":         rev.Comment,
		"date":            rev.Date,
	}
}

// documentToRecipe converts a stored document to a Recipe.
// Missing or mistyped fields are left at their zero values.
func documentToRecipe(doc store.Document) Recipe {
	data := doc.Data

	rec := Recipe{
		ID:      doc.ID,
		Reviews: []Review{},
	}

	if title, ok := data["title"].(string); ok {
		rec.Title = title
	}
	rec.Ingredients = anyToStrings(data["ingredients"])
	rec.Instructions = anyToStrings(data["instructions"])
	if cookingTime, ok := data["cookingTime"].(string); ok {
		rec.CookingTime = cookingTime
	}
	if difficulty, ok := data["difficulty"].(string); ok {
		rec.Difficulty = Difficulty(difficulty)
	}
	if image, ok := data["image"].(string); ok {
		rec.Image = image
	}
	if authorID, ok := data["authorId"].(string); ok {
		rec.AuthorID = authorID
	}
	if author, ok := data["author"].(map[string]any); ok {
		rec.Author.ID, _ = author["id"].(string)
		rec.Author.Name, _ = author["name"].(string)
		rec.Author.Avatar, _ = author["avatar"].(string)
	}
	if avg, ok := toFloat(data["rating"]); ok {
		rec.Rating = avg
	}
	if count, ok := toInt(data["reviewCount"]); ok {
		rec.ReviewCount = count
	}
	if reviews, ok := data["reviews"].([]any); ok {
		for _, item := range reviews {
			if m, ok := item.(map[string]any); ok {
				rec.Reviews = append(rec.Reviews, mapToReview(m))
			}
		}
	}
	if createdAt, ok := data["createdAt"].(time.Time); ok {
		rec.CreatedAt = createdAt
	}
	if updatedAt, ok := data["updatedAt"].(time.Time); ok {
		rec.UpdatedAt = &updatedAt
	}

	return rec
}

// mapToReview converts an embedded review map to a Review
func mapToReview(m map[string]any) Review {
	var rev Review
	rev.ID, _ = m["id"].(string)
	rev.UserID, _ = m["userId"].(string)
	rev.UserDisplayName, _ = m["userDisplayName"].(string)
	rev.Avatar, _ = m["avatar"].(string)
	if stars, ok := toInt(m["rating"]); ok {
		rev.Rating = stars
	}
	rev.Comment, _ = m["comment"].(string)
	if date, ok := m["date"].(time.Time); ok {
		rev.Date = date
	}
	return rev
}

func documentsToRecipes(docs []store.Document) []Recipe {
	recipes := make([]Recipe, 0, len(docs))
	for _, doc := range docs {
		recipes = append(recipes, documentToRecipe(doc))
	}
	return recipes
}

func stringsToAny(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func anyToStrings(v any) []string {
	out := []string{}
	switch items := v.(type) {
	case []any:
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, items...)
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
