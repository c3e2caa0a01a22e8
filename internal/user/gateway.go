package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otiai10/recipebox/internal/store"
)

// GatewayRepository implements Repository on a store.Gateway
type GatewayRepository struct {
	gateway store.Gateway
	now     func() time.Time
}

// Ensure GatewayRepository implements Repository interface
var _ Repository = (*GatewayRepository)(nil)

// NewGatewayRepository creates a new GatewayRepository
func NewGatewayRepository(gateway store.Gateway) *GatewayRepository {
	return &GatewayRepository{
		gateway: gateway,
		now:     time.Now,
	}
}

// Create stores a new user document keyed by the user's UID
func (r *GatewayRepository) Create(ctx context.Context, user User) error {
	if user.ID == "" {
		return fmt.Errorf("failed to create user: empty ID")
	}

	err := r.gateway.CreateDocumentWithID(ctx, store.CollectionUsers, user.ID, userToMap(user))
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID
func (r *GatewayRepository) Get(ctx context.Context, id string) (*User, error) {
	doc, err := r.gateway.GetDocument(ctx, store.CollectionUsers, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := documentToUser(doc)
	return &user, nil
}

// GetByUsername retrieves the user holding username
func (r *GatewayRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	docs, err := r.gateway.QueryEquals(ctx, store.CollectionUsers, "username", username)
	if err != nil {
		return nil, fmt.Errorf("failed to query user by username: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	user := documentToUser(docs[0])
	return &user, nil
}

// Update merges user into its stored document
func (r *GatewayRepository) Update(ctx context.Context, user User) error {
	if err := r.gateway.UpdateDocument(ctx, store.CollectionUsers, user.ID, userToMap(user), true); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// ClaimUsername creates the usernames/{username} reservation document.
// Creation fails if the document exists, so two users can never claim
// the same name.
func (r *GatewayRepository) ClaimUsername(ctx context.Context, username, uid string) error {
	err := r.gateway.CreateDocumentWithID(ctx, store.CollectionUsernames, username, map[string]any{
		"uid":       uid,
		"claimedAt": r.now().UTC(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("failed to claim username: %w", err)
	}

	return nil
}

// ReleaseUsername deletes a reservation; a missing one is not an error
func (r *GatewayRepository) ReleaseUsername(ctx context.Context, username string) error {
	err := r.gateway.DeleteDocument(ctx, store.CollectionUsernames, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to release username: %w", err)
	}
	return nil
}

// userToMap converts a User to a map for Firestore storage
func userToMap(user User) map[string]any {
	return map[string]any{
		"email":       user.Email,
		"username":    user.Username,
		"displayName": user.DisplayName,
		"bio":         user.Bio,
		"photoURL":    user.PhotoURL,
		"createdAt":   user.CreatedAt,
		"updatedAt":   user.UpdatedAt,
	}
}

// documentToUser converts a stored document to a User
func documentToUser(doc store.Document) User {
	data := doc.Data

	user := User{
		ID: doc.ID,
	}

	if email, ok := data["email"].(string); ok {
		user.Email = email
	}
	if username, ok := data["username"].(string); ok {
		user.Username = username
	}
	if displayName, ok := data["displayName"].(string); ok {
		user.DisplayName = displayName
	}
	if bio, ok := data["bio"].(string); ok {
		user.Bio = bio
	}
	if photoURL, ok := data["photoURL"].(string); ok {
		user.PhotoURL = photoURL
	}
	if createdAt, ok := data["createdAt"].(time.Time); ok {
		user.CreatedAt = createdAt
	}
	if updatedAt, ok := data["updatedAt"].(time.Time); ok {
		user.UpdatedAt = updatedAt
	}

	return user
}
