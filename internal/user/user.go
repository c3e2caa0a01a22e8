package user

import (
	"time"

	"github.com/otiai10/recipebox/internal/recipe"
)

// User is a user profile stored in Firestore.
// The document ID is the identity provider UID.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsComplete reports whether profile setup has been done
func (u User) IsComplete() bool {
	return u.Username != "" && u.DisplayName != ""
}

// Author returns the snapshot recorded on recipes and reviews u writes
func (u User) Author() recipe.Author {
	return recipe.NewAuthor(u.ID, u.DisplayName, u.PhotoURL)
}
