// Package auth carries the signed-in identity through context.Context and
// talks to Firebase Authentication for token verification and profile updates.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingToken is returned by Authenticate when no token is given
	ErrMissingToken = errors.New("ID token is required")

	// ErrUnauthenticated is returned by operations that need a signed-in user
	ErrUnauthenticated = errors.New("not signed in")
)

// Claims represents the decoded JWT claims from Firebase Auth
type Claims struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	ProviderID    string `json:"provider_id,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Claims, error)
}

// ProfileUpdater updates the display name and photo the identity provider
// holds for a user. An empty photoURL leaves the photo unchanged.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error
}

// NopProfileUpdater accepts every update without contacting a provider.
// It is used with the in-memory store.
type NopProfileUpdater struct{}

// UpdateProfile implements ProfileUpdater
func (NopProfileUpdater) UpdateProfile(context.Context, string, string, string) error {
	return nil
}

// Authenticate verifies token, which may carry a "Bearer " prefix, and
// returns a context holding the resulting claims.
func Authenticate(ctx context.Context, verifier TokenVerifier, token string) (context.Context, error) {
	token = strings.TrimSpace(token)
	if rest, ok := strings.CutPrefix(token, "Bearer"); ok && (rest == "" || rest[0] == ' ') {
		token = strings.TrimSpace(rest)
	}
	if token == "" {
		return ctx, ErrMissingToken
	}

	claims, err := verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return ctx, fmt.Errorf("failed to authenticate: %w", err)
	}

	return WithClaims(ctx, claims), nil
}
