package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseAuth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// firebaseUsers is the part of the Firebase auth client this package uses.
// Both firebaseAuth.Client and firebaseAuth.TenantClient implement it.
type firebaseUsers interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseAuth.Token, error)
	UpdateUser(ctx context.Context, uid string, user *firebaseAuth.UserToUpdate) (*firebaseAuth.UserRecord, error)
}

// FirebaseAuth verifies ID tokens and updates user profiles with the
// Firebase Admin SDK.
type FirebaseAuth struct {
	users    firebaseUsers
	tenantID string
}

// Ensure FirebaseAuth implements TokenVerifier and ProfileUpdater
var (
	_ TokenVerifier  = (*FirebaseAuth)(nil)
	_ ProfileUpdater = (*FirebaseAuth)(nil)
)

// FirebaseConfig holds configuration for FirebaseAuth
type FirebaseConfig struct {
	ProjectID       string
	CredentialsPath string
	TenantID        string // Optional: for multi-tenant Identity Platform
}

// NewFirebaseAuth creates a Firebase auth client
func NewFirebaseAuth(ctx context.Context, cfg FirebaseConfig) (*FirebaseAuth, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID: cfg.ProjectID,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}

	var users firebaseUsers = authClient
	if cfg.TenantID != "" {
		tenantClient, err := authClient.TenantManager.AuthForTenant(cfg.TenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to get tenant auth client for %s: %w", cfg.TenantID, err)
		}
		users = tenantClient
	}

	return &FirebaseAuth{
		users:    users,
		tenantID: cfg.TenantID,
	}, nil
}

// TenantID returns the Identity Platform tenant, empty in single-tenant mode
func (a *FirebaseAuth) TenantID() string {
	return a.tenantID
}

// VerifyIDToken verifies a Firebase ID token and returns the decoded claims
func (a *FirebaseAuth) VerifyIDToken(ctx context.Context, idToken string) (*Claims, error) {
	token, err := a.users.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	return tokenToClaims(token), nil
}

// UpdateProfile sets the user's display name, and photo when photoURL is not empty
func (a *FirebaseAuth) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	update := (&firebaseAuth.UserToUpdate{}).DisplayName(displayName)
	if photoURL != "" {
		update = update.PhotoURL(photoURL)
	}

	if _, err := a.users.UpdateUser(ctx, uid, update); err != nil {
		return fmt.Errorf("failed to update auth profile for %s: %w", uid, err)
	}

	return nil
}

// tokenToClaims copies the claims this application uses out of a token
func tokenToClaims(token *firebaseAuth.Token) *Claims {
	claims := &Claims{
		UID:           token.UID,
		Email:         getStringClaim(token.Claims, "email"),
		EmailVerified: getBoolClaim(token.Claims, "email_verified"),
		Name:          getStringClaim(token.Claims, "name"),
		Picture:       getStringClaim(token.Claims, "picture"),
	}

	if token.Firebase.SignInProvider != "" {
		claims.ProviderID = token.Firebase.SignInProvider
	}

	return claims
}

// getStringClaim safely extracts a string claim from the claims map
func getStringClaim(claims map[string]any, key string) string {
	str, _ := claims[key].(string)
	return str
}

// getBoolClaim safely extracts a boolean claim from the claims map
func getBoolClaim(claims map[string]any, key string) bool {
	b, _ := claims[key].(bool)
	return b
}
