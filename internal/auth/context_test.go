package auth

import (
	"context"
	"errors"
	"testing"
)

// mockTokenVerifier implements TokenVerifier for testing
type mockTokenVerifier struct {
	claims *Claims
	err    error
	got    string
}

func (m *mockTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*Claims, error) {
	m.got = idToken
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func TestWithClaims(t *testing.T) {
	ctx := context.Background()
	claims := &Claims{UID: "user-456", Email: "another@example.com"}

	ctxWithClaims := WithClaims(ctx, claims)

	if _, ok := GetClaims(ctx); ok {
		t.Error("original context should not have claims")
	}

	retrieved, ok := GetClaims(ctxWithClaims)
	if !ok {
		t.Fatal("context with claims should have claims")
	}
	if retrieved.UID != claims.UID {
		t.Errorf("expected UID %s, got %s", claims.UID, retrieved.UID)
	}
}

func TestGetClaims_SignedOut(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"no claims", context.Background()},
		{"wrong type", context.WithValue(context.Background(), claimsKey, "not-a-claims-struct")},
		{"nil claims", WithClaims(context.Background(), nil)},
		{"empty UID", WithClaims(context.Background(), &Claims{Email: "x@example.com"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := GetClaims(tt.ctx)
			if ok {
				t.Error("expected ok to be false")
			}
			if claims != nil {
				t.Error("expected claims to be nil")
			}
		})
	}
}

func TestMustGetClaims_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustGetClaims to panic when no claims in context")
		}
	}()

	MustGetClaims(context.Background())
}

func TestAuthenticate(t *testing.T) {
	verifier := &mockTokenVerifier{claims: &Claims{UID: "uid-1"}}

	ctx, err := Authenticate(context.Background(), verifier, "Bearer abc.def")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if verifier.got != "abc.def" {
		t.Errorf("verifier got token %q, want %q", verifier.got, "abc.def")
	}
	if MustGetClaims(ctx).UID != "uid-1" {
		t.Error("Authenticate() context does not carry the claims")
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	for _, token := range []string{"", "   ", "Bearer "} {
		_, err := Authenticate(context.Background(), &mockTokenVerifier{}, token)
		if !errors.Is(err, ErrMissingToken) {
			t.Errorf("Authenticate(%q) error = %v, want ErrMissingToken", token, err)
		}
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	boom := errors.New("signature mismatch")

	ctx, err := Authenticate(context.Background(), &mockTokenVerifier{err: boom}, "abc")
	if !errors.Is(err, boom) {
		t.Errorf("Authenticate() error = %v, want wrapped %v", err, boom)
	}
	if _, ok := GetClaims(ctx); ok {
		t.Error("failed authentication must not attach claims")
	}
}

func TestNopProfileUpdater(t *testing.T) {
	var u ProfileUpdater = NopProfileUpdater{}
	if err := u.UpdateProfile(context.Background(), "uid", "name", ""); err != nil {
		t.Errorf("UpdateProfile() error = %v", err)
	}
}
