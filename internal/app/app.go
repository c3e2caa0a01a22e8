// Package app wires the store, identity provider and asset uploader into
// per-user sessions.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/otiai10/recipebox/internal/asset"
	"github.com/otiai10/recipebox/internal/auth"
	"github.com/otiai10/recipebox/internal/cache"
	"github.com/otiai10/recipebox/internal/config"
	"github.com/otiai10/recipebox/internal/recipe"
	"github.com/otiai10/recipebox/internal/store"
	"github.com/otiai10/recipebox/internal/user"
	"github.com/otiai10/recipebox/internal/username"
)

// ErrImpersonationDisabled is returned by SignIn when a UID is given while
// token verification is enabled
var ErrImpersonationDisabled = errors.New("signing in by UID requires auth to be disabled")

// Identity verifies tokens and keeps the provider's profile in sync
type Identity interface {
	auth.TokenVerifier
	auth.ProfileUpdater
}

// App owns the long-lived clients shared by all sessions
type App struct {
	config   *config.Config
	gateway  store.Gateway
	users    user.Repository
	verifier auth.TokenVerifier // nil when auth is disabled
	profiles auth.ProfileUpdater
	uploader asset.Uploader
	logger   zerolog.Logger
	now      func() time.Time
	closers  []io.Closer
}

// Option is a functional option for configuring the App.
type Option func(*App)

// WithIdentity enables token verification and provider profile updates
func WithIdentity(identity Identity) Option {
	return func(a *App) {
		a.verifier = identity
		a.profiles = identity
	}
}

// WithUploader sets the asset uploader. Defaults to an in-memory uploader.
func WithUploader(u asset.Uploader) Option {
	return func(a *App) {
		a.uploader = u
	}
}

// WithLogger sets the logger handed to every component
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithClock replaces time.Now in every component
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithCloser registers a resource released by Close
func WithCloser(c io.Closer) Option {
	return func(a *App) {
		a.closers = append(a.closers, c)
	}
}

// NewApp creates an App persisting to gateway.
//
// Without WithIdentity, tokens are not verified and sessions are opened
// with SignIn by UID (local development).
func NewApp(cfg *config.Config, gateway store.Gateway, opts ...Option) *App {
	a := &App{
		config:   cfg,
		gateway:  gateway,
		users:    user.NewGatewayRepository(gateway),
		profiles: auth.NopProfileUpdater{},
		logger:   zerolog.Nop(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.uploader == nil {
		a.uploader = asset.NewMemoryUploader(cfg.Assets.PublicBaseURL)
	}

	return a
}

// NewFromConfig builds the clients named by cfg: Firestore or the in-memory
// store, Firebase Auth when enabled, and Cloud Storage when a bucket is set.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	opts := []Option{WithLogger(logger)}
	var closers []io.Closer
	fail := func(err error) (*App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	var gateway store.Gateway
	switch cfg.Store.Type {
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		mem := store.NewMemoryGateway()
		gateway = mem
		closers = append(closers, mem)
	case config.StoreFirestore:
		logger.Info().
			Str("project", cfg.Store.ProjectID).
			Str("database", cfg.Store.Database).
			Msg("initializing Firestore client")
		client, err := store.NewFirestoreClient(ctx, store.FirestoreConfig{
			ProjectID:   cfg.Store.ProjectID,
			Database:    cfg.Store.Database,
			Credentials: cfg.Store.Credentials,
		})
		if err != nil {
			return nil, err
		}
		gateway = client.Gateway()
		closers = append(closers, client)
	default:
		return nil, fmt.Errorf("unsupported store type: %q", cfg.Store.Type)
	}

	if cfg.Auth.Enabled {
		logger.Info().
			Str("project", cfg.Auth.ProjectID).
			Str("tenant", cfg.Auth.TenantID).
			Msg("initializing Firebase Auth")
		fa, err := auth.NewFirebaseAuth(ctx, auth.FirebaseConfig{
			ProjectID:       cfg.Auth.ProjectID,
			CredentialsPath: cfg.Auth.Credentials,
			TenantID:        cfg.Auth.TenantID,
		})
		if err != nil {
			return fail(err)
		}
		opts = append(opts, WithIdentity(fa))
	}

	if cfg.Assets.Bucket != "" {
		uploader, err := asset.NewGCSUploader(ctx, asset.GCSConfig{
			Bucket:        cfg.Assets.Bucket,
			Prefix:        cfg.Assets.Prefix,
			PublicBaseURL: cfg.Assets.PublicBaseURL,
			Credentials:   cfg.Store.Credentials,
		})
		if err != nil {
			return fail(err)
		}
		opts = append(opts, WithUploader(uploader))
		closers = append(closers, uploader)
	}

	for _, c := range closers {
		opts = append(opts, WithCloser(c))
	}
	return NewApp(cfg, gateway, opts...), nil
}

// AuthEnabled reports whether tokens are verified
func (a *App) AuthEnabled() bool {
	return a.verifier != nil
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.config
}

// Uploader returns the asset uploader
func (a *App) Uploader() asset.Uploader {
	return a.uploader
}

// Logger returns the application logger
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

// SignIn resolves the caller's identity.
// With auth enabled, token is verified. With auth disabled, asUID is trusted
// as is. Neither given yields nil claims (signed out).
func (a *App) SignIn(ctx context.Context, token, asUID string) (*auth.Claims, error) {
	if asUID != "" {
		if a.AuthEnabled() {
			return nil, ErrImpersonationDisabled
		}
		return &auth.Claims{UID: asUID}, nil
	}
	if token == "" {
		return nil, nil
	}
	if !a.AuthEnabled() {
		return nil, fmt.Errorf("cannot verify token: auth is disabled")
	}

	signedIn, err := auth.Authenticate(ctx, a.verifier, token)
	if err != nil {
		return nil, err
	}
	return auth.MustGetClaims(signedIn), nil
}

// Session is the state of one signed-in (or signed-out) user
type Session struct {
	Recipes   *cache.Store
	Profiles  *user.Service
	Usernames *username.Checker

	claims *auth.Claims
}

// Open starts a session for claims; nil claims open a signed-out session
func (a *App) Open(claims *auth.Claims) *Session {
	allowLocal := a.config.Assets.AllowLocal || a.config.Store.Type == config.StoreMemory
	checker := username.NewChecker(a.gateway, username.WithLogger(a.logger))

	return &Session{
		Recipes: cache.New(recipe.NewGatewayRepository(a.gateway), a.users,
			cache.WithLogger(a.logger),
			cache.WithClock(a.now),
			cache.WithLocalAssets(allowLocal),
		),
		Profiles: user.NewService(a.users, checker, a.profiles,
			user.WithLogger(a.logger),
			user.WithClock(a.now),
			user.WithLocalAssets(allowLocal),
		),
		Usernames: checker,
		claims:    claims,
	}
}

// Claims returns the signed-in identity, nil for a signed-out session
func (s *Session) Claims() *auth.Claims {
	return s.claims
}

// Context returns parent carrying the session's identity
func (s *Session) Context(parent context.Context) context.Context {
	if s.claims == nil {
		return parent
	}
	return auth.WithClaims(parent, s.claims)
}

// Close tears the session's cache down
func (s *Session) Close() error {
	return s.Recipes.Close()
}

// Close releases the store, storage and other registered clients
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
