package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/otiai10/recipebox/internal/auth"
	"github.com/otiai10/recipebox/internal/security"
	"github.com/otiai10/recipebox/internal/username"
)

// ProfileSetup is the input of the one-time profile setup
type ProfileSetup struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"displayName"`
	Bio         string `yaml:"bio"`
	PhotoURL    string `yaml:"photoURL"`
}

// ProfileUpdate is the input of a profile edit.
// An empty Username keeps the current one.
type ProfileUpdate struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"displayName"`
	Bio         string `yaml:"bio"`
	PhotoURL    string `yaml:"photoURL"`
}

// Service implements the profile operations of the signed-in user
type Service struct {
	repo             Repository
	usernames        username.Availability
	identity         auth.ProfileUpdater
	allowLocalAssets bool
	now              func() time.Time
	logger           zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocalAssets permits http://localhost photo URLs
func WithLocalAssets(allow bool) Option {
	return func(s *Service) {
		s.allowLocalAssets = allow
	}
}

// NewService creates a profile Service
func NewService(repo Repository, usernames username.Availability, identity auth.ProfileUpdater, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		usernames: usernames,
		identity:  identity,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates the profile of the signed-in user with an empty username
// and display name. Calling it again returns the existing profile.
func (s *Service) Signup(ctx context.Context) (*User, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	existing, err := s.repo.Get(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.now().UTC()
	u := User{
		ID:        claims.UID,
		Email:     claims.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(ctx, u)
	if errors.Is(err, ErrAlreadyExists) {
		// A concurrent signup won
		return s.Get(ctx, claims.UID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("uid", u.ID).Msg("user signed up")
	return &u, nil
}

// Setup completes the signed-in user's profile. It runs once per user:
// the username is normalized, validated, checked and reserved, and the
// display name and photo are copied to the identity provider.
func (s *Service) Setup(ctx context.Context, in ProfileSetup) (*User, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	in.Username = username.Normalize(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Bio = strings.TrimSpace(in.Bio)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)

	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Username, username.Rule()),
		validation.Field(&in.DisplayName, validation.Required.Error("display name is required")),
		validation.Field(&in.PhotoURL, security.AssetURL(s.allowLocalAssets)),
	); err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("failed to set up profile for %s: %w", claims.UID, ErrNotFound)
	}
	if current.IsComplete() {
		return nil, ErrProfileAlreadyComplete
	}

	available, err := s.usernames.Check(ctx, in.Username, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrUsernameTaken
	}

	if err := s.repo.ClaimUsername(ctx, in.Username, claims.UID); err != nil {
		return nil, err
	}

	updated := *current
	updated.Username = in.Username
	updated.DisplayName = in.DisplayName
	updated.Bio = in.Bio
	updated.PhotoURL = in.PhotoURL
	updated.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, updated); err != nil {
		s.release(ctx, in.Username)
		return nil, err
	}

	if err := s.identity.UpdateProfile(ctx, claims.UID, updated.DisplayName, updated.PhotoURL); err != nil {
		return &updated, err
	}

	s.logger.Info().Str("uid", updated.ID).Str("username", updated.Username).Msg("profile set up")
	return &updated, nil
}

// Update edits the signed-in user's username, display name, bio and photo.
// A new username is checked against every other user and reserved before
// the profile is written; the old reservation is released afterwards.
// An empty PhotoURL keeps the current photo.
func (s *Service) Update(ctx context.Context, in ProfileUpdate) (*User, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	in.Username = username.Normalize(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Bio = strings.TrimSpace(in.Bio)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)

	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.When(in.Username != "", username.Rule())),
		validation.Field(&in.DisplayName, validation.Required.Error("display name is required")),
		validation.Field(&in.Bio, validation.Required.Error("bio is required")),
		validation.Field(&in.PhotoURL, security.AssetURL(s.allowLocalAssets)),
	); err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx, claims.UID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("failed to update profile for %s: %w", claims.UID, ErrNotFound)
	}

	oldName := current.Username
	renamed := in.Username != "" && in.Username != oldName
	if in.Username != "" {
		if !current.IsComplete() {
			return nil, ErrProfileIncomplete
		}
		available, err := s.usernames.Check(ctx, in.Username, oldName)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, ErrUsernameTaken
		}
	}
	if renamed {
		if err := s.repo.ClaimUsername(ctx, in.Username, claims.UID); err != nil {
			return nil, err
		}
	}

	updated := *current
	if renamed {
		updated.Username = in.Username
	}
	updated.DisplayName = in.DisplayName
	updated.Bio = in.Bio
	if in.PhotoURL != "" {
		updated.PhotoURL = in.PhotoURL
	}
	updated.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, updated); err != nil {
		if renamed {
			s.release(ctx, in.Username)
		}
		return nil, err
	}
	if renamed {
		s.release(ctx, oldName)
	}

	if err := s.identity.UpdateProfile(ctx, claims.UID, updated.DisplayName, in.PhotoURL); err != nil {
		return &updated, err
	}

	s.logger.Debug().Str("uid", updated.ID).Str("username", updated.Username).Msg("profile updated")
	return &updated, nil
}

// Get returns the profile of uid
func (s *Service) Get(ctx context.Context, uid string) (*User, error) {
	u, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("failed to get user %s: %w", uid, ErrNotFound)
	}
	return u, nil
}

// Me returns the signed-in user's profile
func (s *Service) Me(ctx context.Context) (*User, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	return s.Get(ctx, claims.UID)
}

// FindByUsername returns the profile holding name, ignoring case
func (s *Service) FindByUsername(ctx context.Context, name string) (*User, error) {
	key := username.Lower(strings.TrimSpace(name))

	u, err := s.repo.GetByUsername(ctx, key)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("failed to find user %q: %w", key, ErrNotFound)
	}
	return u, nil
}

// release drops a username reservation, logging a failure
func (s *Service) release(ctx context.Context, name string) {
	if err := s.repo.ReleaseUsername(ctx, name); err != nil {
		s.logger.Error().Err(err).Str("username", name).Msg("failed to release username")
	}
}
