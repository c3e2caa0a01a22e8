package username

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/otiai10/recipebox/internal/store"
)

// Availability reports whether a candidate username is free
type Availability interface {
	Check(ctx context.Context, candidate, excluding string) (bool, error)
}

// Checker looks candidates up in the users collection.
// Identical checks in flight at the same time share one query.
type Checker struct {
	gateway store.Gateway
	group   singleflight.Group
	logger  zerolog.Logger
}

// Ensure Checker implements Availability interface
var _ Availability = (*Checker)(nil)

// CheckerOption configures a Checker
type CheckerOption func(*Checker)

// WithLogger sets the logger used for lookups
func WithLogger(logger zerolog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker over gateway
func NewChecker(gateway store.Gateway, opts ...CheckerOption) *Checker {
	c := &Checker{
		gateway: gateway,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check reports whether candidate is available.
// A candidate equal to excluding, the user's own current username, is
// always available and is not looked up. Otherwise the lowercased candidate
// is available iff no user document has it.
func (c *Checker) Check(ctx context.Context, candidate, excluding string) (bool, error) {
	if candidate == excluding {
		return true, nil
	}

	key := Lower(candidate)
	ch := c.group.DoChan(key, func() (any, error) {
		// The query serves every caller waiting on key, so it does not
		// stop when the first caller's context is cancelled.
		docs, err := c.gateway.QueryEquals(context.WithoutCancel(ctx), store.CollectionUsers, "username", key)
		if err != nil {
			return false, err
		}
		return len(docs) == 0, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return false, fmt.Errorf("failed to check username %q: %w", key, ctx.Err())
	}
	if res.Err != nil {
		c.logger.Error().Err(res.Err).Str("username", key).Msg("username lookup failed")
		return false, fmt.Errorf("failed to check username %q: %w", key, res.Err)
	}

	available := res.Val.(bool)
	c.logger.Debug().
		Str("username", key).
		Bool("available", available).
		Bool("shared", res.Shared).
		Msg("checked username")

	return available, nil
}
