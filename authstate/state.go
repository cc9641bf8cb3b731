// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package authstate

import (
	"context"
	"fmt"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/models"
)

// State is the auth state seen by one page load.
// When Loading is false exactly one of User and Err is set.
type State struct {
	User    *models.User
	Loading bool
	Err     error
}

func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// Role returns the user's role, empty when unauthenticated
func (s State) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

type contextKey struct{}

// WithState attaches the page's auth state to ctx
func WithState(ctx context.Context, st State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the state attached by WithState. Without one the
// request is treated as unauthenticated.
func FromContext(ctx context.Context) State {
	st, ok := ctx.Value(contextKey{}).(State)
	if !ok {
		return State{Err: apiclient.ErrNotAuthenticated}
	}
	return st
}

// Fetcher loads the profile for a browser session
type Fetcher interface {
	FetchProfile(ctx context.Context, sessionID string) (models.User, error)
}

type TokenReader interface {
	Token(ctx context.Context, sessionID string) (string, bool, error)
}

type ProfileClient interface {
	FetchProfile(ctx context.Context, token string) (models.User, error)
}

// ProfileFetcher reads the session token and asks the API for the profile.
type ProfileFetcher struct {
	tokens TokenReader
	client ProfileClient
}

func NewProfileFetcher(tokens TokenReader, client ProfileClient) *ProfileFetcher {
	return &ProfileFetcher{tokens: tokens, client: client}
}

// FetchProfile fails with apiclient.ErrNotAuthenticated, without a network
// call, when the session holds no token.
func (f *ProfileFetcher) FetchProfile(ctx context.Context, sessionID string) (models.User, error) {
	token, ok, err := f.tokens.Token(ctx, sessionID)
	if err != nil {
		return models.User{}, fmt.Errorf("reading session token: %w", err)
	}
	if !ok || token == "" {
		return models.User{}, apiclient.ErrNotAuthenticated
	}
	return f.client.FetchProfile(ctx, token)
}
