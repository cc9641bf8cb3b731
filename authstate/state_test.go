// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package authstate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/canteen-vote/apiclient"
	"github.com/danielhkuo/canteen-vote/models"
)

type mapTokens map[string]string

func (m mapTokens) Token(ctx context.Context, sessionID string) (string, bool, error) {
	tok, ok := m[sessionID]
	return tok, ok, nil
}

type failingTokens struct{}

func (failingTokens) Token(ctx context.Context, sessionID string) (string, bool, error) {
	return "", false, errors.New("database is locked")
}

type recordingClient struct {
	tokens []string
	user   models.User
	err    error
}

func (c *recordingClient) FetchProfile(ctx context.Context, token string) (models.User, error) {
	c.tokens = append(c.tokens, token)
	return c.user, c.err
}

func TestProfileFetcher(t *testing.T) {
	t.Run("no stored token fails without a network call", func(t *testing.T) {
		client := &recordingClient{user: voter}
		f := NewProfileFetcher(mapTokens{}, client)

		_, err := f.FetchProfile(context.Background(), "sid")
		assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)
		assert.Empty(t, client.tokens)
	})

	t.Run("uses the stored token", func(t *testing.T) {
		client := &recordingClient{user: voter}
		f := NewProfileFetcher(mapTokens{"sid": "abc"}, client)

		user, err := f.FetchProfile(context.Background(), "sid")
		require.NoError(t, err)
		assert.Equal(t, voter.ID, user.ID)
		assert.Equal(t, []string{"abc"}, client.tokens)
	})

	t.Run("client errors pass through", func(t *testing.T) {
		client := &recordingClient{err: apiclient.ErrMalformedResponse}
		f := NewProfileFetcher(mapTokens{"sid": "abc"}, client)

		_, err := f.FetchProfile(context.Background(), "sid")
		assert.ErrorIs(t, err, apiclient.ErrMalformedResponse)
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		client := &recordingClient{user: voter}
		f := NewProfileFetcher(failingTokens{}, client)

		_, err := f.FetchProfile(context.Background(), "sid")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, apiclient.ErrNotAuthenticated))
		assert.Empty(t, client.tokens)
	})
}
