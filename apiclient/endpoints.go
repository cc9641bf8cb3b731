// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielhkuo/canteen-vote/models"
)

// FetchProfile returns the user behind token. An empty token fails with
// ErrNotAuthenticated without touching the network; a payload without a
// user object, or a user without a role, fails with ErrMalformedResponse.
func (c *Client) FetchProfile(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrNotAuthenticated
	}

	var env models.UserEnvelope
	if err := c.do(ctx, "profile", http.MethodGet, "/user/profile", token, nil, &env); err != nil {
		return models.User{}, err
	}
	if env.Data.User == nil {
		return models.User{}, fmt.Errorf("%w: profile payload has no user", ErrMalformedResponse)
	}
	if env.Data.User.Role == "" {
		return models.User{}, fmt.Errorf("%w: profile user has no role", ErrMalformedResponse)
	}
	return *env.Data.User, nil
}

// StaffLogin exchanges staff credentials for a token and user
func (c *Client) StaffLogin(ctx context.Context, email, password string) (string, models.User, error) {
	var resp models.StaffLoginResponse
	err := c.do(ctx, "staff_login", http.MethodPost, "/auth/staff-login", "",
		models.StaffLoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", models.User{}, err
	}
	if resp.Token == "" || resp.User == nil || resp.User.Role == "" {
		return "", models.User{}, fmt.Errorf("%w: staff login payload needs token and user with a role", ErrMalformedResponse)
	}
	return resp.Token, *resp.User, nil
}

// SetupGraduation records the expected graduation date, or skips the step.
// The returned user is nil when the server did not echo one back.
// Any 4xx rejection is reported as ErrSetupFailed.
func (c *Client) SetupGraduation(ctx context.Context, token string, req models.SetupGraduationRequest) (*models.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var env models.UserEnvelope
	err := c.do(ctx, "setup_graduation", http.MethodPost, "/auth/setup-graduation", token, req, &env)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		return nil, &SetupError{Message: apiErr.Message}
	}
	if err != nil {
		return nil, err
	}
	return env.Data.User, nil
}

// ListDishes returns today's dishes and when voting closes
func (c *Client) ListDishes(ctx context.Context, token string) (models.DishesEnvelope, error) {
	var env models.DishesEnvelope
	if token == "" {
		return env, ErrNotAuthenticated
	}
	err := c.do(ctx, "dishes", http.MethodGet, "/dishes", token, nil, &env)
	return env, err
}

// MyVote returns the caller's current vote, nil when none was cast
func (c *Client) MyVote(ctx context.Context, token string) (*models.Vote, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var env models.VoteEnvelope
	if err := c.do(ctx, "my_vote", http.MethodGet, "/votes/me", token, nil, &env); err != nil {
		return nil, err
	}
	return env.Data.Vote, nil
}

// CastVote votes for a dish, replacing any previous vote
func (c *Client) CastVote(ctx context.Context, token, dishID string) (*models.Vote, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	var env models.VoteEnvelope
	err := c.do(ctx, "cast_vote", http.MethodPost, "/votes", token, models.CastVoteRequest{DishID: dishID}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data.Vote, nil
}

// CancelVote withdraws the caller's vote
func (c *Client) CancelVote(ctx context.Context, token string) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, "cancel_vote", http.MethodDelete, "/votes/me", token, nil, nil)
}

// Results returns the current tally
func (c *Client) Results(ctx context.Context, token string) (models.ResultsEnvelope, error) {
	var env models.ResultsEnvelope
	if token == "" {
		return env, ErrNotAuthenticated
	}
	err := c.do(ctx, "results", http.MethodGet, "/votes/results", token, nil, &env)
	return env, err
}

// SubmitFeedback sends free-text feedback about the canteen
func (c *Client) SubmitFeedback(ctx context.Context, token string, req models.FeedbackRequest) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, "feedback", http.MethodPost, "/feedback", token, req, nil)
}
