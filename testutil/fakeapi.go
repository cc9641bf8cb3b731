// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danielhkuo/canteen-vote/models"
)

// StaffAccount is a staff login known to the FakeAPI
type StaffAccount struct {
	Password string
	Token    string
}

// FakeAPI is an in-memory canteen REST API. Users are keyed by bearer token.
type FakeAPI struct {
	*httptest.Server

	mu             sync.Mutex
	users          map[string]models.User
	staff          map[string]StaffAccount
	dishes         []models.Dish
	votes          map[string]models.Vote
	feedback       []models.FeedbackRequest
	votingClosesAt *time.Time
	setupReject    string
	profileDelay   time.Duration

	ProfileCalls atomic.Int32
}

// NewFakeAPI starts a FakeAPI that is shut down when the test ends
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		users: make(map[string]models.User),
		staff: make(map[string]StaffAccount),
		votes: make(map[string]models.Vote),
	}

	r := chi.NewRouter()
	r.Get("/user/profile", f.profile)
	r.Post("/auth/staff-login", f.staffLogin)
	r.Post("/auth/setup-graduation", f.setupGraduation)
	r.Get("/dishes", f.listDishes)
	r.Get("/votes/me", f.myVote)
	r.Post("/votes", f.castVote)
	r.Delete("/votes/me", f.cancelVote)
	r.Get("/votes/results", f.results)
	r.Post("/feedback", f.submitFeedback)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

// AddUser makes token valid for user
func (f *FakeAPI) AddUser(token string, user models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[token] = user
}

// AddStaff registers a staff login that yields token for user
func (f *FakeAPI) AddStaff(email, password, token string, user models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staff[email] = StaffAccount{Password: password, Token: token}
	f.users[token] = user
}

// SetDishes replaces the menu
func (f *FakeAPI) SetDishes(dishes []models.Dish, closesAt *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dishes = dishes
	f.votingClosesAt = closesAt
}

// RejectSetup makes graduation setup fail with message
func (f *FakeAPI) RejectSetup(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setupReject = message
}

// SlowProfile delays every profile response by d
func (f *FakeAPI) SlowProfile(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileDelay = d
}

// Vote returns the vote held for token
func (f *FakeAPI) Vote(token string) (models.Vote, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.votes[token]
	return v, ok
}

// Feedback returns everything submitted so far
func (f *FakeAPI) Feedback() []models.FeedbackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.FeedbackRequest(nil), f.feedback...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: http.StatusText(status), Message: message})
}

// authorize returns the bearer token, or writes 401
func (f *FakeAPI) authorize(w http.ResponseWriter, r *http.Request) (string, models.User, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	user, ok := f.users[token]
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return "", models.User{}, false
	}
	return token, user, true
}

func (f *FakeAPI) profile(w http.ResponseWriter, r *http.Request) {
	f.ProfileCalls.Add(1)

	f.mu.Lock()
	delay := f.profileDelay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	_, user, ok := f.authorize(w, r)
	if !ok {
		return
	}
	var env models.UserEnvelope
	env.Data.User = &user
	writeJSON(w, http.StatusOK, env)
}

func (f *FakeAPI) staffLogin(w http.ResponseWriter, r *http.Request) {
	var req models.StaffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	f.mu.Lock()
	acct, ok := f.staff[req.Email]
	user := f.users[acct.Token]
	f.mu.Unlock()

	if !ok || acct.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, models.StaffLoginResponse{Token: acct.Token, User: &user})
}

func (f *FakeAPI) setupGraduation(w http.ResponseWriter, r *http.Request) {
	token, user, ok := f.authorize(w, r)
	if !ok {
		return
	}

	var req models.SetupGraduationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	f.mu.Lock()
	reject := f.setupReject
	f.mu.Unlock()
	if reject != "" {
		writeError(w, http.StatusBadRequest, reject)
		return
	}

	if req.Skip {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}

	grad, err := time.Parse("2006-01", req.ExpectedGraduationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "expectedGraduationDate must be YYYY-MM")
		return
	}
	user.ExpectedGraduationDate = &grad

	f.mu.Lock()
	f.users[token] = user
	f.mu.Unlock()

	var env models.UserEnvelope
	env.Data.User = &user
	writeJSON(w, http.StatusOK, env)
}

func (f *FakeAPI) listDishes(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := f.authorize(w, r); !ok {
		return
	}

	var env models.DishesEnvelope
	f.mu.Lock()
	env.Data.Dishes = append([]models.Dish{}, f.dishes...)
	env.Data.VotingClosesAt = f.votingClosesAt
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, env)
}

func (f *FakeAPI) myVote(w http.ResponseWriter, r *http.Request) {
	token, _, ok := f.authorize(w, r)
	if !ok {
		return
	}

	var env models.VoteEnvelope
	if v, ok := f.Vote(token); ok {
		env.Data.Vote = &v
	}
	writeJSON(w, http.StatusOK, env)
}

func (f *FakeAPI) castVote(w http.ResponseWriter, r *http.Request) {
	token, user, ok := f.authorize(w, r)
	if !ok {
		return
	}
	if user.Role != models.RoleVoter {
		writeError(w, http.StatusForbidden, "only voters can vote")
		return
	}

	var req models.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.votingClosesAt != nil && !time.Now().Before(*f.votingClosesAt) {
		writeError(w, http.StatusConflict, "Voting is closed")
		return
	}
	found := false
	for _, d := range f.dishes {
		if d.ID == req.DishID {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Dish not found")
		return
	}

	vote := models.Vote{DishID: req.DishID, CreatedAt: time.Now()}
	f.votes[token] = vote

	var env models.VoteEnvelope
	env.Data.Vote = &vote
	writeJSON(w, http.StatusCreated, env)
}

func (f *FakeAPI) cancelVote(w http.ResponseWriter, r *http.Request) {
	token, _, ok := f.authorize(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	_, had := f.votes[token]
	delete(f.votes, token)
	f.mu.Unlock()

	if !had {
		writeError(w, http.StatusNotFound, "No vote to cancel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) results(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := f.authorize(w, r); !ok {
		return
	}

	f.mu.Lock()
	counts := make(map[string]int)
	for _, v := range f.votes {
		counts[v.DishID]++
	}
	var env models.ResultsEnvelope
	for _, d := range f.dishes {
		env.Data.Results = append(env.Data.Results, models.Result{DishID: d.ID, Name: d.Name, Votes: counts[d.ID]})
	}
	env.Data.TotalVotes = len(f.votes)
	f.mu.Unlock()

	sort.SliceStable(env.Data.Results, func(i, j int) bool {
		return env.Data.Results[i].Votes > env.Data.Results[j].Votes
	})
	writeJSON(w, http.StatusOK, env)
}

func (f *FakeAPI) submitFeedback(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := f.authorize(w, r); !ok {
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	f.mu.Lock()
	f.feedback = append(f.feedback, req)
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
