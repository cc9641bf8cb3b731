package models

import "time"

// Role is the access class of an authenticated user.
type Role string

// Role constants
const (
	RoleVoter Role = "voter"
	RoleStaff Role = "staff"
)

// OAuth provider constants
const (
	ProviderGoogle    = "google"
	ProviderMicrosoft = "microsoft"
)

// Domain types

type User struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	DisplayName            string     `json:"displayName"`
	Role                   Role       `json:"role"`
	IsActive               bool       `json:"isActive"`
	ExpectedGraduationDate *time.Time `json:"expectedGraduationDate,omitempty"`
}

type Dish struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Category    string `json:"category,omitempty"`
}

type Vote struct {
	DishID    string    `json:"dishId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Result struct {
	DishID string `json:"dishId"`
	Name   string `json:"name"`
	Votes  int    `json:"votes"`
}

// Canteen API request types

type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SetupGraduationRequest struct {
	Skip                   bool   `json:"skip,omitempty"`
	ExpectedGraduationDate string `json:"expectedGraduationDate,omitempty"`
}

type CastVoteRequest struct {
	DishID string `json:"dishId"`
}

type FeedbackRequest struct {
	Message string `json:"message"`
	Rating  int    `json:"rating,omitempty"`
}

// Canteen API response types

type StaffLoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// StaffLoginResult answers a JSON staff login on this server. The API token
// stays in the session store.
type StaffLoginResult struct {
	Redirect string `json:"redirect"`
	User     *User  `json:"user"`
}

// UserEnvelope is the {data:{user}} shape of the profile and setup endpoints.
type UserEnvelope struct {
	Data struct {
		User *User `json:"user"`
	} `json:"data"`
}

type DishesEnvelope struct {
	Data struct {
		Dishes         []Dish     `json:"dishes"`
		VotingClosesAt *time.Time `json:"votingClosesAt,omitempty"`
	} `json:"data"`
}

type VoteEnvelope struct {
	Data struct {
		Vote *Vote `json:"vote"`
	} `json:"data"`
}

type ResultsEnvelope struct {
	Data struct {
		Results    []Result `json:"results"`
		TotalVotes int      `json:"totalVotes"`
	} `json:"data"`
}

// Front end response types

// SessionResponse is the JSON view of the auth state served at /api/session.
type SessionResponse struct {
	User            *User  `json:"user"`
	Loading         bool   `json:"loading"`
	Error           string `json:"error,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	CachedRole      Role   `json:"cachedRole,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
