// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"time"

	"github.com/danielhkuo/canteen-vote/models"
)

// Page specific data, passed as Page.Data

type ProviderLink struct {
	Name string
	URL  string
}

type SignInData struct {
	Providers []ProviderLink
}

type StaffLoginData struct {
	Email string
}

type SetupData struct {
	Month string
}

type HomeData struct {
	Dishes         []models.Dish
	MyVote         *models.Vote
	MyDishName     string
	Results        []models.Result
	TotalVotes     int
	VotingClosesAt *time.Time
}

type DashboardData struct {
	Results        []models.Result
	TotalVotes     int
	VotingClosesAt *time.Time
}

type FeedbackData struct {
	Ratings []int
	Message string
}
