// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types shared by the web front end and the
canteen API client.

# Domain Types

  - User: identity record returned by /user/profile
  - Dish: a dish that can be voted for
  - Vote: the signed-in voter's current vote
  - Result: vote tally for one dish

# Canteen API Types

Request bodies sent upstream:

  - StaffLoginRequest: email, password
  - SetupGraduationRequest: skip, expectedGraduationDate
  - CastVoteRequest: dishId
  - FeedbackRequest: message, rating

Envelopes decoded from upstream responses:

  - StaffLoginResponse: {token, user}
  - UserEnvelope: {data: {user}}
  - DishesEnvelope: {data: {dishes, votingClosesAt}}
  - VoteEnvelope: {data: {vote}}
  - ResultsEnvelope: {data: {results, totalVotes}}

# Roles

	RoleVoter = "voter"
	RoleStaff = "staff"
*/
package models
