// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Canteen Vote web server.

Canteen Vote lets students vote on tomorrow's canteen dishes and lets staff
follow the results. This server renders the pages and holds each browser's
session; votes, users and OAuth live in the canteen REST API.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	CANTEEN_API_URL=https://api.canteen.test SESSION_SECRET=... go run . serve

Or with flags:

	go run . serve -p 3319 -a https://api.canteen.test -d sessions.db

Stale sessions are removed with:

	go run . sessions prune --session-max-age 720h

# Configuration

Required settings:

  - CANTEEN_API_URL (-a): Base URL of the canteen API
  - SESSION_SECRET (--session-secret): Secret for signing the session cookie

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_URL (-d), DATABASE_TYPE (-t): Session store, sqlite or postgres
  - ROLE_POLICY (--policy): YAML file overriding role home pages
  - PROFILE_LOAD_WAIT (--load-wait): Wait before the loading page is shown
  - COOKIE_SECURE (--secure-cookie): Mark the session cookie Secure

A .env file in the working directory is loaded when present.

# Architecture

  - handlers: HTTP request handlers (sign-in, votes, dashboard, feedback)
  - router: Route definitions and role gates using chi
  - middleware: Session cookie, auth state, route guard, logging, JSON helpers
  - authstate: Per-session profile fetch, dedupe and hydration
  - callback: OAuth callback processing
  - guard: Role based route decisions
  - session: Token and role storage
  - apiclient: Canteen API client
  - views: Embedded HTML templates
  - metrics: Prometheus collectors
  - auth: Session ID signing
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
