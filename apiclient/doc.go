// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apiclient is a thin client for the canteen REST API.

	client := apiclient.NewClient(cfg.APIURL, apiclient.WithMetrics(m))
	user, err := client.FetchProfile(ctx, token)

Every method takes the bearer token explicitly; an empty token fails with
ErrNotAuthenticated before any request is made. Failures are reported through
one error vocabulary:

  - ErrNotAuthenticated: no token, or the API answered 401
  - ErrNetwork: transport failure
  - ErrMalformedResponse: undecodable body or a missing user object
  - ErrSetupFailed: /auth/setup-graduation rejected the request
  - *APIError: any other non-2xx status

Each call is wrapped in an OpenTelemetry client span and counted in the
canteen_web_upstream_requests_total metric.
*/
package apiclient
