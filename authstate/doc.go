// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package authstate tracks who is signed in for each browser session.

A Manager is built once in main and shared by the middleware and handlers:

	fetcher := authstate.NewProfileFetcher(store, client)
	manager := authstate.NewManager(fetcher, store, authstate.WithLoadWait(cfg.LoadWait))
	defer manager.Close()

Every page load calls Load, which rebuilds the user from the stored token.
Concurrent loads for the same session share a single profile fetch. If the
fetch takes longer than the load wait the page gets Loading and the result is
kept for the next load. Hydrate lets the login and setup flows hand over a
user they already have, and Logout cancels any fetch before clearing the
session store.

The resolved State travels with the request:

	st := authstate.FromContext(r.Context())
	if st.IsAuthenticated() { ... }
*/
package authstate
