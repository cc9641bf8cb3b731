// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package testutil holds shared test fixtures.

	store := testutil.SetupTestStore(t)  // SQLite in t.TempDir()
	api := testutil.NewFakeAPI(t)        // in-memory canteen API
	api.AddUser("abc", models.User{ID: "u1", Role: models.RoleVoter})
	cfg := testutil.GetTestConfig(api.URL)

	sid, cookie := testutil.NewSession()
	req := testutil.MakeRequest("GET", "/", nil, nil)
	req.AddCookie(cookie)

Everything is cleaned up through t.Cleanup.
*/
package testutil
