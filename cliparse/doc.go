// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - APIURL: Canteen API base URL (required)
  - SessionSecret: Secret for session cookie HMAC (required)
  - DatabaseURL: Session store DSN (default: canteen-web.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - PolicyPath: Optional YAML role redirect policy
  - SecureCookie: Set the Secure attribute on the session cookie
  - LoadWait: Profile wait budget before the loading placeholder (default: 5s)
  - SessionMaxAge: Prune threshold for stored sessions (default: 720h)

# CLI Flags

	-p                Server port
	-a                Canteen API URL
	-d                Database URL
	-t                Database type
	--policy          Role policy file
	--secure-cookie   Secure cookie
	--load-wait       Profile wait budget
	--session-max-age Session prune age
	--session-secret  Cookie signing secret
	--env-file        Dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables, which may come from the dotenv file:

	PORT              → -p
	CANTEEN_API_URL   → -a
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	ROLE_POLICY       → --policy
	COOKIE_SECURE     → --secure-cookie
	PROFILE_LOAD_WAIT → --load-wait
	SESSION_MAX_AGE   → --session-max-age
	SESSION_SECRET    → --session-secret

CLI flags take precedence over environment variables, and variables already
present in the process environment take precedence over the dotenv file.
*/
package cliparse
