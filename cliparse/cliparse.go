package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort          = 3319
	DefaultDatabaseURL   = "canteen-web.db"
	DefaultLoadWait      = 5 * time.Second
	DefaultSessionMaxAge = 30 * 24 * time.Hour
	defaultEnvFile       = ".env"
)

type Config struct {
	Port          int
	APIURL        string
	SessionSecret string
	DatabaseURL   string
	DatabaseType  string
	PolicyPath    string
	SecureCookie  bool
	LoadWait      time.Duration
	SessionMaxAge time.Duration
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("canteen-web", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.APIURL, "a", "", "Canteen API base URL")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Session database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.PolicyPath, "policy", "", "Role redirect policy file (YAML)")
	fs.BoolVar(&cfg.SecureCookie, "secure-cookie", false, "Mark the session cookie Secure")
	fs.DurationVar(&cfg.LoadWait, "load-wait", 0, "How long a page waits for the profile before showing a placeholder")
	fs.DurationVar(&cfg.SessionMaxAge, "session-max-age", 0, "Age after which stored sessions are pruned")
	fs.StringVar(&envFile, "env-file", defaultEnvFile, "Optional dotenv file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session cookie signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.APIURL == "" {
		cfg.APIURL = os.Getenv("CANTEEN_API_URL")
	}
	if cfg.APIURL == "" {
		return Config{}, errors.New("canteen API URL required (use -a or CANTEEN_API_URL env)")
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = DefaultDatabaseURL
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.PolicyPath == "" {
		cfg.PolicyPath = os.Getenv("ROLE_POLICY")
	}

	if !cfg.SecureCookie {
		if v := os.Getenv("COOKIE_SECURE"); v != "" {
			secure, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid COOKIE_SECURE env variable")
			}
			cfg.SecureCookie = secure
		}
	}

	var err error
	if cfg.LoadWait == 0 {
		if cfg.LoadWait, err = durationEnv("PROFILE_LOAD_WAIT", DefaultLoadWait); err != nil {
			return Config{}, err
		}
	}
	if cfg.SessionMaxAge == 0 {
		if cfg.SessionMaxAge, err = durationEnv("SESSION_MAX_AGE", DefaultSessionMaxAge); err != nil {
			return Config{}, err
		}
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}

// loadEnvFile loads a dotenv file without overriding variables already set.
// A missing default file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) && path == defaultEnvFile {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
