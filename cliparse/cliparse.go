// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	RedisURL     string

	AdminKeySalt  string
	ShareSlugSalt string

	VoteCap            int
	PromoteThreshold   int
	VoteCooldown       time.Duration
	RefundOnFailure    bool
	ResyncInterval     time.Duration
	ModerationInterval time.Duration
	SeedFile           string

	LogLevel string
	LogFile  string

	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool

	PrintAdminKey bool
}

// ParseFlags reads flags, then fills anything not given on the command line
// from the environment (after loading .env if present), then applies defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("ai-ceo", flag.ContinueOnError)

	// Network and storage
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for budgets and live updates (optional)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.ShareSlugSalt, "slug-salt", "", "Share slug salt (prefer env)")

	// Voting behaviour
	fs.IntVar(&cfg.VoteCap, "vote-cap", 0, "Votes per device before an unlock is needed")
	fs.IntVar(&cfg.PromoteThreshold, "promote-threshold", 0, "Votes needed to promote a submission")
	fs.DurationVar(&cfg.VoteCooldown, "vote-cooldown", 0, "Cooldown after each vote")
	fs.BoolVar(&cfg.RefundOnFailure, "refund-on-failure", false, "Refund the vote budget when recording a vote fails")
	fs.DurationVar(&cfg.ResyncInterval, "resync-interval", 0, "Leaderboard resync interval")
	fs.DurationVar(&cfg.ModerationInterval, "moderation-interval", -1, "Scheduled moderation interval (0 = only after votes and submissions)")
	fs.StringVar(&cfg.SeedFile, "seed-file", "", "YAML seed file (default: built-in seeds)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "JSON log file (optional)")

	// Rate limiting
	fs.Float64Var(&cfg.RateLimitRPS, "rate-limit", 0, "Requests per second per client on mutating routes")
	fs.IntVar(&cfg.RateLimitBurst, "rate-burst", 0, "Rate limit burst")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Key rate limits on X-Forwarded-For (only behind a proxy that sets it)")

	fs.BoolVar(&cfg.PrintAdminKey, "print-admin-key", false, "Print the admin key and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", 3318); err != nil {
			return Config{}, err
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:aiceo.db"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}
	if cfg.ShareSlugSalt == "" {
		cfg.ShareSlugSalt = os.Getenv("SHARE_SLUG_SALT")
	}
	if cfg.ShareSlugSalt == "" {
		return Config{}, errors.New("SHARE_SLUG_SALT required")
	}

	if cfg.VoteCap == 0 {
		if cfg.VoteCap, err = envInt("VOTE_CAP", 3); err != nil {
			return Config{}, err
		}
	}
	if cfg.VoteCap < 1 {
		return Config{}, errors.New("vote cap must be at least 1")
	}
	if cfg.PromoteThreshold == 0 {
		if cfg.PromoteThreshold, err = envInt("PROMOTE_THRESHOLD", 5); err != nil {
			return Config{}, err
		}
	}
	if cfg.VoteCooldown == 0 {
		if cfg.VoteCooldown, err = envDuration("VOTE_COOLDOWN", 500*time.Millisecond); err != nil {
			return Config{}, err
		}
	}
	if !cfg.RefundOnFailure {
		if cfg.RefundOnFailure, err = envBool("REFUND_ON_FAILURE", false); err != nil {
			return Config{}, err
		}
	}
	if cfg.ResyncInterval == 0 {
		if cfg.ResyncInterval, err = envDuration("RESYNC_INTERVAL", 30*time.Second); err != nil {
			return Config{}, err
		}
	}
	if cfg.ModerationInterval < 0 {
		if cfg.ModerationInterval, err = envDuration("MODERATION_INTERVAL", 0); err != nil {
			return Config{}, err
		}
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envString("LOG_LEVEL", "info")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = os.Getenv("LOG_FILE")
	}

	if cfg.RateLimitRPS == 0 {
		if cfg.RateLimitRPS, err = envFloat("RATE_LIMIT_RPS", 5); err != nil {
			return Config{}, err
		}
	}
	if cfg.RateLimitBurst == 0 {
		if cfg.RateLimitBurst, err = envInt("RATE_LIMIT_BURST", 10); err != nil {
			return Config{}, err
		}
	}
	if !cfg.TrustProxy {
		if cfg.TrustProxy, err = envBool("TRUST_PROXY", false); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// loadDotEnv loads path into the environment without overriding set variables.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", key)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
