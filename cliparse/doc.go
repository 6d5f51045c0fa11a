// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Flags win over environment variables, which win over defaults. A .env file
in the working directory is loaded first if present; it never overrides
variables already set.

# Settings

	-p                    PORT                 3318
	-t                    DATABASE_TYPE        sqlite
	-d                    DATABASE_URL         file:aiceo.db (required for postgres)
	-redis                REDIS_URL            unset: budgets and live updates stay in-process
	-admin-salt           ADMIN_KEY_SALT       required
	-slug-salt            SHARE_SLUG_SALT      required
	-vote-cap             VOTE_CAP             3
	-promote-threshold    PROMOTE_THRESHOLD    5
	-vote-cooldown        VOTE_COOLDOWN        500ms
	-refund-on-failure    REFUND_ON_FAILURE    false
	-resync-interval      RESYNC_INTERVAL      30s
	-moderation-interval  MODERATION_INTERVAL  0 (only after votes and submissions)
	-seed-file            SEED_FILE            built-in seeds
	-log-level            LOG_LEVEL            info
	-log-file             LOG_FILE             unset
	-rate-limit           RATE_LIMIT_RPS       5
	-rate-burst           RATE_LIMIT_BURST     10
	-trust-proxy          TRUST_PROXY          false

-print-admin-key prints the admin key derived from the salt and exits.
*/
package cliparse
