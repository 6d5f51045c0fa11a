// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start at debug and completion (method, path, status,
duration_ms) at info through the logger package. The wrapped writer still
implements http.Hijacker so WebSocket upgrades work behind it.

# CORS Middleware

	server := http.Server{Handler: middleware.CORS(mux)}

Allows GET, POST, DELETE and OPTIONS with the Content-Type, X-Device-UUID
and X-Admin-Key headers.

# Rate Limiting

RateLimiter keeps a token bucket per client IP (x/time/rate). Client IPs are
hashed with auth.HashIP before being used as keys. The key is the connection
peer unless trustProxy is set, in which case X-Forwarded-For and X-Real-IP are
honoured. Only enable it behind a proxy that overwrites those headers.

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, salt, cfg.TrustProxy)
	go rl.Run(ctx) // drops idle visitors until ctx ends
	mux.HandleFunc("POST /candidates", rl.Limit(handler))

Rejected requests get 429 with a Retry-After header.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SubmitCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, then X-Real-IP, then RemoteAddr. RemoteIP skips the
headers and returns the connection peer.
*/
package middleware
