// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(handler))

Logs request start at debug level and completion (status, duration_ms).
Websocket upgrades pass through: the recorder forwards Hijack.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
	}

Patterns use the same host syntax as the websocket origin check, so one
ALLOWED_ORIGINS setting governs both.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
*/
package middleware
