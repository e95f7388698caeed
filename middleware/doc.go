// Copyright (c) 2025 UWEZert.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Admin Key Guard

Admin endpoints require the X-API-Key header:

	mux.HandleFunc("POST /decision",
		middleware.WithLogging(middleware.RequireAPIKey(cfg.BackendAPIKey, handler)))

An unset configured key answers 500 (server misconfiguration); a wrong
or missing header answers 401.

# CORS Middleware

Enable cross-origin requests from the static confirmation page:

	server := http.Server{
		Handler: middleware.CORS(cfg.CORSOrigins, mux),
	}

The default ["*"] opens every origin without credentials; an explicit
origin list echoes only listed origins and allows credentials.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.ConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used to record the registration IP and to resolve submission geo data.
*/
package middleware
