// Copyright (c) 2025 Guy Krinsky.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

# Middleware

  - WithLogging: request start/completion logging with duration
  - CORS: cross-origin headers and preflight handling
  - RateLimiter.Limit: per-client-IP token bucket (golang.org/x/time/rate)

# Helpers

  - JSONResponse: encode a JSON body with status code
  - ErrorResponse: standard error payload (error, code, message)
  - ParseJSONBody: decode a request body
  - GetClientIP: X-Forwarded-For / X-Real-IP / RemoteAddr resolution
*/
package middleware
