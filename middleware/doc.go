/*
Package middleware provides HTTP helpers shared by every handler.

# Request flow

  - WithLogging: slog request start/completion with duration
  - CORS: permissive cross-origin handling incl. preflight

# JSON helpers

  - JSONResponse: encode any payload with a status code
  - ErrorResponse: the uniform {"detail","code"} error body
  - ParseJSONBody: decode a request body

# Request inspection

  - BearerToken: extract the opaque credential from Authorization
  - GetClientIP: X-Forwarded-For / X-Real-IP / RemoteAddr fallback
*/
package middleware
