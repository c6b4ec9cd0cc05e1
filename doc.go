/*
Package main provides the entry point for the Gala Premios API server.

Gala Premios is the backend of a private awards gala: verified users vote in
two rounds per award, and the podium (oro, plata, bronce) is computed from
ranked round-2 ballots with 3/2/1 scoring.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... PASSWORD_SALT=... go run main.go

Or with flags:

	go run main.go -p 8000 -d "postgres://..." -password-salt "..."

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string
  - PASSWORD_SALT (-password-salt): secret for password and IP hashing

Optional settings:

  - PORT (-p): server port (default: 8000)
  - DATABASE_TYPE (-t): postgres (default) or sqlite
  - ADMIN_USERNAME / ADMIN_EMAIL / ADMIN_PASSWORD: bootstrap administrator

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (users, awards, voting, results, phases)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - auth: Tokens and password hashing
  - db: Schema creation and admin seeding
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
