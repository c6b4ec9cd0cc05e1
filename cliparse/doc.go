/*
Package cliparse parses server configuration from CLI flags and environment
variables. CLI flags win; a .env file is loaded first when present.

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or SQLite path
  - PASSWORD_SALT (-password-salt): secret for password hashing

Optional settings:

  - PORT (-p): server port (default: 8000)
  - DATABASE_TYPE (-t): postgres (default) or sqlite
  - ADMIN_USERNAME / ADMIN_EMAIL / ADMIN_PASSWORD: bootstrap administrator
    created or promoted at startup
*/
package cliparse
