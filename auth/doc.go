/*
Package auth provides credential primitives for the voting API.

# Tokens

GenerateToken creates the opaque bearer credential returned by /auth/login and
stored in the token_acceso table. Tokens are 192-bit random values encoded as
URL-safe base64 without padding; the server keeps no secret derivation for
them, possession is the whole credential.

# Passwords

HashPassword/VerifyPassword use HMAC-SHA256 keyed with the server-wide
PASSWORD_SALT setting. Verification is constant time.

# IP hashing

HashIP produces a short salted hash of a client address for the vote metadata
columns, so raw addresses are never persisted.
*/
package auth
