/*
Package handlers implements the HTTP surface of the gala.

The center of the package is the vote admission engine (EvaluateVote): every
POST /votar is reduced to an AdmissionInput snapshot, taken inside the same
transaction that inserts the vote, and either admitted whole or rejected with
a stable machine code. The database's unique constraints back the engine
against concurrent duplicates.

The rest of the package follows one pattern: a handler struct holding *sql.DB
and the parsed configuration, with one method per route. Errors always leave
through middleware.ErrorResponse, so clients see the uniform
{"detail","code"} body.
*/
package handlers
