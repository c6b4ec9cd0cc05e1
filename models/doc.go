/*
Package models defines the domain types, request/response bodies, lifecycle
constants and stable error codes shared by the whole API.

Award lifecycle: preparacion → votacion_1 → votacion_2 → finalizado.
Round 1 allows up to MaxVotosRonda1 distinct nominees per user and award;
round 2 allows MaxVotosRonda2 ranked votes (orden_ronda2 1/2/3 = oro/plata/
bronce), each rank and each nominee at most once.

Error bodies always take the ErrorResponse shape:

	{"detail": "<mensaje>", "code": "<codigo_estable>"}

The Code* constants are part of the client contract and must not change.
*/
package models
