/*
Package db handles database schema creation and the bootstrap administrator.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - usuario: registered users (verificado gates voting; es_admin gates admin API)
  - token_acceso: opaque bearer credentials
  - premio: awards with phase/round state and winner slots
  - nominado: nominees, unique per (premio, nombre)
  - nominado_vinculo: users linked to a nominee (self-vote guard)
  - voto: append-only ballot ledger
  - sugerencia: user suggestion inbox

# Relationships

	premio 1──* nominado
	nominado *──* usuario (via nominado_vinculo)
	voto *──1 usuario / premio / nominado

# Vote uniqueness

The ballot ledger carries the two write-time invariants itself so that racing
requests cannot produce duplicate rows:

  - uq_voto_nominado: (usuario, premio, ronda, nominado)
  - uq_voto_orden:    (usuario, premio, ronda, orden_ronda2)

orden_ronda2 is NULL for round-1 votes, which never collide under the second
constraint on either PostgreSQL or SQLite.
*/
package db
