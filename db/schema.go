package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL sticks to the subset that both PostgreSQL and SQLite accept:
// TEXT keys, explicit timestamps written from Go, named UNIQUE constraints.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Usuarios
CREATE TABLE IF NOT EXISTS usuario (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    nombre TEXT NOT NULL DEFAULT '',
    apellidos TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    foto_url TEXT,
    descripcion TEXT,
    verificado BOOLEAN NOT NULL DEFAULT FALSE,
    es_admin BOOLEAN NOT NULL DEFAULT FALSE,
    fecha_registro TIMESTAMP NOT NULL
);

-- Credenciales bearer opacas
CREATE TABLE IF NOT EXISTS token_acceso (
    token TEXT PRIMARY KEY,
    usuario_id TEXT NOT NULL REFERENCES usuario(id) ON DELETE CASCADE,
    fecha_creacion TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_token_usuario ON token_acceso(usuario_id);

-- Premios
CREATE TABLE IF NOT EXISTS premio (
    id TEXT PRIMARY KEY,
    nombre TEXT NOT NULL UNIQUE,
    tipo TEXT NOT NULL DEFAULT 'directo' CHECK (tipo IN ('directo', 'indirecto')),
    slug TEXT UNIQUE,
    descripcion TEXT,
    image_url TEXT,
    activo BOOLEAN NOT NULL DEFAULT TRUE,
    estado TEXT NOT NULL DEFAULT 'preparacion'
        CHECK (estado IN ('preparacion', 'votacion_1', 'votacion_2', 'finalizado')),
    ronda_actual INTEGER NOT NULL DEFAULT 1 CHECK (ronda_actual IN (1, 2)),
    vinculos_requeridos INTEGER NOT NULL DEFAULT 1,
    -- Ganadores sin FK: referencia circular premio<->nominado; la limpieza al
    -- borrar un nominado se hace en el codigo.
    ganador_oro TEXT,
    ganador_plata TEXT,
    ganador_bronce TEXT,
    fecha_inicio_ronda1 TIMESTAMP,
    fecha_fin_ronda1 TIMESTAMP,
    fecha_inicio_ronda2 TIMESTAMP,
    fecha_fin_ronda2 TIMESTAMP,
    fecha_resultados_publicados TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_premio_estado ON premio(estado);

-- Nominados
CREATE TABLE IF NOT EXISTS nominado (
    id TEXT PRIMARY KEY,
    premio_id TEXT NOT NULL REFERENCES premio(id) ON DELETE CASCADE,
    nombre TEXT NOT NULL,
    descripcion TEXT,
    imagen_url TEXT,
    activo BOOLEAN NOT NULL DEFAULT TRUE,
    fecha_creacion TIMESTAMP NOT NULL,
    CONSTRAINT uq_nominado_premio_nombre UNIQUE (premio_id, nombre)
);

CREATE INDEX IF NOT EXISTS idx_nominado_premio ON nominado(premio_id);

-- Usuarios vinculados a un nominado (guardia de auto-voto)
CREATE TABLE IF NOT EXISTS nominado_vinculo (
    nominado_id TEXT NOT NULL REFERENCES nominado(id) ON DELETE CASCADE,
    usuario_id TEXT NOT NULL REFERENCES usuario(id) ON DELETE CASCADE,
    PRIMARY KEY (nominado_id, usuario_id)
);

CREATE INDEX IF NOT EXISTS idx_vinculo_usuario ON nominado_vinculo(usuario_id);

-- Votos (append-only; las invariantes de unicidad viven aqui, no solo en el
-- motor de admision)
CREATE TABLE IF NOT EXISTS voto (
    id TEXT PRIMARY KEY,
    usuario_id TEXT NOT NULL REFERENCES usuario(id),
    premio_id TEXT NOT NULL REFERENCES premio(id) ON DELETE CASCADE,
    nominado_id TEXT NOT NULL REFERENCES nominado(id) ON DELETE CASCADE,
    ronda INTEGER NOT NULL CHECK (ronda IN (1, 2)),
    orden_ronda2 INTEGER CHECK (orden_ronda2 IN (1, 2, 3)),
    fecha_voto TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    CONSTRAINT uq_voto_nominado UNIQUE (usuario_id, premio_id, ronda, nominado_id),
    -- orden_ronda2 es NULL en ronda 1, y los NULL nunca colisionan
    CONSTRAINT uq_voto_orden UNIQUE (usuario_id, premio_id, ronda, orden_ronda2)
);

CREATE INDEX IF NOT EXISTS idx_voto_premio_ronda ON voto(premio_id, ronda);
CREATE INDEX IF NOT EXISTS idx_voto_usuario ON voto(usuario_id, premio_id, ronda);

-- Sugerencias
CREATE TABLE IF NOT EXISTS sugerencia (
    id TEXT PRIMARY KEY,
    usuario_id TEXT NOT NULL REFERENCES usuario(id) ON DELETE CASCADE,
    tipo TEXT NOT NULL CHECK (tipo IN ('premio', 'nominado', 'otro')),
    contenido TEXT NOT NULL,
    fecha_sugerencia TIMESTAMP NOT NULL,
    revisada BOOLEAN NOT NULL DEFAULT FALSE,
    notas_admin TEXT
);

CREATE INDEX IF NOT EXISTS idx_sugerencia_usuario ON sugerencia(usuario_id);
`

// SeedAdmin makes sure an administrator account exists. If the username is
// already taken the account is promoted instead of recreated. No-op when
// username or passwordHash is empty.
func SeedAdmin(db *sql.DB, username, email, passwordHash string) error {
	if username == "" || passwordHash == "" {
		return nil
	}
	if email == "" {
		email = username + "@gala.local"
	}

	var id string
	err := db.QueryRow(`SELECT id FROM usuario WHERE username = $1`, username).Scan(&id)
	if err == sql.ErrNoRows {
		_, err = db.Exec(`
			INSERT INTO usuario (id, username, email, password_hash, verificado, es_admin, fecha_registro)
			VALUES ($1, $2, $3, $4, TRUE, TRUE, $5)
		`, uuid.NewString(), username, email, passwordHash, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}

	_, err = db.Exec(`
		UPDATE usuario SET es_admin = TRUE, verificado = TRUE, password_hash = $1 WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to promote admin user: %w", err)
	}
	return nil
}
