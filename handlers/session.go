package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

var errNoAuth = errors.New("no valid credentials")

// querier is satisfied by both *sql.DB and *sql.Tx, so lookups can run inside
// or outside a transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

const usuarioColumns = `id, username, email, nombre, apellidos, foto_url, descripcion, verificado, es_admin, fecha_registro`

func scanUsuario(row *sql.Row) (models.Usuario, error) {
	var u models.Usuario
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Nombre, &u.Apellidos,
		&u.FotoURL, &u.Descripcion, &u.Verificado, &u.EsAdmin, &u.FechaRegistro)
	return u, err
}

// authUser resolves the bearer credential of a request to its user.
func authUser(db querier, r *http.Request) (*models.Usuario, error) {
	token := middleware.BearerToken(r)
	if token == "" {
		return nil, errNoAuth
	}

	u, err := scanUsuario(db.QueryRow(`
		SELECT u.id, u.username, u.email, u.nombre, u.apellidos, u.foto_url,
		       u.descripcion, u.verificado, u.es_admin, u.fecha_registro
		FROM usuario u
		JOIN token_acceso t ON t.usuario_id = u.id
		WHERE t.token = $1
	`, token))
	if err == sql.ErrNoRows {
		return nil, errNoAuth
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// requireUser writes the error response itself and returns nil when the
// request carries no valid credential.
func requireUser(db querier, w http.ResponseWriter, r *http.Request) *models.Usuario {
	user, err := authUser(db, r)
	if err == errNoAuth {
		middleware.ErrorResponse(w, http.StatusUnauthorized,
			"Credenciales no proporcionadas o inválidas.", models.CodeNotAuthenticated)
		return nil
	}
	if err != nil {
		slog.Error("failed to resolve credentials", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError,
			"Error de base de datos.", models.CodeDBError)
		return nil
	}
	return user
}

// requireAdmin is requireUser plus the es_admin gate.
func requireAdmin(db querier, w http.ResponseWriter, r *http.Request) *models.Usuario {
	user := requireUser(db, w, r)
	if user == nil {
		return nil
	}
	if !user.EsAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden,
			"Se requieren permisos de administrador.", models.CodeAdminRequired)
		return nil
	}
	return user
}

// uniqueViolation reports whether err is a uniqueness violation involving the
// given constraint fragment. Matches both SQLite ("UNIQUE constraint failed:
// voto.usuario_id, ...") and lib/pq ("duplicate key value violates unique
// constraint \"uq_voto_orden\"") phrasings.
func uniqueViolation(err error, fragment string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") &&
		!strings.Contains(msg, "duplicate key value") {
		return false
	}
	return strings.Contains(msg, fragment)
}

const premioColumns = `id, nombre, tipo, slug, descripcion, image_url, activo, estado, ronda_actual, vinculos_requeridos,
	ganador_oro, ganador_plata, ganador_bronce,
	fecha_inicio_ronda1, fecha_fin_ronda1, fecha_inicio_ronda2, fecha_fin_ronda2, fecha_resultados_publicados`

func scanPremio(row *sql.Row) (models.Premio, error) {
	var p models.Premio
	err := row.Scan(&p.ID, &p.Nombre, &p.Tipo, &p.Slug, &p.Descripcion, &p.ImageURL,
		&p.Activo, &p.Estado, &p.RondaActual, &p.VinculosRequeridos,
		&p.GanadorOro, &p.GanadorPlata, &p.GanadorBronce,
		&p.FechaInicioRonda1, &p.FechaFinRonda1, &p.FechaInicioRonda2,
		&p.FechaFinRonda2, &p.FechaResultadosPub)
	return p, err
}

func premioByID(db querier, id string) (models.Premio, error) {
	return scanPremio(db.QueryRow(`SELECT `+premioColumns+` FROM premio WHERE id = $1`, id))
}

func nominadoByID(db querier, id string) (*models.Nominado, error) {
	var n models.Nominado
	err := db.QueryRow(`
		SELECT id, premio_id, nombre, descripcion, imagen_url, activo, fecha_creacion
		FROM nominado WHERE id = $1
	`, id).Scan(&n.ID, &n.PremioID, &n.Nombre, &n.Descripcion, &n.ImagenURL, &n.Activo, &n.FechaCreacion)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
