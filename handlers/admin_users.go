package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

// AdminUserHandler manages the user roster: the verification gate lives here.
type AdminUserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminUserHandler(db *sql.DB, cfg cliparse.Config) *AdminUserHandler {
	return &AdminUserHandler{db: db, cfg: cfg}
}

// ListUsuarios handles GET /admin/usuarios
func (h *AdminUserHandler) ListUsuarios(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	rows, err := h.db.Query(`SELECT ` + usuarioColumns + ` FROM usuario ORDER BY username`)
	if err != nil {
		slog.Error("failed to query usuarios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	usuarios := []models.Usuario{}
	for rows.Next() {
		var u models.Usuario
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Nombre, &u.Apellidos,
			&u.FotoURL, &u.Descripcion, &u.Verificado, &u.EsAdmin, &u.FechaRegistro); err != nil {
			slog.Error("failed to scan usuario", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		usuarios = append(usuarios, u)
	}

	middleware.JSONResponse(w, http.StatusOK, usuarios)
}

// GetUsuario handles GET /admin/usuarios/{id}
func (h *AdminUserHandler) GetUsuario(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	user, err := scanUsuario(h.db.QueryRow(
		`SELECT `+usuarioColumns+` FROM usuario WHERE id = $1`, r.PathValue("id")))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Usuario no encontrado.", models.CodeNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query usuario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// ActualizarUsuario handles PUT /admin/usuarios/{id}
// This is the only place where verificado and es_admin change.
func (h *AdminUserHandler) ActualizarUsuario(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	usuarioID := r.PathValue("id")
	var req models.AdminActualizarUsuarioRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}

	user, err := scanUsuario(h.db.QueryRow(
		`SELECT `+usuarioColumns+` FROM usuario WHERE id = $1`, usuarioID))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Usuario no encontrado.", models.CodeNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query usuario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	if req.Verificado != nil {
		user.Verificado = *req.Verificado
	}
	if req.EsAdmin != nil {
		user.EsAdmin = *req.EsAdmin
	}
	if req.Nombre != nil {
		user.Nombre = *req.Nombre
	}
	if req.Apellidos != nil {
		user.Apellidos = *req.Apellidos
	}
	if req.FotoURL != nil {
		user.FotoURL = req.FotoURL
	}
	if req.Descripcion != nil {
		user.Descripcion = req.Descripcion
	}

	_, err = h.db.Exec(`
		UPDATE usuario
		SET verificado = $1, es_admin = $2, nombre = $3, apellidos = $4, foto_url = $5, descripcion = $6
		WHERE id = $7
	`, user.Verificado, user.EsAdmin, user.Nombre, user.Apellidos, user.FotoURL, user.Descripcion, usuarioID)
	if err != nil {
		slog.Error("failed to update usuario", "error", err, "usuario_id", usuarioID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al actualizar el usuario.", models.CodeDBError)
		return
	}

	slog.Info("usuario updated", "usuario_id", usuarioID, "verificado", user.Verificado)
	middleware.JSONResponse(w, http.StatusOK, user)
}

// EliminarUsuario handles DELETE /admin/usuarios/{id}
// Refused while the user has ballots in the ledger: deleting a voter would
// silently change published and unpublished tallies.
func (h *AdminUserHandler) EliminarUsuario(w http.ResponseWriter, r *http.Request) {
	admin := requireAdmin(h.db, w, r)
	if admin == nil {
		return
	}

	usuarioID := r.PathValue("id")
	if usuarioID == admin.ID {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"No puedes eliminar tu propia cuenta.", models.CodeValidationError)
		return
	}

	var existe bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM usuario WHERE id = $1)`, usuarioID).Scan(&existe)
	if err != nil {
		slog.Error("failed to query usuario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	if !existe {
		middleware.ErrorResponse(w, http.StatusNotFound, "Usuario no encontrado.", models.CodeNotFound)
		return
	}

	var tieneVotos bool
	err = h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM voto WHERE usuario_id = $1)`, usuarioID).Scan(&tieneVotos)
	if err != nil {
		slog.Error("failed to check votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	if tieneVotos {
		middleware.ErrorResponse(w, http.StatusConflict,
			"El usuario tiene votos emitidos; reinicia la gala antes de eliminarlo.",
			models.CodeConflict)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	steps := []string{
		`DELETE FROM token_acceso WHERE usuario_id = $1`,
		`DELETE FROM nominado_vinculo WHERE usuario_id = $1`,
		`DELETE FROM sugerencia WHERE usuario_id = $1`,
		`DELETE FROM usuario WHERE id = $1`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(q, usuarioID); err != nil {
			slog.Error("failed to delete usuario", "error", err, "usuario_id", usuarioID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el usuario.", models.CodeDBError)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit usuario deletion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el usuario.", models.CodeDBError)
		return
	}

	slog.Info("usuario deleted", "usuario_id", usuarioID)
	w.WriteHeader(http.StatusNoContent)
}
