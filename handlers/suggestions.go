package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

type SuggestionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSuggestionHandler(db *sql.DB, cfg cliparse.Config) *SuggestionHandler {
	return &SuggestionHandler{db: db, cfg: cfg}
}

// CrearSugerencia handles POST /sugerencias
func (h *SuggestionHandler) CrearSugerencia(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}

	var req models.CrearSugerenciaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}
	req.Contenido = strings.TrimSpace(req.Contenido)
	if req.Tipo == "" || req.Contenido == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Los campos 'tipo' y 'contenido' son obligatorios.", models.CodeValidationError)
		return
	}
	if req.Tipo != "premio" && req.Tipo != "nominado" && req.Tipo != "otro" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"El campo 'tipo' debe ser 'premio', 'nominado' u 'otro'.", models.CodeValidationError)
		return
	}

	id := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO sugerencia (id, usuario_id, tipo, contenido, fecha_sugerencia, revisada)
		VALUES ($1, $2, $3, $4, $5, FALSE)
	`, id, user.ID, req.Tipo, req.Contenido, time.Now())
	if err != nil {
		slog.Error("failed to insert sugerencia", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al guardar la sugerencia.", models.CodeDBError)
		return
	}

	sugerencia, err := sugerenciaByID(h.db, id)
	if err != nil {
		slog.Error("failed to reload sugerencia", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	slog.Info("sugerencia created", "sugerencia_id", id, "tipo", req.Tipo)
	middleware.JSONResponse(w, http.StatusCreated, sugerencia)
}

// MisSugerencias handles GET /sugerencias
func (h *SuggestionHandler) MisSugerencias(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}
	h.listSugerencias(w, `WHERE usuario_id = $1`, user.ID)
}

// ListSugerencias handles GET /admin/sugerencias
func (h *SuggestionHandler) ListSugerencias(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}
	h.listSugerencias(w, ``)
}

func (h *SuggestionHandler) listSugerencias(w http.ResponseWriter, where string, args ...any) {
	rows, err := h.db.Query(`
		SELECT id, usuario_id, tipo, contenido, fecha_sugerencia, revisada, notas_admin
		FROM sugerencia `+where+` ORDER BY fecha_sugerencia DESC
	`, args...)
	if err != nil {
		slog.Error("failed to query sugerencias", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	sugerencias := []models.Sugerencia{}
	for rows.Next() {
		var s models.Sugerencia
		if err := rows.Scan(&s.ID, &s.UsuarioID, &s.Tipo, &s.Contenido,
			&s.FechaSugerencia, &s.Revisada, &s.NotasAdmin); err != nil {
			slog.Error("failed to scan sugerencia", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		sugerencias = append(sugerencias, s)
	}

	middleware.JSONResponse(w, http.StatusOK, sugerencias)
}

// RevisarSugerencia handles PUT /admin/sugerencias/{id}
func (h *SuggestionHandler) RevisarSugerencia(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	sugerenciaID := r.PathValue("id")
	var req models.RevisarSugerenciaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}

	sugerencia, err := sugerenciaByID(h.db, sugerenciaID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Sugerencia no encontrada.", models.CodeNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query sugerencia", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	if req.Revisada != nil {
		sugerencia.Revisada = *req.Revisada
	}
	if req.NotasAdmin != nil {
		sugerencia.NotasAdmin = req.NotasAdmin
	}

	_, err = h.db.Exec(`
		UPDATE sugerencia SET revisada = $1, notas_admin = $2 WHERE id = $3
	`, sugerencia.Revisada, sugerencia.NotasAdmin, sugerenciaID)
	if err != nil {
		slog.Error("failed to update sugerencia", "error", err, "sugerencia_id", sugerenciaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al actualizar la sugerencia.", models.CodeDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sugerencia)
}

func sugerenciaByID(db querier, id string) (models.Sugerencia, error) {
	var s models.Sugerencia
	err := db.QueryRow(`
		SELECT id, usuario_id, tipo, contenido, fecha_sugerencia, revisada, notas_admin
		FROM sugerencia WHERE id = $1
	`, id).Scan(&s.ID, &s.UsuarioID, &s.Tipo, &s.Contenido, &s.FechaSugerencia, &s.Revisada, &s.NotasAdmin)
	return s, err
}
