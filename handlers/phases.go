package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

type PhaseHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPhaseHandler(db *sql.DB, cfg cliparse.Config) *PhaseHandler {
	return &PhaseHandler{db: db, cfg: cfg}
}

// transicionesValidas is the per-award state machine. finalizado is terminal
// (only reset leaves it).
var transicionesValidas = map[string][]string{
	models.EstadoPreparacion: {models.EstadoVotacion1},
	models.EstadoVotacion1:   {models.EstadoVotacion2, models.EstadoFinalizado},
	models.EstadoVotacion2:   {models.EstadoFinalizado},
	models.EstadoFinalizado:  {},
}

// siguienteEstado is the natural forward step used by avanzar-fase.
var siguienteEstado = map[string]string{
	models.EstadoPreparacion: models.EstadoVotacion1,
	models.EstadoVotacion1:   models.EstadoVotacion2,
	models.EstadoVotacion2:   models.EstadoFinalizado,
}

func esEstadoValido(estado string) bool {
	_, ok := transicionesValidas[estado]
	return ok
}

func transicionPermitida(desde, hasta string) bool {
	for _, e := range transicionesValidas[desde] {
		if e == hasta {
			return true
		}
	}
	return false
}

// applyTransition moves one award to its new phase and stamps the round
// timestamps. Winners are NOT computed here: publicar resultados is a
// separate, explicit operation.
func applyTransition(tx *sql.Tx, premioID, nuevoEstado string, now time.Time) error {
	var err error
	switch nuevoEstado {
	case models.EstadoVotacion1:
		_, err = tx.Exec(`
			UPDATE premio SET estado = $1, ronda_actual = 1, fecha_inicio_ronda1 = $2 WHERE id = $3
		`, nuevoEstado, now, premioID)
	case models.EstadoVotacion2:
		_, err = tx.Exec(`
			UPDATE premio SET estado = $1, ronda_actual = 2, fecha_fin_ronda1 = $2, fecha_inicio_ronda2 = $2 WHERE id = $3
		`, nuevoEstado, now, premioID)
	case models.EstadoFinalizado:
		_, err = tx.Exec(`
			UPDATE premio SET estado = $1, fecha_fin_ronda2 = $2 WHERE id = $3
		`, nuevoEstado, now, premioID)
	default:
		return fmt.Errorf("unknown target state %q", nuevoEstado)
	}
	if err != nil {
		return fmt.Errorf("failed to apply transition to %s: %w", nuevoEstado, err)
	}
	return nil
}

// CambiarEstadoPremio handles POST /admin/premios/{id}/cambiar-estado
func (h *PhaseHandler) CambiarEstadoPremio(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	premioID := r.PathValue("id")
	var req models.CambiarEstadoRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}

	premio, err := premioByID(h.db, premioID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Premio no encontrado.", models.CodePremioNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	if !esEstadoValido(req.NuevoEstado) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Estado inválido.", models.CodeEstadoInvalido)
		return
	}
	if !transicionPermitida(premio.Estado, req.NuevoEstado) {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("No se puede cambiar de %s a %s.", premio.Estado, req.NuevoEstado),
			models.CodeTransicionInvalida)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	if err := applyTransition(tx, premioID, req.NuevoEstado, time.Now()); err != nil {
		slog.Error("failed to change premio state", "error", err, "premio_id", premioID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al cambiar el estado.", models.CodeDBError)
		return
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit state change", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al cambiar el estado.", models.CodeDBError)
		return
	}

	actualizado, err := premioByID(h.db, premioID)
	if err != nil {
		slog.Error("failed to reload premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	slog.Info("premio state changed", "premio_id", premioID, "estado", req.NuevoEstado)
	middleware.JSONResponse(w, http.StatusOK, models.CambiarEstadoResponse{
		Message: fmt.Sprintf("Estado del premio actualizado a %s.", req.NuevoEstado),
		Premio:  actualizado,
	})
}

// AvanzarFase handles POST /admin/avanzar-fase
// Moves every active, non-final award one step forward in a single
// transaction, which is what advances the whole gala.
func (h *PhaseHandler) AvanzarFase(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, estado FROM premio WHERE activo = TRUE AND estado != $1
	`, models.EstadoFinalizado)
	if err != nil {
		slog.Error("failed to query premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	type premioRef struct{ id, estado string }
	var pendientes []premioRef
	for rows.Next() {
		var ref premioRef
		if err := rows.Scan(&ref.id, &ref.estado); err != nil {
			rows.Close()
			slog.Error("failed to scan premio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		pendientes = append(pendientes, ref)
	}
	rows.Close()

	now := time.Now()
	avanzados := 0
	for _, ref := range pendientes {
		destino, ok := siguienteEstado[ref.estado]
		if !ok {
			continue
		}
		if err := applyTransition(tx, ref.id, destino, now); err != nil {
			slog.Error("failed to advance premio", "error", err, "premio_id", ref.id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al avanzar la fase.", models.CodeDBError)
			return
		}
		avanzados++
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit phase advance", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al avanzar la fase.", models.CodeDBError)
		return
	}

	fase, err := galaPhase(h.db)
	if err != nil {
		slog.Error("failed to compute global phase", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	slog.Info("gala phase advanced", "premios", avanzados, "fase_global", fase)
	middleware.JSONResponse(w, http.StatusOK, models.AvanzarFaseResponse{
		Message:          "Fase de la gala avanzada.",
		FaseGlobal:       fase,
		PremiosAvanzados: avanzados,
	})
}

// ResetGala handles POST /admin/reset-gala
// Deletes every vote and returns every award to preparacion as one atomic
// unit; a half-reset gala is never observable.
func (h *PhaseHandler) ResetGala(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	votos, err := tx.Exec(`DELETE FROM voto`)
	if err != nil {
		slog.Error("failed to delete votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al reiniciar la gala.", models.CodeDBError)
		return
	}

	premios, err := tx.Exec(`
		UPDATE premio
		SET estado = $1, ronda_actual = 1,
		    ganador_oro = NULL, ganador_plata = NULL, ganador_bronce = NULL,
		    fecha_inicio_ronda1 = NULL, fecha_fin_ronda1 = NULL,
		    fecha_inicio_ronda2 = NULL, fecha_fin_ronda2 = NULL,
		    fecha_resultados_publicados = NULL
	`, models.EstadoPreparacion)
	if err != nil {
		slog.Error("failed to reset premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al reiniciar la gala.", models.CodeDBError)
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit reset", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al reiniciar la gala.", models.CodeDBError)
		return
	}

	votosEliminados, _ := votos.RowsAffected()
	premiosReiniciados, _ := premios.RowsAffected()

	slog.Info("gala reset", "votos_eliminados", votosEliminados, "premios", premiosReiniciados)
	middleware.JSONResponse(w, http.StatusOK, models.ResetGalaResponse{
		Message:            "Gala reiniciada: votos eliminados y premios en preparación.",
		VotosEliminados:    votosEliminados,
		PremiosReiniciados: premiosReiniciados,
	})
}
