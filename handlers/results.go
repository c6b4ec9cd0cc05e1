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

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// resultadoPremio builds the winners breakdown of one award from a computed
// standing, resolving nominee details for the podium.
func resultadoPremio(db querier, premioID, premioNombre string, standings []models.NominadoPuntos) (models.ResultadoPremio, error) {
	res := models.ResultadoPremio{
		PremioID:           premioID,
		PremioNombre:       premioNombre,
		NominadosPorPuntos: standings,
	}

	oro, plata, bronce := medalWinners(standings)

	var err error
	if oro != nil {
		if res.Ganadores.Oro, err = nominadoByID(db, *oro); err != nil {
			return res, fmt.Errorf("failed to load gold winner: %w", err)
		}
	}
	if plata != nil {
		if res.Ganadores.Plata, err = nominadoByID(db, *plata); err != nil {
			return res, fmt.Errorf("failed to load silver winner: %w", err)
		}
	}
	if bronce != nil {
		if res.Ganadores.Bronce, err = nominadoByID(db, *bronce); err != nil {
			return res, fmt.Errorf("failed to load bronze winner: %w", err)
		}
	}
	return res, nil
}

// GetResultados handles GET /resultados (admin)
// Computes the live standings of every award without writing anything.
func (h *ResultsHandler) GetResultados(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	rows, err := h.db.Query(`SELECT id, nombre FROM premio ORDER BY nombre`)
	if err != nil {
		slog.Error("failed to query premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	type premioRef struct{ id, nombre string }
	var refs []premioRef
	for rows.Next() {
		var ref premioRef
		if err := rows.Scan(&ref.id, &ref.nombre); err != nil {
			slog.Error("failed to scan premio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		refs = append(refs, ref)
	}

	resultados := []models.ResultadoPremio{}
	for _, ref := range refs {
		standings, err := ComputeStandings(h.db, ref.id)
		if err != nil {
			slog.Error("failed to compute standings", "error", err, "premio_id", ref.id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		res, err := resultadoPremio(h.db, ref.id, ref.nombre, standings)
		if err != nil {
			slog.Error("failed to build results", "error", err, "premio_id", ref.id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		resultados = append(resultados, res)
	}

	middleware.JSONResponse(w, http.StatusOK, resultados)
}

// publishAward computes the standings of one award and writes the podium,
// publication timestamp and finalizado phase. Must run inside a transaction.
func publishAward(tx *sql.Tx, premioID, premioNombre string, now time.Time) (models.ResultadoPremio, error) {
	standings, err := ComputeStandings(tx, premioID)
	if err != nil {
		return models.ResultadoPremio{}, err
	}

	oro, plata, bronce := medalWinners(standings)
	_, err = tx.Exec(`
		UPDATE premio
		SET ganador_oro = $1, ganador_plata = $2, ganador_bronce = $3,
		    fecha_resultados_publicados = $4, estado = $5
		WHERE id = $6
	`, oro, plata, bronce, now, models.EstadoFinalizado, premioID)
	if err != nil {
		return models.ResultadoPremio{}, fmt.Errorf("failed to store winners: %w", err)
	}

	return resultadoPremio(tx, premioID, premioNombre, standings)
}

// PublicarResultados handles POST /resultados (admin)
// Publishes one award ({premio_id}) or every award not yet published. The
// whole publication runs in a single transaction.
func (h *ResultsHandler) PublicarResultados(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	var req models.PublicarResultadosRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	now := time.Now()

	if req.PremioID != "" {
		var nombre, estado string
		var fechaPub *time.Time
		err := tx.QueryRow(`
			SELECT nombre, estado, fecha_resultados_publicados FROM premio WHERE id = $1
		`, req.PremioID).Scan(&nombre, &estado, &fechaPub)
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusNotFound, "Premio no encontrado.", models.CodePremioNotFound)
			return
		}
		if err != nil {
			slog.Error("failed to query premio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}

		// Guardia de idempotencia: una vez publicados, los ganadores son
		// inmutables salvo reset explícito.
		if estado == models.EstadoFinalizado && fechaPub != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest,
				fmt.Sprintf("Los resultados para '%s' ya han sido publicados.", nombre),
				models.CodeResultsAlreadyPublished)
			return
		}

		res, err := publishAward(tx, req.PremioID, nombre, now)
		if err != nil {
			slog.Error("failed to publish results", "error", err, "premio_id", req.PremioID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al publicar resultados.", models.CodeDBError)
			return
		}
		if err := tx.Commit(); err != nil {
			slog.Error("failed to commit publication", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al publicar resultados.", models.CodeDBError)
			return
		}

		slog.Info("results published", "premio_id", req.PremioID)
		middleware.JSONResponse(w, http.StatusOK, models.PublicarResultadosResponse{
			Message: fmt.Sprintf("Resultados para '%s' calculados y publicados con éxito.", nombre),
			Premios: []models.ResultadoPremio{res},
		})
		return
	}

	// Modo masivo: publica todo lo pendiente y omite en silencio lo ya
	// publicado.
	rows, err := tx.Query(`
		SELECT id, nombre FROM premio
		WHERE NOT (estado = $1 AND fecha_resultados_publicados IS NOT NULL)
		ORDER BY nombre
	`, models.EstadoFinalizado)
	if err != nil {
		slog.Error("failed to query pending premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	type premioRef struct{ id, nombre string }
	var pendientes []premioRef
	for rows.Next() {
		var ref premioRef
		if err := rows.Scan(&ref.id, &ref.nombre); err != nil {
			rows.Close()
			slog.Error("failed to scan premio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		pendientes = append(pendientes, ref)
	}
	rows.Close()

	publicados := []models.ResultadoPremio{}
	for _, ref := range pendientes {
		res, err := publishAward(tx, ref.id, ref.nombre, now)
		if err != nil {
			slog.Error("failed to publish results", "error", err, "premio_id", ref.id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al publicar resultados.", models.CodeDBError)
			return
		}
		publicados = append(publicados, res)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit bulk publication", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al publicar resultados.", models.CodeDBError)
		return
	}

	slog.Info("results published in bulk", "premios", len(publicados))
	middleware.JSONResponse(w, http.StatusOK, models.PublicarResultadosResponse{
		Message: "Resultados calculados y publicados para todos los premios.",
		Premios: publicados,
	})
}

// ResultadosPublicos handles GET /resultados-publicos
// Anyone can see awards whose results were published.
func (h *ResultsHandler) ResultadosPublicos(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, nombre FROM premio
		WHERE estado = $1 AND fecha_resultados_publicados IS NOT NULL
		ORDER BY nombre
	`, models.EstadoFinalizado)
	if err != nil {
		slog.Error("failed to query published premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	type premioRef struct{ id, nombre string }
	var refs []premioRef
	for rows.Next() {
		var ref premioRef
		if err := rows.Scan(&ref.id, &ref.nombre); err != nil {
			slog.Error("failed to scan premio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		refs = append(refs, ref)
	}

	resultados := []models.ResultadoPremio{}
	for _, ref := range refs {
		standings, err := ComputeStandings(h.db, ref.id)
		if err != nil {
			slog.Error("failed to compute standings", "error", err, "premio_id", ref.id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		res, err := resultadoPremio(h.db, ref.id, ref.nombre, standings)
		if err != nil {
			slog.Error("failed to build results", "error", err, "premio_id", ref.id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		resultados = append(resultados, res)
	}

	middleware.JSONResponse(w, http.StatusOK, resultados)
}
