package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

type StatsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStatsHandler(db *sql.DB, cfg cliparse.Config) *StatsHandler {
	return &StatsHandler{db: db, cfg: cfg}
}

// faseOrden orders phases for the global projection.
var faseOrden = map[string]int{
	models.EstadoPreparacion: 0,
	models.EstadoVotacion1:   1,
	models.EstadoVotacion2:   2,
	models.EstadoFinalizado:  3,
}

// galaPhase projects the global phase of the gala from the active awards: the
// least-advanced active award decides. No awards means preparacion. There is
// no stored global state, so reset needs nothing extra to bring this back to
// the start.
func galaPhase(db querier) (string, error) {
	rows, err := db.Query(`SELECT DISTINCT estado FROM premio WHERE activo = TRUE`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	fase := ""
	for rows.Next() {
		var estado string
		if err := rows.Scan(&estado); err != nil {
			return "", err
		}
		if fase == "" || faseOrden[estado] < faseOrden[fase] {
			fase = estado
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if fase == "" {
		fase = models.EstadoPreparacion
	}
	return fase, nil
}

// Estadisticas handles GET /admin/estadisticas
// The dashboard: totals, per-state and per-round breakdowns, the latest
// ballots and the most active voters.
func (h *StatsHandler) Estadisticas(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	var resp models.EstadisticasResponse

	counts := []struct {
		query string
		out   *int
	}{
		{`SELECT COUNT(*) FROM usuario`, &resp.TotalUsuarios},
		{`SELECT COUNT(*) FROM premio`, &resp.TotalPremios},
		{`SELECT COUNT(*) FROM voto`, &resp.TotalVotos},
	}
	for _, c := range counts {
		if err := h.db.QueryRow(c.query).Scan(c.out); err != nil {
			slog.Error("failed to count", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
	}

	fase, err := galaPhase(h.db)
	if err != nil {
		slog.Error("failed to compute global phase", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	resp.FaseGlobal = fase

	resp.PremiosPorEstado = map[string]int{}
	rows, err := h.db.Query(`SELECT estado, COUNT(*) FROM premio GROUP BY estado`)
	if err != nil {
		slog.Error("failed to group premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	for rows.Next() {
		var estado string
		var n int
		if err := rows.Scan(&estado, &n); err != nil {
			rows.Close()
			slog.Error("failed to scan estado count", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		resp.PremiosPorEstado[estado] = n
	}
	rows.Close()

	resp.VotosPorRonda = map[string]int{"1": 0, "2": 0}
	rows, err = h.db.Query(`SELECT ronda, COUNT(*) FROM voto GROUP BY ronda`)
	if err != nil {
		slog.Error("failed to group votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	for rows.Next() {
		var ronda, n int
		if err := rows.Scan(&ronda, &n); err != nil {
			rows.Close()
			slog.Error("failed to scan round count", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		if ronda == 1 {
			resp.VotosPorRonda["1"] = n
		} else {
			resp.VotosPorRonda["2"] = n
		}
	}
	rows.Close()

	resp.UltimosVotos = []models.UltimoVoto{}
	rows, err = h.db.Query(`
		SELECT u.username, p.nombre, n.nombre, v.ronda, v.fecha_voto
		FROM voto v
		JOIN usuario u ON u.id = v.usuario_id
		JOIN premio p ON p.id = v.premio_id
		JOIN nominado n ON n.id = v.nominado_id
		ORDER BY v.fecha_voto DESC
		LIMIT 10
	`)
	if err != nil {
		slog.Error("failed to query latest votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	for rows.Next() {
		var uv models.UltimoVoto
		var fecha time.Time
		if err := rows.Scan(&uv.Usuario, &uv.Premio, &uv.Nominado, &uv.Ronda, &fecha); err != nil {
			rows.Close()
			slog.Error("failed to scan vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		uv.Fecha = fecha.Format(time.RFC3339)
		uv.Hace = humanize.Time(fecha)
		resp.UltimosVotos = append(resp.UltimosVotos, uv)
	}
	rows.Close()

	resp.UsuariosActivos = []models.UsuarioActivo{}
	rows, err = h.db.Query(`
		SELECT u.username, COUNT(*) AS total
		FROM voto v
		JOIN usuario u ON u.id = v.usuario_id
		GROUP BY u.username
		ORDER BY total DESC, u.username ASC
		LIMIT 10
	`)
	if err != nil {
		slog.Error("failed to query active users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	for rows.Next() {
		var ua models.UsuarioActivo
		if err := rows.Scan(&ua.Usuario, &ua.TotalVotos); err != nil {
			rows.Close()
			slog.Error("failed to scan active user", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		resp.UsuariosActivos = append(resp.UsuariosActivos, ua)
	}
	rows.Close()

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// PremiosTop handles GET /admin/premios-top
// Awards ranked by ballot volume.
func (h *StatsHandler) PremiosTop(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	rows, err := h.db.Query(`
		SELECT p.id, p.nombre, p.estado, COUNT(v.id) AS total
		FROM premio p
		LEFT JOIN voto v ON v.premio_id = p.id
		GROUP BY p.id, p.nombre, p.estado
		ORDER BY total DESC, p.nombre ASC
		LIMIT 10
	`)
	if err != nil {
		slog.Error("failed to query top premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	top := []models.PremioTop{}
	for rows.Next() {
		var pt models.PremioTop
		if err := rows.Scan(&pt.PremioID, &pt.Nombre, &pt.Estado, &pt.TotalVotos); err != nil {
			slog.Error("failed to scan premio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		top = append(top, pt)
	}

	middleware.JSONResponse(w, http.StatusOK, top)
}
