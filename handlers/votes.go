package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ThePeem/gala-premios-backend/auth"
	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// Votar handles POST /votar
// Admission is single-attempt: either exactly one vote row is created or the
// caller gets a tagged rejection and nothing is written.
func (h *VotingHandler) Votar(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}

	var req models.VotarRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}
	if req.Premio == "" || req.Nominado == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Los campos 'premio' y 'nominado' son obligatorios.", models.CodeValidationError)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	in := AdmissionInput{
		UsuarioVerificado: user.Verificado,
		Ronda:             req.Ronda,
		OrdenRonda2:       req.OrdenRonda2,
	}

	// Snapshot del premio
	err = tx.QueryRow(`
		SELECT id, activo, estado, ronda_actual FROM premio WHERE id = $1
	`, req.Premio).Scan(&in.PremioID, &in.PremioActivo, &in.PremioEstado, &in.PremioRondaActual)
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	in.PremioEncontrado = err == nil

	// Snapshot del nominado
	err = tx.QueryRow(`
		SELECT premio_id FROM nominado WHERE id = $1
	`, req.Nominado).Scan(&in.NominadoPremioID)
	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query nominado", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	in.NominadoEncontrado = err == nil

	if in.NominadoEncontrado {
		err = tx.QueryRow(`
			SELECT EXISTS(
				SELECT 1 FROM nominado_vinculo
				WHERE nominado_id = $1 AND usuario_id = $2
			)
		`, req.Nominado, user.ID).Scan(&in.VinculadoAlUsuario)
		if err != nil {
			slog.Error("failed to query nominado links", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
	}

	// Votos ya emitidos por este usuario en (premio, ronda)
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM voto
		WHERE usuario_id = $1 AND premio_id = $2 AND ronda = $3
	`, user.ID, req.Premio, req.Ronda).Scan(&in.VotosEmitidos)
	if err != nil {
		slog.Error("failed to count votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	err = tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM voto
			WHERE usuario_id = $1 AND premio_id = $2 AND ronda = $3 AND nominado_id = $4
		)
	`, user.ID, req.Premio, req.Ronda, req.Nominado).Scan(&in.NominadoYaVotado)
	if err != nil {
		slog.Error("failed to check nominado votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	if req.Ronda == 2 && req.OrdenRonda2 != nil {
		err = tx.QueryRow(`
			SELECT EXISTS(
				SELECT 1 FROM voto
				WHERE usuario_id = $1 AND premio_id = $2 AND ronda = $3 AND orden_ronda2 = $4
			)
		`, user.ID, req.Premio, req.Ronda, *req.OrdenRonda2).Scan(&in.OrdenYaUsado)
		if err != nil {
			slog.Error("failed to check used positions", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
	}

	if rej := EvaluateVote(in); rej != nil {
		middleware.ErrorResponse(w, rej.Status, rej.Detail, rej.Code)
		return
	}

	votoID := uuid.NewString()
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.PasswordSalt)
	userAgent := r.UserAgent()

	_, err = tx.Exec(`
		INSERT INTO voto (id, usuario_id, premio_id, nominado_id, ronda, orden_ronda2, fecha_voto, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, votoID, user.ID, req.Premio, req.Nominado, req.Ronda, req.OrdenRonda2, time.Now(), ipHash, userAgent)

	if err != nil {
		// Un duplicado concurrente pierde contra la restricción de unicidad
		// del ledger, nunca produce una segunda fila.
		if uniqueViolation(err, "orden") {
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ya has usado esa posición para este premio en la Ronda 2.",
				models.CodePositionAlreadyUsed)
			return
		}
		if uniqueViolation(err, "nominado") {
			code := models.CodeAlreadyVotedNominadoR1
			if req.Ronda == 2 {
				code = models.CodeAlreadyVotedNominadoR2
			}
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ya has votado por este nominado en esta ronda.", code)
			return
		}
		slog.Error("failed to insert vote", "error", err, "premio_id", req.Premio)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al registrar el voto.", models.CodeDBError)
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al registrar el voto.", models.CodeDBError)
		return
	}

	slog.Info("vote admitted",
		"voto_id", votoID,
		"premio_id", req.Premio,
		"ronda", req.Ronda,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.VotarResponse{
		Message: "Voto registrado con éxito.",
		VotoID:  votoID,
	})
}

// VerificarVoto handles GET /premios/{id}/verificar-voto
// Tells the caller whether they already voted in the award's live round.
func (h *VotingHandler) VerificarVoto(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}

	premioID := r.PathValue("id")
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

	var yaVoto bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM voto
			WHERE usuario_id = $1 AND premio_id = $2 AND ronda = $3
		)
	`, user.ID, premio.ID, premio.RondaActual).Scan(&yaVoto)
	if err != nil {
		slog.Error("failed to check existing votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	limite := models.MaxVotosRonda1
	if premio.RondaActual == 2 {
		limite = models.MaxVotosRonda2
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerificarVotoResponse{
		YaVoto:       yaVoto,
		RondaActual:  premio.RondaActual,
		EstadoPremio: premio.Estado,
		LimiteVotos:  limite,
	})
}

// MisVotos handles GET /mis-votos
// Groups the caller's ballots by award and round.
func (h *VotingHandler) MisVotos(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}

	rows, err := h.db.Query(`
		SELECT v.id, v.premio_id, p.nombre, n.nombre, v.ronda, v.orden_ronda2, v.fecha_voto
		FROM voto v
		JOIN premio p ON p.id = v.premio_id
		JOIN nominado n ON n.id = v.nominado_id
		WHERE v.usuario_id = $1
		ORDER BY p.nombre, v.fecha_voto
	`, user.ID)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	resultados := []models.MisVotosPremio{}
	index := map[string]int{}
	for rows.Next() {
		var (
			votoID, premioID, premioNombre, nominadoNombre string
			ronda                                          int
			orden                                          *int
			fecha                                          time.Time
		)
		if err := rows.Scan(&votoID, &premioID, &premioNombre, &nominadoNombre, &ronda, &orden, &fecha); err != nil {
			slog.Error("failed to scan vote", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}

		i, ok := index[premioID]
		if !ok {
			i = len(resultados)
			index[premioID] = i
			resultados = append(resultados, models.MisVotosPremio{
				PremioID:     premioID,
				PremioNombre: premioNombre,
				Ronda1:       []models.VotoResumen{},
				Ronda2:       []models.VotoResumen{},
			})
		}

		resumen := models.VotoResumen{
			ID:       votoID,
			Nominado: nominadoNombre,
			Fecha:    fecha.Format(time.RFC3339),
			Orden:    orden,
		}
		if ronda == 1 {
			resultados[i].Ronda1 = append(resultados[i].Ronda1, resumen)
		} else {
			resultados[i].Ronda2 = append(resultados[i].Ronda2, resumen)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resultados)
}
