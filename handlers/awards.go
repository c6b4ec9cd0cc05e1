package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

type AwardHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAwardHandler(db *sql.DB, cfg cliparse.Config) *AwardHandler {
	return &AwardHandler{db: db, cfg: cfg}
}

// nominadosDePremio loads an award's nominees, optionally with their linked
// users (needed by voting clients to grey out self-vote candidates).
func nominadosDePremio(db querier, premioID string, conVinculados bool) ([]models.Nominado, error) {
	rows, err := db.Query(`
		SELECT id, premio_id, nombre, descripcion, imagen_url, activo, fecha_creacion
		FROM nominado WHERE premio_id = $1 ORDER BY nombre
	`, premioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nominados := []models.Nominado{}
	for rows.Next() {
		var n models.Nominado
		if err := rows.Scan(&n.ID, &n.PremioID, &n.Nombre, &n.Descripcion,
			&n.ImagenURL, &n.Activo, &n.FechaCreacion); err != nil {
			return nil, err
		}
		nominados = append(nominados, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !conVinculados {
		return nominados, nil
	}

	for i := range nominados {
		vinculados, err := usuariosVinculados(db, nominados[i].ID)
		if err != nil {
			return nil, err
		}
		nominados[i].UsuariosVinculados = vinculados
	}
	return nominados, nil
}

func usuariosVinculados(db querier, nominadoID string) ([]models.Usuario, error) {
	rows, err := db.Query(`
		SELECT u.id, u.username, u.email, u.nombre, u.apellidos, u.foto_url,
		       u.descripcion, u.verificado, u.es_admin, u.fecha_registro
		FROM usuario u
		JOIN nominado_vinculo nv ON nv.usuario_id = u.id
		WHERE nv.nominado_id = $1
		ORDER BY u.username
	`, nominadoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usuarios := []models.Usuario{}
	for rows.Next() {
		var u models.Usuario
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Nombre, &u.Apellidos,
			&u.FotoURL, &u.Descripcion, &u.Verificado, &u.EsAdmin, &u.FechaRegistro); err != nil {
			return nil, err
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

func (h *AwardHandler) listPremios(w http.ResponseWriter, where string, args ...any) {
	rows, err := h.db.Query(`SELECT `+premioColumns+` FROM premio `+where+` ORDER BY nombre`, args...)
	if err != nil {
		slog.Error("failed to query premios", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	premios := []models.Premio{}
	for rows.Next() {
		var p models.Premio
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Tipo, &p.Slug, &p.Descripcion, &p.ImageURL,
			&p.Activo, &p.Estado, &p.RondaActual, &p.VinculosRequeridos,
			&p.GanadorOro, &p.GanadorPlata, &p.GanadorBronce,
			&p.FechaInicioRonda1, &p.FechaFinRonda1, &p.FechaInicioRonda2,
			&p.FechaFinRonda2, &p.FechaResultadosPub); err != nil {
			slog.Error("failed to scan premio", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		premios = append(premios, p)
	}

	resultado := []models.PremioConNominados{}
	for _, p := range premios {
		nominados, err := nominadosDePremio(h.db, p.ID, true)
		if err != nil {
			slog.Error("failed to load nominados", "error", err, "premio_id", p.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		resultado = append(resultado, models.PremioConNominados{Premio: p, Nominados: nominados})
	}

	middleware.JSONResponse(w, http.StatusOK, resultado)
}

// GetPremios handles GET /premios
// The public ballot: active awards that are open in one of the voting rounds.
func (h *AwardHandler) GetPremios(w http.ResponseWriter, r *http.Request) {
	h.listPremios(w, `WHERE activo = TRUE AND estado IN ($1, $2)`,
		models.EstadoVotacion1, models.EstadoVotacion2)
}

// GetPremiosTodos handles GET /premios/todos (admin)
func (h *AwardHandler) GetPremiosTodos(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}
	h.listPremios(w, ``)
}

// GetPremio handles GET /premios/{id}
func (h *AwardHandler) GetPremio(w http.ResponseWriter, r *http.Request) {
	premio, err := premioByID(h.db, r.PathValue("id"))
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Premio no encontrado.", models.CodePremioNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	nominados, err := nominadosDePremio(h.db, premio.ID, true)
	if err != nil {
		slog.Error("failed to load nominados", "error", err, "premio_id", premio.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PremioConNominados{Premio: premio, Nominados: nominados})
}

// CrearPremio handles POST /admin/premios
func (h *AwardHandler) CrearPremio(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	var req models.CrearPremioRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}
	if req.Nombre == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"El campo 'nombre' es obligatorio.", models.CodeValidationError)
		return
	}
	if req.Tipo == "" {
		req.Tipo = models.TipoDirecto
	}
	if req.Tipo != models.TipoDirecto && req.Tipo != models.TipoIndirecto {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"El campo 'tipo' debe ser 'directo' o 'indirecto'.", models.CodeValidationError)
		return
	}

	id := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO premio (id, nombre, tipo, slug, descripcion, image_url, activo, estado, ronda_actual, vinculos_requeridos)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, 1, $8)
	`, id, req.Nombre, req.Tipo, req.Slug, req.Descripcion, req.ImageURL,
		models.EstadoPreparacion, req.VinculosRequeridos)
	if err != nil {
		if uniqueViolation(err, "nombre") || uniqueViolation(err, "slug") {
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ya existe un premio con ese nombre o slug.", models.CodeConflict)
			return
		}
		slog.Error("failed to insert premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al crear el premio.", models.CodeDBError)
		return
	}

	premio, err := premioByID(h.db, id)
	if err != nil {
		slog.Error("failed to reload premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	slog.Info("premio created", "premio_id", id, "nombre", req.Nombre)
	middleware.JSONResponse(w, http.StatusCreated, premio)
}

// ActualizarPremio handles PUT /admin/premios/{id}
// Partial update: only the fields present in the body change. Phase and
// winners are off limits here, they have their own endpoints.
func (h *AwardHandler) ActualizarPremio(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	premioID := r.PathValue("id")
	var req models.ActualizarPremioRequest
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

	if req.Nombre != nil {
		premio.Nombre = *req.Nombre
	}
	if req.Tipo != nil {
		if *req.Tipo != models.TipoDirecto && *req.Tipo != models.TipoIndirecto {
			middleware.ErrorResponse(w, http.StatusBadRequest,
				"El campo 'tipo' debe ser 'directo' o 'indirecto'.", models.CodeValidationError)
			return
		}
		premio.Tipo = *req.Tipo
	}
	if req.Slug != nil {
		premio.Slug = req.Slug
	}
	if req.Descripcion != nil {
		premio.Descripcion = req.Descripcion
	}
	if req.ImageURL != nil {
		premio.ImageURL = req.ImageURL
	}
	if req.Activo != nil {
		premio.Activo = *req.Activo
	}
	if req.VinculosRequeridos != nil {
		premio.VinculosRequeridos = *req.VinculosRequeridos
	}

	_, err = h.db.Exec(`
		UPDATE premio
		SET nombre = $1, tipo = $2, slug = $3, descripcion = $4, image_url = $5,
		    activo = $6, vinculos_requeridos = $7
		WHERE id = $8
	`, premio.Nombre, premio.Tipo, premio.Slug, premio.Descripcion, premio.ImageURL,
		premio.Activo, premio.VinculosRequeridos, premioID)
	if err != nil {
		if uniqueViolation(err, "nombre") || uniqueViolation(err, "slug") {
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ya existe un premio con ese nombre o slug.", models.CodeConflict)
			return
		}
		slog.Error("failed to update premio", "error", err, "premio_id", premioID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al actualizar el premio.", models.CodeDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, premio)
}

// EliminarPremio handles DELETE /admin/premios/{id}
// Removes the award and everything hanging from it in one transaction.
func (h *AwardHandler) EliminarPremio(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	premioID := r.PathValue("id")
	if _, err := premioByID(h.db, premioID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Premio no encontrado.", models.CodePremioNotFound)
		return
	} else if err != nil {
		slog.Error("failed to query premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
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
		`DELETE FROM voto WHERE premio_id = $1`,
		`DELETE FROM nominado_vinculo WHERE nominado_id IN (SELECT id FROM nominado WHERE premio_id = $1)`,
		`DELETE FROM nominado WHERE premio_id = $1`,
		`DELETE FROM premio WHERE id = $1`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(q, premioID); err != nil {
			slog.Error("failed to delete premio", "error", err, "premio_id", premioID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el premio.", models.CodeDBError)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit premio deletion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el premio.", models.CodeDBError)
		return
	}

	slog.Info("premio deleted", "premio_id", premioID)
	w.WriteHeader(http.StatusNoContent)
}

// CrearNominado handles POST /admin/nominados
func (h *AwardHandler) CrearNominado(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	var req models.CrearNominadoRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}
	if req.Premio == "" || req.Nombre == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Los campos 'premio' y 'nombre' son obligatorios.", models.CodeValidationError)
		return
	}

	if _, err := premioByID(h.db, req.Premio); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Premio no encontrado.", models.CodePremioNotFound)
		return
	} else if err != nil {
		slog.Error("failed to query premio", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO nominado (id, premio_id, nombre, descripcion, imagen_url, activo, fecha_creacion)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
	`, id, req.Premio, req.Nombre, req.Descripcion, req.ImagenURL, time.Now())
	if err != nil {
		if uniqueViolation(err, "nombre") {
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ya existe un nominado con ese nombre en este premio.", models.CodeConflict)
			return
		}
		slog.Error("failed to insert nominado", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al crear el nominado.", models.CodeDBError)
		return
	}

	for _, usuarioID := range req.UsuariosVinculados {
		if _, err := tx.Exec(`
			INSERT INTO nominado_vinculo (nominado_id, usuario_id) VALUES ($1, $2)
		`, id, usuarioID); err != nil {
			slog.Error("failed to link usuario", "error", err, "usuario_id", usuarioID)
			middleware.ErrorResponse(w, http.StatusBadRequest,
				"Alguno de los usuarios vinculados no existe.", models.CodeValidationError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit nominado creation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al crear el nominado.", models.CodeDBError)
		return
	}

	nominado, err := nominadoByID(h.db, id)
	if err != nil {
		slog.Error("failed to reload nominado", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	nominado.UsuariosVinculados, err = usuariosVinculados(h.db, id)
	if err != nil {
		slog.Error("failed to load linked users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	slog.Info("nominado created", "nominado_id", id, "premio_id", req.Premio)
	middleware.JSONResponse(w, http.StatusCreated, nominado)
}

// ActualizarNominado handles PUT /admin/nominados/{id}
// When usuarios_vinculados comes in the body, the link set is replaced
// wholesale inside the transaction.
func (h *AwardHandler) ActualizarNominado(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	nominadoID := r.PathValue("id")
	var req models.ActualizarNominadoRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}

	nominado, err := nominadoByID(h.db, nominadoID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Nominado no encontrado.", models.CodeNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query nominado", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	if req.Nombre != nil {
		nominado.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		nominado.Descripcion = req.Descripcion
	}
	if req.ImagenURL != nil {
		nominado.ImagenURL = req.ImagenURL
	}
	if req.Activo != nil {
		nominado.Activo = *req.Activo
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE nominado SET nombre = $1, descripcion = $2, imagen_url = $3, activo = $4 WHERE id = $5
	`, nominado.Nombre, nominado.Descripcion, nominado.ImagenURL, nominado.Activo, nominadoID)
	if err != nil {
		if uniqueViolation(err, "nombre") {
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ya existe un nominado con ese nombre en este premio.", models.CodeConflict)
			return
		}
		slog.Error("failed to update nominado", "error", err, "nominado_id", nominadoID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al actualizar el nominado.", models.CodeDBError)
		return
	}

	if req.UsuariosVinculados != nil {
		if _, err := tx.Exec(`DELETE FROM nominado_vinculo WHERE nominado_id = $1`, nominadoID); err != nil {
			slog.Error("failed to clear links", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al actualizar el nominado.", models.CodeDBError)
			return
		}
		for _, usuarioID := range *req.UsuariosVinculados {
			if _, err := tx.Exec(`
				INSERT INTO nominado_vinculo (nominado_id, usuario_id) VALUES ($1, $2)
			`, nominadoID, usuarioID); err != nil {
				slog.Error("failed to link usuario", "error", err, "usuario_id", usuarioID)
				middleware.ErrorResponse(w, http.StatusBadRequest,
					"Alguno de los usuarios vinculados no existe.", models.CodeValidationError)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit nominado update", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al actualizar el nominado.", models.CodeDBError)
		return
	}

	nominado.UsuariosVinculados, err = usuariosVinculados(h.db, nominadoID)
	if err != nil {
		slog.Error("failed to load linked users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, nominado)
}

// EliminarNominado handles DELETE /admin/nominados/{id}
// Also clears any podium slot pointing at the nominee, since winner columns
// are not foreign keys.
func (h *AwardHandler) EliminarNominado(w http.ResponseWriter, r *http.Request) {
	if requireAdmin(h.db, w, r) == nil {
		return
	}

	nominadoID := r.PathValue("id")
	if _, err := nominadoByID(h.db, nominadoID); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Nominado no encontrado.", models.CodeNotFound)
		return
	} else if err != nil {
		slog.Error("failed to query nominado", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
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
		`DELETE FROM voto WHERE nominado_id = $1`,
		`DELETE FROM nominado_vinculo WHERE nominado_id = $1`,
		`UPDATE premio SET ganador_oro = NULL WHERE ganador_oro = $1`,
		`UPDATE premio SET ganador_plata = NULL WHERE ganador_plata = $1`,
		`UPDATE premio SET ganador_bronce = NULL WHERE ganador_bronce = $1`,
		`DELETE FROM nominado WHERE id = $1`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(q, nominadoID); err != nil {
			slog.Error("failed to delete nominado", "error", err, "nominado_id", nominadoID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el nominado.", models.CodeDBError)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit nominado deletion", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el nominado.", models.CodeDBError)
		return
	}

	slog.Info("nominado deleted", "nominado_id", nominadoID)
	w.WriteHeader(http.StatusNoContent)
}
