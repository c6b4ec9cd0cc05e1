package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThePeem/gala-premios-backend/auth"
	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/middleware"
	"github.com/ThePeem/gala-premios-backend/models"
)

type UserHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// Registro handles POST /auth/registro
// New accounts start unverified: they can log in and browse, but the voting
// gate stays closed until an admin flips verificado.
func (h *UserHandler) Registro(w http.ResponseWriter, r *http.Request) {
	var req models.RegistroRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Los campos 'username', 'email' y 'password' son obligatorios.", models.CodeValidationError)
		return
	}
	if req.Password != req.Password2 {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Las contraseñas no coinciden.", models.CodeValidationError)
		return
	}
	if len(req.Password) < 8 {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"La contraseña debe tener al menos 8 caracteres.", models.CodeValidationError)
		return
	}

	id := uuid.NewString()
	hash := auth.HashPassword(req.Password, h.cfg.PasswordSalt)

	_, err := h.db.Exec(`
		INSERT INTO usuario (id, username, email, password_hash, nombre, apellidos, verificado, es_admin, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE, $7)
	`, id, req.Username, req.Email, hash, req.Nombre, req.Apellidos, time.Now())
	if err != nil {
		if uniqueViolation(err, "username") {
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ese nombre de usuario ya está en uso.", models.CodeConflict)
			return
		}
		if uniqueViolation(err, "email") {
			middleware.ErrorResponse(w, http.StatusConflict,
				"Ese email ya está registrado.", models.CodeConflict)
			return
		}
		slog.Error("failed to insert usuario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al registrar el usuario.", models.CodeDBError)
		return
	}

	user, err := scanUsuario(h.db.QueryRow(`SELECT `+usuarioColumns+` FROM usuario WHERE id = $1`, id))
	if err != nil {
		slog.Error("failed to reload usuario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	slog.Info("usuario registered", "usuario_id", id, "username", req.Username)
	middleware.JSONResponse(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
	}

	var storedHash string
	var user models.Usuario
	err := h.db.QueryRow(`
		SELECT id, username, email, nombre, apellidos, foto_url, descripcion,
		       verificado, es_admin, fecha_registro, password_hash
		FROM usuario WHERE username = $1
	`, req.Username).Scan(&user.ID, &user.Username, &user.Email, &user.Nombre, &user.Apellidos,
		&user.FotoURL, &user.Descripcion, &user.Verificado, &user.EsAdmin,
		&user.FechaRegistro, &storedHash)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized,
			"Usuario o contraseña incorrectos.", models.CodeNotAuthenticated)
		return
	}
	if err != nil {
		slog.Error("failed to query usuario", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	if err := auth.VerifyPassword(req.Password, h.cfg.PasswordSalt, storedHash); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized,
			"Usuario o contraseña incorrectos.", models.CodeNotAuthenticated)
		return
	}

	token, err := auth.GenerateToken()
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al iniciar sesión.", models.CodeDBError)
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO token_acceso (token, usuario_id, fecha_creacion) VALUES ($1, $2, $3)
	`, token, user.ID, time.Now())
	if err != nil {
		slog.Error("failed to store token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al iniciar sesión.", models.CodeDBError)
		return
	}

	slog.Info("usuario logged in", "usuario_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Token: token, Usuario: user})
}

// GetMiPerfil handles GET /mi-perfil
func (h *UserHandler) GetMiPerfil(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// ActualizarMiPerfil handles PUT /mi-perfil
// Identity and permission fields (username, email, verificado, es_admin)
// never change through this endpoint.
func (h *UserHandler) ActualizarMiPerfil(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}

	var req models.ActualizarPerfilRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.", models.CodeInvalidJSON)
		return
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

	_, err := h.db.Exec(`
		UPDATE usuario SET nombre = $1, apellidos = $2, foto_url = $3, descripcion = $4 WHERE id = $5
	`, user.Nombre, user.Apellidos, user.FotoURL, user.Descripcion, user.ID)
	if err != nil {
		slog.Error("failed to update perfil", "error", err, "usuario_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error al actualizar el perfil.", models.CodeDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// Participantes handles GET /participantes
// Public directory of verified users, used to pick linked users for indirect
// awards.
func (h *UserHandler) Participantes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT ` + usuarioColumns + ` FROM usuario WHERE verificado = TRUE ORDER BY username
	`)
	if err != nil {
		slog.Error("failed to query participantes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	participantes := []models.Usuario{}
	for rows.Next() {
		var u models.Usuario
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Nombre, &u.Apellidos,
			&u.FotoURL, &u.Descripcion, &u.Verificado, &u.EsAdmin, &u.FechaRegistro); err != nil {
			slog.Error("failed to scan usuario", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		participantes = append(participantes, u)
	}

	middleware.JSONResponse(w, http.StatusOK, participantes)
}

// MisNominaciones handles GET /mis-nominaciones
// The nominees the caller is linked to, grouped with their award.
func (h *UserHandler) MisNominaciones(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}

	rows, err := h.db.Query(`
		SELECT n.id, n.premio_id, n.nombre, n.descripcion, n.imagen_url, n.activo, n.fecha_creacion
		FROM nominado n
		JOIN nominado_vinculo nv ON nv.nominado_id = n.id
		WHERE nv.usuario_id = $1
		ORDER BY n.nombre
	`, user.ID)
	if err != nil {
		slog.Error("failed to query nominaciones", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}
	defer rows.Close()

	nominaciones := []models.Nominado{}
	for rows.Next() {
		var n models.Nominado
		if err := rows.Scan(&n.ID, &n.PremioID, &n.Nombre, &n.Descripcion,
			&n.ImagenURL, &n.Activo, &n.FechaCreacion); err != nil {
			slog.Error("failed to scan nominado", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
			return
		}
		nominaciones = append(nominaciones, n)
	}

	middleware.JSONResponse(w, http.StatusOK, nominaciones)
}

// MisEstadisticas handles GET /mis-estadisticas
// Personal medal count and received-vote totals. Medal and round-2 detail only
// shows once the gala reaches the phase that makes them public.
func (h *UserHandler) MisEstadisticas(w http.ResponseWriter, r *http.Request) {
	user := requireUser(h.db, w, r)
	if user == nil {
		return
	}

	var stats models.MisEstadisticasResponse

	err := h.db.QueryRow(`
		SELECT COUNT(*) FROM nominado_vinculo WHERE usuario_id = $1
	`, user.ID).Scan(&stats.TotalNominaciones)
	if err != nil {
		slog.Error("failed to count nominaciones", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	err = h.db.QueryRow(`
		SELECT COUNT(*)
		FROM voto v
		JOIN nominado_vinculo nv ON nv.nominado_id = v.nominado_id
		WHERE nv.usuario_id = $1
	`, user.ID).Scan(&stats.TotalVotosRecibidos)
	if err != nil {
		slog.Error("failed to count received votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error de base de datos.", models.CodeDBError)
		return
	}

	// Medallas: premios publicados cuyo ganador está vinculado al usuario.
	medalQueries := []struct {
		column string
		out    *int
	}{
		{"ganador_oro", &stats.Oros},
		{"ganador_plata", &stats.Platas},
		{"ganador_bronce", &stats.Bronces},
	}
	for _, mq := range medalQueries {
		err = h.db.QueryRow(`
			SELECT COUNT(*)
			FROM premio p
			JOIN nominado_vinculo nv ON nv.nominado_id = p.`+mq.column+`
			WHERE nv.usuario_id = $1 AND p.fecha_resultados_publicados IS NOT NULL
		`, user.ID).Scan(mq.out)
		if err != nil {
			slog.Error("failed to count medals", "error", err, "column", mq.column)
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
	stats.Fase = models.FaseFlags{
		MostrarMedallas: fase == models.EstadoFinalizado,
		MostrarRonda2:   fase == models.EstadoVotacion2 || fase == models.EstadoFinalizado,
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}
