package router

import (
	"database/sql"
	"net/http"

	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/handlers"
	"github.com/ThePeem/gala-premios-backend/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	awardHandler := handlers.NewAwardHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	phaseHandler := handlers.NewPhaseHandler(db, cfg)
	statsHandler := handlers.NewStatsHandler(db, cfg)
	suggestionHandler := handlers.NewSuggestionHandler(db, cfg)
	adminUserHandler := handlers.NewAdminUserHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /auth/registro", middleware.WithLogging(userHandler.Registro))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(userHandler.Login))

	// Public catalogue
	mux.HandleFunc("GET /premios", middleware.WithLogging(awardHandler.GetPremios))
	mux.HandleFunc("GET /premios/todos", middleware.WithLogging(awardHandler.GetPremiosTodos))
	mux.HandleFunc("GET /premios/{id}", middleware.WithLogging(awardHandler.GetPremio))
	mux.HandleFunc("GET /participantes", middleware.WithLogging(userHandler.Participantes))
	mux.HandleFunc("GET /resultados-publicos", middleware.WithLogging(resultsHandler.ResultadosPublicos))

	// Voting (authenticated)
	mux.HandleFunc("POST /votar", middleware.WithLogging(votingHandler.Votar))
	mux.HandleFunc("GET /premios/{id}/verificar-voto", middleware.WithLogging(votingHandler.VerificarVoto))
	mux.HandleFunc("GET /mis-votos", middleware.WithLogging(votingHandler.MisVotos))

	// Profile and personal data
	mux.HandleFunc("GET /mi-perfil", middleware.WithLogging(userHandler.GetMiPerfil))
	mux.HandleFunc("PUT /mi-perfil", middleware.WithLogging(userHandler.ActualizarMiPerfil))
	mux.HandleFunc("GET /mis-nominaciones", middleware.WithLogging(userHandler.MisNominaciones))
	mux.HandleFunc("GET /mis-estadisticas", middleware.WithLogging(userHandler.MisEstadisticas))

	// Suggestions
	mux.HandleFunc("POST /sugerencias", middleware.WithLogging(suggestionHandler.CrearSugerencia))
	mux.HandleFunc("GET /sugerencias", middleware.WithLogging(suggestionHandler.MisSugerencias))

	// Results (admin)
	mux.HandleFunc("GET /resultados", middleware.WithLogging(resultsHandler.GetResultados))
	mux.HandleFunc("POST /resultados", middleware.WithLogging(resultsHandler.PublicarResultados))

	// Gala control (admin)
	mux.HandleFunc("POST /admin/avanzar-fase", middleware.WithLogging(phaseHandler.AvanzarFase))
	mux.HandleFunc("POST /admin/reset-gala", middleware.WithLogging(phaseHandler.ResetGala))
	mux.HandleFunc("POST /admin/premios/{id}/cambiar-estado", middleware.WithLogging(phaseHandler.CambiarEstadoPremio))

	// Award management (admin)
	mux.HandleFunc("POST /admin/premios", middleware.WithLogging(awardHandler.CrearPremio))
	mux.HandleFunc("PUT /admin/premios/{id}", middleware.WithLogging(awardHandler.ActualizarPremio))
	mux.HandleFunc("DELETE /admin/premios/{id}", middleware.WithLogging(awardHandler.EliminarPremio))
	mux.HandleFunc("POST /admin/nominados", middleware.WithLogging(awardHandler.CrearNominado))
	mux.HandleFunc("PUT /admin/nominados/{id}", middleware.WithLogging(awardHandler.ActualizarNominado))
	mux.HandleFunc("DELETE /admin/nominados/{id}", middleware.WithLogging(awardHandler.EliminarNominado))

	// User management (admin)
	mux.HandleFunc("GET /admin/usuarios", middleware.WithLogging(adminUserHandler.ListUsuarios))
	mux.HandleFunc("GET /admin/usuarios/{id}", middleware.WithLogging(adminUserHandler.GetUsuario))
	mux.HandleFunc("PUT /admin/usuarios/{id}", middleware.WithLogging(adminUserHandler.ActualizarUsuario))
	mux.HandleFunc("DELETE /admin/usuarios/{id}", middleware.WithLogging(adminUserHandler.EliminarUsuario))

	// Dashboard (admin)
	mux.HandleFunc("GET /admin/estadisticas", middleware.WithLogging(statsHandler.Estadisticas))
	mux.HandleFunc("GET /admin/premios-top", middleware.WithLogging(statsHandler.PremiosTop))
	mux.HandleFunc("GET /admin/sugerencias", middleware.WithLogging(suggestionHandler.ListSugerencias))
	mux.HandleFunc("PUT /admin/sugerencias/{id}", middleware.WithLogging(suggestionHandler.RevisarSugerencia))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("gala-premios API v1"))
	})

	return mux
}
