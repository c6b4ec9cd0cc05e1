package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThePeem/gala-premios-backend/models"
	"github.com/ThePeem/gala-premios-backend/testutil"
)

func TestRegistroAndLogin(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewUserHandler(conn, testutil.GetTestConfig())

	w := httptest.NewRecorder()
	h.Registro(w, testutil.MakeRequest("POST", "/auth/registro", models.RegistroRequest{
		Username:  "nuevo",
		Email:     "nuevo@test.local",
		Nombre:    "Nuevo",
		Apellidos: "Usuario",
		Password:  "supersecreta",
		Password2: "supersecreta",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var user models.Usuario
	testutil.AssertJSON(t, w, &user)
	if user.Verificado {
		t.Error("New accounts must start unverified")
	}
	if user.EsAdmin {
		t.Error("New accounts must not be admin")
	}

	w = httptest.NewRecorder()
	h.Login(w, testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Username: "nuevo",
		Password: "supersecreta",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var login models.LoginResponse
	testutil.AssertJSON(t, w, &login)
	if login.Token == "" {
		t.Error("Expected a token")
	}

	// El token recien emitido autentica.
	w = httptest.NewRecorder()
	h.GetMiPerfil(w, testutil.MakeRequest("GET", "/mi-perfil", nil, testutil.AuthHeader(login.Token)))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestRegistroValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewUserHandler(conn, testutil.GetTestConfig())

	tests := []struct {
		name string
		req  models.RegistroRequest
	}{
		{"missing username", models.RegistroRequest{Email: "a@b.c", Password: "12345678", Password2: "12345678"}},
		{"password mismatch", models.RegistroRequest{Username: "u", Email: "a@b.c", Password: "12345678", Password2: "87654321"}},
		{"short password", models.RegistroRequest{Username: "u", Email: "a@b.c", Password: "corta", Password2: "corta"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Registro(w, testutil.MakeRequest("POST", "/auth/registro", tt.req, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
			testutil.AssertErrorCode(t, w, models.CodeValidationError)
		})
	}
}

func TestRegistroDuplicateUsername(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewUserHandler(conn, testutil.GetTestConfig())

	testutil.CreateTestUser(t, conn, "repetido", true, false)

	w := httptest.NewRecorder()
	h.Registro(w, testutil.MakeRequest("POST", "/auth/registro", models.RegistroRequest{
		Username:  "repetido",
		Email:     "otro@test.local",
		Password:  "supersecreta",
		Password2: "supersecreta",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusConflict)
	testutil.AssertErrorCode(t, w, models.CodeConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewUserHandler(conn, testutil.GetTestConfig())

	testutil.CreateTestUser(t, conn, "victima", true, false)

	w := httptest.NewRecorder()
	h.Login(w, testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{
		Username: "victima",
		Password: "incorrecta",
	}, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, w, models.CodeNotAuthenticated)
}

func TestActualizarMiPerfil(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewUserHandler(conn, testutil.GetTestConfig())

	_, token := testutil.CreateTestUser(t, conn, "perfil", true, false)

	nombre := "Nombre Nuevo"
	descripcion := "hola"
	w := httptest.NewRecorder()
	h.ActualizarMiPerfil(w, testutil.MakeRequest("PUT", "/mi-perfil", models.ActualizarPerfilRequest{
		Nombre:      &nombre,
		Descripcion: &descripcion,
	}, testutil.AuthHeader(token)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var user models.Usuario
	testutil.AssertJSON(t, w, &user)
	if user.Nombre != nombre {
		t.Errorf("Expected nombre updated, got %q", user.Nombre)
	}
	if user.Descripcion == nil || *user.Descripcion != descripcion {
		t.Error("Expected descripcion updated")
	}
}

func TestParticipantesOnlyVerified(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewUserHandler(conn, testutil.GetTestConfig())

	testutil.CreateTestUser(t, conn, "verificada", true, false)
	testutil.CreateTestUser(t, conn, "pendiente", false, false)

	w := httptest.NewRecorder()
	h.Participantes(w, testutil.MakeRequest("GET", "/participantes", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var participantes []models.Usuario
	testutil.AssertJSON(t, w, &participantes)
	if len(participantes) != 1 {
		t.Fatalf("Expected 1 participante, got %d", len(participantes))
	}
	if participantes[0].Username != "verificada" {
		t.Errorf("Expected only the verified user, got %s", participantes[0].Username)
	}
}

func TestMisNominaciones(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewUserHandler(conn, testutil.GetTestConfig())

	userID, token := testutil.CreateTestUser(t, conn, "nominada", true, false)
	premioID := testutil.CreateTestPremio(t, conn, "Mejor Momento", models.EstadoVotacion1, 1)
	testutil.CreateTestNominado(t, conn, premioID, "Mi nominacion", userID)
	testutil.CreateTestNominado(t, conn, premioID, "Otra nominacion")

	w := httptest.NewRecorder()
	h.MisNominaciones(w, testutil.MakeRequest("GET", "/mis-nominaciones", nil, testutil.AuthHeader(token)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var nominaciones []models.Nominado
	testutil.AssertJSON(t, w, &nominaciones)
	if len(nominaciones) != 1 {
		t.Fatalf("Expected 1 nominacion, got %d", len(nominaciones))
	}
	if nominaciones[0].Nombre != "Mi nominacion" {
		t.Errorf("Expected only the linked nominacion, got %s", nominaciones[0].Nombre)
	}
}

func TestMisEstadisticasCountsMedals(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	userHandler := NewUserHandler(conn, testutil.GetTestConfig())
	resultsHandler := NewResultsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)
	userID, token := testutil.CreateTestUser(t, conn, "estrella", true, false)

	premioID := testutil.CreateTestPremio(t, conn, "Mejor Momento", models.EstadoVotacion2, 2)
	ganador := testutil.CreateTestNominado(t, conn, premioID, "La estrella", userID)

	v1, _ := testutil.CreateTestUser(t, conn, "votante1", true, false)
	testutil.CastTestVote(t, conn, v1, premioID, ganador, 2, intPtr(1))

	w := httptest.NewRecorder()
	resultsHandler.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{PremioID: premioID}, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	userHandler.MisEstadisticas(w, testutil.MakeRequest("GET", "/mis-estadisticas", nil, testutil.AuthHeader(token)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var stats models.MisEstadisticasResponse
	testutil.AssertJSON(t, w, &stats)
	if stats.TotalNominaciones != 1 {
		t.Errorf("Expected 1 nominacion, got %d", stats.TotalNominaciones)
	}
	if stats.TotalVotosRecibidos != 1 {
		t.Errorf("Expected 1 received vote, got %d", stats.TotalVotosRecibidos)
	}
	if stats.Oros != 1 {
		t.Errorf("Expected 1 gold medal, got %d", stats.Oros)
	}
}
