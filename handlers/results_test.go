package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThePeem/gala-premios-backend/models"
	"github.com/ThePeem/gala-premios-backend/testutil"
)

func TestPublicarResultadosSingle(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewResultsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)
	premioID := testutil.CreateTestPremio(t, conn, "Mejor Momento", models.EstadoVotacion2, 2)
	nomA := testutil.CreateTestNominado(t, conn, premioID, "Alfa")
	nomB := testutil.CreateTestNominado(t, conn, premioID, "Beta")
	nomC := testutil.CreateTestNominado(t, conn, premioID, "Gamma")

	v1, _ := testutil.CreateTestUser(t, conn, "votante1", true, false)
	testutil.CastTestVote(t, conn, v1, premioID, nomA, 2, intPtr(1))
	testutil.CastTestVote(t, conn, v1, premioID, nomB, 2, intPtr(2))
	testutil.CastTestVote(t, conn, v1, premioID, nomC, 2, intPtr(3))

	w := httptest.NewRecorder()
	h.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{PremioID: premioID}, testutil.AuthHeader(adminToken)))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.PublicarResultadosResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Premios) != 1 {
		t.Fatalf("Expected 1 published premio, got %d", len(resp.Premios))
	}
	if resp.Premios[0].Ganadores.Oro == nil || resp.Premios[0].Ganadores.Oro.ID != nomA {
		t.Error("Expected Alfa as gold winner")
	}

	// La publicacion persiste podio, fecha y estado final.
	var estado string
	var oro *string
	var fechaPub interface{}
	err := conn.QueryRow(`
		SELECT estado, ganador_oro, fecha_resultados_publicados FROM premio WHERE id = $1
	`, premioID).Scan(&estado, &oro, &fechaPub)
	if err != nil {
		t.Fatalf("Failed to query premio: %v", err)
	}
	if estado != models.EstadoFinalizado {
		t.Errorf("Expected estado finalizado, got %s", estado)
	}
	if oro == nil || *oro != nomA {
		t.Error("Expected ganador_oro persisted")
	}
	if fechaPub == nil {
		t.Error("Expected fecha_resultados_publicados set")
	}
}

func TestPublicarResultadosIdempotenceGuard(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewResultsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)
	premioID := testutil.CreateTestPremio(t, conn, "Mejor Momento", models.EstadoVotacion2, 2)
	nomA := testutil.CreateTestNominado(t, conn, premioID, "Alfa")
	v1, _ := testutil.CreateTestUser(t, conn, "votante1", true, false)
	testutil.CastTestVote(t, conn, v1, premioID, nomA, 2, intPtr(1))

	w := httptest.NewRecorder()
	h.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{PremioID: premioID}, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Segunda publicacion del mismo premio: rechazada, los ganadores son
	// inmutables.
	w = httptest.NewRecorder()
	h.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{PremioID: premioID}, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	testutil.AssertErrorCode(t, w, models.CodeResultsAlreadyPublished)
}

func TestPublicarResultadosBulkSkipsPublished(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewResultsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)

	publicado := testutil.CreateTestPremio(t, conn, "Ya Publicado", models.EstadoVotacion2, 2)
	nomPub := testutil.CreateTestNominado(t, conn, publicado, "Alfa")
	pendiente := testutil.CreateTestPremio(t, conn, "Pendiente", models.EstadoVotacion2, 2)
	testutil.CreateTestNominado(t, conn, pendiente, "Beta")

	v1, _ := testutil.CreateTestUser(t, conn, "votante1", true, false)
	testutil.CastTestVote(t, conn, v1, publicado, nomPub, 2, intPtr(1))

	w := httptest.NewRecorder()
	h.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{PremioID: publicado}, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Publicacion masiva: solo toca el pendiente.
	w = httptest.NewRecorder()
	h.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{}, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PublicarResultadosResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Premios) != 1 {
		t.Fatalf("Expected 1 premio in bulk publication, got %d", len(resp.Premios))
	}
	if resp.Premios[0].PremioID != pendiente {
		t.Errorf("Expected only the pending premio, got %s", resp.Premios[0].PremioID)
	}
}

func TestPublicarResultadosRequiresAdmin(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewResultsHandler(conn, testutil.GetTestConfig())

	_, token := testutil.CreateTestUser(t, conn, "normal", true, false)

	w := httptest.NewRecorder()
	h.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{}, testutil.AuthHeader(token)))
	testutil.AssertStatus(t, w, http.StatusForbidden)
	testutil.AssertErrorCode(t, w, models.CodeAdminRequired)
}

func TestResultadosPublicosOnlyShowsPublished(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewResultsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)

	publicado := testutil.CreateTestPremio(t, conn, "Publicado", models.EstadoVotacion2, 2)
	nomPub := testutil.CreateTestNominado(t, conn, publicado, "Alfa")
	testutil.CreateTestPremio(t, conn, "Sin Publicar", models.EstadoVotacion2, 2)

	v1, _ := testutil.CreateTestUser(t, conn, "votante1", true, false)
	testutil.CastTestVote(t, conn, v1, publicado, nomPub, 2, intPtr(1))

	w := httptest.NewRecorder()
	h.PublicarResultados(w, testutil.MakeRequest("POST", "/resultados",
		models.PublicarResultadosRequest{PremioID: publicado}, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	// Endpoint publico, sin credenciales.
	w = httptest.NewRecorder()
	h.ResultadosPublicos(w, testutil.MakeRequest("GET", "/resultados-publicos", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp []models.ResultadoPremio
	testutil.AssertJSON(t, w, &resp)
	if len(resp) != 1 {
		t.Fatalf("Expected 1 public result, got %d", len(resp))
	}
	if resp[0].PremioID != publicado {
		t.Errorf("Expected only the published premio, got %s", resp[0].PremioID)
	}
}

func TestGetResultadosDoesNotWrite(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewResultsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)
	premioID := testutil.CreateTestPremio(t, conn, "Mejor Momento", models.EstadoVotacion2, 2)
	nomA := testutil.CreateTestNominado(t, conn, premioID, "Alfa")
	v1, _ := testutil.CreateTestUser(t, conn, "votante1", true, false)
	testutil.CastTestVote(t, conn, v1, premioID, nomA, 2, intPtr(1))

	w := httptest.NewRecorder()
	h.GetResultados(w, testutil.MakeRequest("GET", "/resultados", nil, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	// La vista previa no publica nada.
	var estado string
	var oro *string
	if err := conn.QueryRow(`SELECT estado, ganador_oro FROM premio WHERE id = $1`, premioID).Scan(&estado, &oro); err != nil {
		t.Fatalf("Failed to query premio: %v", err)
	}
	if estado != models.EstadoVotacion2 {
		t.Errorf("Expected estado unchanged, got %s", estado)
	}
	if oro != nil {
		t.Error("Expected no winner persisted by the preview")
	}
}
