package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThePeem/gala-premios-backend/models"
	"github.com/ThePeem/gala-premios-backend/testutil"
)

func TestGalaPhaseProjection(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	// Sin premios: preparacion.
	fase, err := galaPhase(conn)
	if err != nil {
		t.Fatalf("galaPhase failed: %v", err)
	}
	if fase != models.EstadoPreparacion {
		t.Errorf("Expected preparacion with no premios, got %s", fase)
	}

	// El premio menos avanzado manda.
	testutil.CreateTestPremio(t, conn, "Adelantado", models.EstadoVotacion2, 2)
	rezagado := testutil.CreateTestPremio(t, conn, "Rezagado", models.EstadoVotacion1, 1)

	fase, err = galaPhase(conn)
	if err != nil {
		t.Fatalf("galaPhase failed: %v", err)
	}
	if fase != models.EstadoVotacion1 {
		t.Errorf("Expected votacion_1, got %s", fase)
	}

	// Los premios inactivos no cuentan.
	if _, err := conn.Exec(`UPDATE premio SET activo = FALSE WHERE id = $1`, rezagado); err != nil {
		t.Fatalf("Failed to deactivate premio: %v", err)
	}
	fase, err = galaPhase(conn)
	if err != nil {
		t.Fatalf("galaPhase failed: %v", err)
	}
	if fase != models.EstadoVotacion2 {
		t.Errorf("Expected votacion_2 after deactivation, got %s", fase)
	}
}

func TestEstadisticas(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewStatsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)
	userID, _ := testutil.CreateTestUser(t, conn, "votante", true, false)

	premioID := testutil.CreateTestPremio(t, conn, "Mejor Momento", models.EstadoVotacion1, 1)
	nomA := testutil.CreateTestNominado(t, conn, premioID, "Nominado A")
	nomB := testutil.CreateTestNominado(t, conn, premioID, "Nominado B")
	testutil.CastTestVote(t, conn, userID, premioID, nomA, 1, nil)
	testutil.CastTestVote(t, conn, userID, premioID, nomB, 1, nil)

	w := httptest.NewRecorder()
	h.Estadisticas(w, testutil.MakeRequest("GET", "/admin/estadisticas", nil, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.EstadisticasResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.TotalUsuarios != 2 {
		t.Errorf("Expected 2 usuarios, got %d", resp.TotalUsuarios)
	}
	if resp.TotalVotos != 2 {
		t.Errorf("Expected 2 votos, got %d", resp.TotalVotos)
	}
	if resp.VotosPorRonda["1"] != 2 || resp.VotosPorRonda["2"] != 0 {
		t.Errorf("Unexpected votos_por_ronda: %v", resp.VotosPorRonda)
	}
	if resp.PremiosPorEstado[models.EstadoVotacion1] != 1 {
		t.Errorf("Unexpected premios_por_estado: %v", resp.PremiosPorEstado)
	}
	if len(resp.UltimosVotos) != 2 {
		t.Fatalf("Expected 2 latest votes, got %d", len(resp.UltimosVotos))
	}
	if resp.UltimosVotos[0].Hace == "" {
		t.Error("Expected a relative timestamp in 'hace'")
	}
	if len(resp.UsuariosActivos) != 1 || resp.UsuariosActivos[0].TotalVotos != 2 {
		t.Errorf("Unexpected usuarios_activos: %v", resp.UsuariosActivos)
	}
}

func TestPremiosTop(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	h := NewStatsHandler(conn, testutil.GetTestConfig())

	_, adminToken := testutil.CreateTestUser(t, conn, "admin", true, true)
	userID, _ := testutil.CreateTestUser(t, conn, "votante", true, false)

	popular := testutil.CreateTestPremio(t, conn, "Popular", models.EstadoVotacion1, 1)
	tranquilo := testutil.CreateTestPremio(t, conn, "Tranquilo", models.EstadoVotacion1, 1)
	nomA := testutil.CreateTestNominado(t, conn, popular, "Nominado A")
	nomB := testutil.CreateTestNominado(t, conn, popular, "Nominado B")
	testutil.CreateTestNominado(t, conn, tranquilo, "Nominado C")
	testutil.CastTestVote(t, conn, userID, popular, nomA, 1, nil)
	testutil.CastTestVote(t, conn, userID, popular, nomB, 1, nil)

	w := httptest.NewRecorder()
	h.PremiosTop(w, testutil.MakeRequest("GET", "/admin/premios-top", nil, testutil.AuthHeader(adminToken)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var top []models.PremioTop
	testutil.AssertJSON(t, w, &top)
	if len(top) != 2 {
		t.Fatalf("Expected 2 premios, got %d", len(top))
	}
	if top[0].Nombre != "Popular" || top[0].TotalVotos != 2 {
		t.Errorf("Expected Popular first with 2 votes, got %s with %d", top[0].Nombre, top[0].TotalVotos)
	}
	if top[1].TotalVotos != 0 {
		t.Errorf("Expected Tranquilo with 0 votes, got %d", top[1].TotalVotos)
	}
}
