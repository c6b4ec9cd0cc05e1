package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ThePeem/gala-premios-backend/auth"
	"github.com/ThePeem/gala-premios-backend/cliparse"
	"github.com/ThePeem/gala-premios-backend/db"
)

const testSalt = "test-password-salt"

// SetupTestDB creates a fresh SQLite database in a temp dir with the full
// schema. One connection only: concurrent test requests then serialize at the
// database and exercise the unique constraints deterministically.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gala_test.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         8000,
		DatabaseURL:  "test.db",
		DatabaseType: "sqlite",
		PasswordSalt: testSalt,
	}
}

// CreateTestUser inserts a user and a live token, returning both IDs.
func CreateTestUser(t *testing.T, conn *sql.DB, username string, verificado, esAdmin bool) (userID, token string) {
	t.Helper()

	userID = uuid.NewString()
	hash := auth.HashPassword("password-"+username, testSalt)
	_, err := conn.Exec(`
		INSERT INTO usuario (id, username, email, password_hash, verificado, es_admin, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, username, username+"@test.local", hash, verificado, esAdmin, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	token, err = auth.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO token_acceso (token, usuario_id, fecha_creacion) VALUES ($1, $2, $3)
	`, token, userID, time.Now())
	if err != nil {
		t.Fatalf("Failed to store token: %v", err)
	}

	return userID, token
}

// CreateTestPremio inserts an award in the given phase and returns its ID.
func CreateTestPremio(t *testing.T, conn *sql.DB, nombre, estado string, rondaActual int) string {
	t.Helper()

	premioID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO premio (id, nombre, tipo, activo, estado, ronda_actual, vinculos_requeridos)
		VALUES ($1, $2, 'directo', TRUE, $3, $4, 1)
	`, premioID, nombre, estado, rondaActual)
	if err != nil {
		t.Fatalf("Failed to create test premio: %v", err)
	}

	return premioID
}

// CreateTestNominado inserts a nominee, optionally linked to users, and
// returns its ID.
func CreateTestNominado(t *testing.T, conn *sql.DB, premioID, nombre string, vinculados ...string) string {
	t.Helper()

	nominadoID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO nominado (id, premio_id, nombre, activo, fecha_creacion)
		VALUES ($1, $2, $3, TRUE, $4)
	`, nominadoID, premioID, nombre, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test nominado: %v", err)
	}

	for _, usuarioID := range vinculados {
		_, err := conn.Exec(`
			INSERT INTO nominado_vinculo (nominado_id, usuario_id) VALUES ($1, $2)
		`, nominadoID, usuarioID)
		if err != nil {
			t.Fatalf("Failed to link test user: %v", err)
		}
	}

	return nominadoID
}

// CastTestVote writes a vote row directly, bypassing the admission engine.
// orden may be nil for round-1 ballots.
func CastTestVote(t *testing.T, conn *sql.DB, usuarioID, premioID, nominadoID string, ronda int, orden *int) string {
	t.Helper()

	votoID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO voto (id, usuario_id, premio_id, nominado_id, ronda, orden_ronda2, fecha_voto)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, votoID, usuarioID, premioID, nominadoID, ronda, orden, time.Now())
	if err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}

	return votoID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AuthHeader builds the Authorization header map for a bearer token.
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks the machine code of an error body.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.Code != expected {
		t.Errorf("Expected error code %q, got %q (detail: %s)", expected, body.Code, body.Detail)
	}
}
