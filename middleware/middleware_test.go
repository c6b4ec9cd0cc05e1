package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThePeem/gala-premios-backend/models"
)

func TestWithLogging(t *testing.T) {
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	wrappedHandler := WithLogging(testHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	wrappedHandler(w, req)

	if !handlerCalled {
		t.Error("Expected handler to be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "simple struct",
			statusCode: http.StatusOK,
			data:       map[string]string{"message": "hola"},
			expected:   `{"message":"hola"}`,
		},
		{
			name:       "vote created",
			statusCode: http.StatusCreated,
			data:       models.VotarResponse{Message: "Voto registrado con éxito.", VotoID: "abc123"},
			expected:   `{"message":"Voto registrado con éxito.","voto_id":"abc123"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected application/json, got %s", ct)
			}

			got := bytes.TrimSpace(w.Body.Bytes())
			if string(got) != tc.expected {
				t.Errorf("Expected body %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestErrorResponse_Shape(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorResponse(w, http.StatusForbidden, "Tu cuenta no ha sido verificada.", models.CodeUserNotVerified)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", w.Code)
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.Code != models.CodeUserNotVerified {
		t.Errorf("Expected code %q, got %q", models.CodeUserNotVerified, body.Code)
	}
	if body.Detail == "" {
		t.Error("Expected a non-empty detail")
	}
}

func TestParseJSONBody(t *testing.T) {
	payload := `{"premio":"p1","nominado":"n1","ronda":1}`
	req := httptest.NewRequest("POST", "/votar", bytes.NewBufferString(payload))

	var body models.VotarRequest
	if err := ParseJSONBody(req, &body); err != nil {
		t.Fatalf("ParseJSONBody failed: %v", err)
	}
	if body.Premio != "p1" || body.Nominado != "n1" || body.Ronda != 1 {
		t.Errorf("Unexpected parsed body: %+v", body)
	}

	req = httptest.NewRequest("POST", "/votar", bytes.NewBufferString("{no es json"))
	if err := ParseJSONBody(req, &body); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestBearerToken(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected string
	}{
		{"bearer scheme", "Bearer tok123", "tok123"},
		{"legacy token scheme", "Token tok123", "tok123"},
		{"no header", "", ""},
		{"unknown scheme", "Basic dXNlcg==", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/mi-perfil", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if got := BearerToken(req); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"x-forwarded-for single", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "10.0.0.1:1234", "203.0.113.9"},
		{"x-forwarded-for chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "10.0.0.1:1234", "203.0.113.9"},
		{"x-real-ip", map[string]string{"X-Real-IP": "203.0.113.7"}, "10.0.0.1:1234", "203.0.113.7"},
		{"remote addr", nil, "10.0.0.1:1234", "10.0.0.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("OPTIONS", "/votar", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	CORS(next).ServeHTTP(w, req)

	if called {
		t.Error("Preflight should not reach the next handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected origin echo, got %q", got)
	}
}
