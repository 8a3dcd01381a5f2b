package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IDINaXI/Nutrio/internal/config"
	"github.com/IDINaXI/Nutrio/internal/storage/memory"
	"golang.org/x/crypto/bcrypt"
)

func setupTestService() (*Service, *memory.MemoryStorage) {
	memStorage := memory.New()
	cfg := &config.Config{
		AuthRequired:  true,
		JWTSecret:     "test-secret-key-for-testing-only",
		JWTIssuer:     "nutrio-test",
		JWTTTLMinutes: 60,
	}
	service := NewService(cfg, memStorage)
	service.bcryptCost = bcrypt.MinCost
	return service, memStorage
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestHandleRegister(t *testing.T) {
	service, store := setupTestService()
	handler := NewHandlers(service, nil)

	t.Run("Success", func(t *testing.T) {
		w := postJSON(t, handler.HandleRegister, "/v1/auth/register", map[string]interface{}{
			"email":     "Anna@Example.com",
			"password":  "secret1",
			"name":      "Анна",
			"allergies": []string{" орехи ", "Орехи", ""},
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d. Body: %s", w.Code, w.Body.String())
		}

		var resp TokenResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.AccessToken == "" || resp.TokenType != "Bearer" || resp.ExpiresIn != 3600 {
			t.Fatalf("unexpected token response: %+v", resp)
		}
		if resp.User.Email != "anna@example.com" {
			t.Errorf("expected lower-cased email, got %s", resp.User.Email)
		}

		userID, err := service.VerifyJWT(resp.AccessToken)
		if err != nil || userID != resp.User.ID {
			t.Fatalf("token does not verify: %d, %v", userID, err)
		}

		stored, _ := store.GetUserByID(t.Context(), resp.User.ID)
		if stored.ActivityLevel != "MODERATELY_ACTIVE" || len(stored.Allergies) != 1 {
			t.Errorf("unexpected stored user: %+v", stored)
		}
		if stored.PasswordHash == "secret1" {
			t.Error("password must be hashed")
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		w := postJSON(t, handler.HandleRegister, "/v1/auth/register", map[string]string{
			"email": "anna@example.com", "password": "another",
		})
		if w.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", w.Code)
		}
		var resp ErrorResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Error.Code != "email_taken" {
			t.Errorf("expected email_taken, got %s", resp.Error.Code)
		}
	})

	t.Run("ShortPassword", func(t *testing.T) {
		w := postJSON(t, handler.HandleRegister, "/v1/auth/register", map[string]string{
			"email": "b@example.com", "password": "123",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("InvalidEnum", func(t *testing.T) {
		w := postJSON(t, handler.HandleRegister, "/v1/auth/register", map[string]string{
			"email": "c@example.com", "password": "secret1", "goal": "GET_RICH",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestHandleLogin(t *testing.T) {
	service, _ := setupTestService()
	handler := NewHandlers(service, nil)

	postJSON(t, handler.HandleRegister, "/v1/auth/register", map[string]string{
		"email": "ivan@example.com", "password": "secret1",
	})

	w := postJSON(t, handler.HandleLogin, "/v1/auth/login", map[string]string{
		"email": "IVAN@example.com", "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	for _, body := range []map[string]string{
		{"email": "ivan@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "secret1"},
	} {
		w := postJSON(t, handler.HandleLogin, "/v1/auth/login", body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", w.Code)
		}
		var resp ErrorResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Error.Code != "invalid_credentials" {
			t.Errorf("expected invalid_credentials, got %s", resp.Error.Code)
		}
	}
}
