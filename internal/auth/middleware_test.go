package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRequireAuth(t *testing.T) {
	service, _ := setupTestService()
	mw := NewMiddleware(service.config, service)

	var gotUserID int64
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := service.generateJWT(42, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expired, _ := service.generateJWT(42, -time.Minute)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
		userID int64
	}{
		{"public healthz", "/healthz", "", http.StatusOK, 0},
		{"public login", "/v1/auth/login", "", http.StatusOK, 0},
		{"spa path", "/dashboard", "", http.StatusOK, 0},
		{"missing token", "/v1/users/me", "", http.StatusUnauthorized, 0},
		{"bad scheme", "/v1/users/me", "Token " + token, http.StatusUnauthorized, 0},
		{"expired", "/v1/users/me", "Bearer " + expired, http.StatusUnauthorized, 0},
		{"garbage", "/v1/users/me", "Bearer abc.def.ghi", http.StatusUnauthorized, 0},
		{"valid", "/v1/users/me", "Bearer " + token, http.StatusOK, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotUserID = 0
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, w.Code)
			}
			if gotUserID != tc.userID {
				t.Fatalf("expected user id %d in context, got %d", tc.userID, gotUserID)
			}
		})
	}
}

func TestRequireAuthOptionalMode(t *testing.T) {
	service, _ := setupTestService()
	service.config.AuthRequired = false
	mw := NewMiddleware(service.config, service)

	h := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through without token, got %d", w.Code)
	}

	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("a provided token must still be valid, got %d", w.Code)
	}
}

func TestVerifyJWTRejectsOtherSecretAndAlg(t *testing.T) {
	service, _ := setupTestService()

	claims := jwt.RegisteredClaims{Subject: "7", Issuer: "nutrio-test", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if _, err := service.VerifyJWT(foreign); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(service.config.JWTSecret))
	if _, err := service.VerifyJWT(hs512); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}

	wrongIssuer := claims
	wrongIssuer.Issuer = "someone-else"
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, wrongIssuer).SignedString([]byte(service.config.JWTSecret))
	if _, err := service.VerifyJWT(tok); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}
