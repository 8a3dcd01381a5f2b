package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IDINaXI/Nutrio/internal/planner"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/storage/memory"
	"github.com/IDINaXI/Nutrio/internal/userctx"
)

func setup(t *testing.T) (*Handler, *memory.MemoryStorage, int64) {
	t.Helper()
	store := memory.New()
	u := &storage.User{Email: "anna@example.com", PasswordHash: "x", ActivityLevel: "MODERATELY_ACTIVE"}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return NewHandler(NewService(store)), store, u.ID
}

func authed(req *http.Request, userID int64) *http.Request {
	return req.WithContext(userctx.WithUserID(req.Context(), userID))
}

func TestHandleGetMe(t *testing.T) {
	h, _, userID := setup(t)

	w := httptest.NewRecorder()
	h.HandleGetMe(w, authed(httptest.NewRequest(http.MethodGet, "/v1/users/me", nil), userID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp UserDTO
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Email != "anna@example.com" || resp.Allergies == nil {
		t.Fatalf("unexpected user: %+v", resp)
	}

	w = httptest.NewRecorder()
	h.HandleGetMe(w, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HandleGetMe(w, authed(httptest.NewRequest(http.MethodGet, "/v1/users/me", nil), userID+100))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
}

func TestHandleUpdateMe(t *testing.T) {
	h, store, userID := setup(t)

	put := func(body string) *httptest.ResponseRecorder {
		req := authed(httptest.NewRequest(http.MethodPut, "/v1/users/me", bytes.NewBufferString(body)), userID)
		w := httptest.NewRecorder()
		h.HandleUpdateMe(w, req)
		return w
	}

	w := put(`{"age":30,"gender":"MALE","weight_kg":80,"height_cm":180,"goal":"LOSE_WEIGHT","activity_level":"SEDENTARY","allergies":["Орехи"," орехи","молоко",""]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	u, _ := store.GetUserByID(context.Background(), userID)
	profile := ToPlannerProfile(u)
	if err := profile.Validate(); err != nil {
		t.Fatalf("expected complete profile, got %v", err)
	}
	if profile.Goal != planner.GoalLoseWeight || len(profile.Allergies) != 2 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// частичное обновление не трогает остальные поля
	w = put(`{"name":"Иван"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	u, _ = store.GetUserByID(context.Background(), userID)
	if u.Name != "Иван" || u.Age == nil || *u.Age != 30 || len(u.Allergies) != 2 {
		t.Fatalf("partial update lost fields: %+v", u)
	}

	for _, body := range []string{
		`{"age":0}`,
		`{"age":121}`,
		`{"height_cm":20}`,
		`{"weight_kg":900}`,
		`{"gender":"OTHER"}`,
		`{"activity_level":"LAZY"}`,
		`not json`,
	} {
		if w := put(body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestToPlannerProfileIncomplete(t *testing.T) {
	err := ToPlannerProfile(&storage.User{ActivityLevel: "MODERATELY_ACTIVE"}).Validate()

	var incomplete *planner.IncompleteProfileError
	if !errors.As(err, &incomplete) || len(incomplete.Missing) != 5 {
		t.Fatalf("expected 5 missing fields, got %v", err)
	}
}
