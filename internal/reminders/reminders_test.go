package reminders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/IDINaXI/Nutrio/internal/storage/memory"
	"github.com/IDINaXI/Nutrio/internal/userctx"
)

func TestDaysMask(t *testing.T) {
	tests := []struct {
		days []int
		mask int
		back []int
	}{
		{[]int{1}, 1, []int{1}},
		{[]int{7}, 64, []int{7}},
		{[]int{3, 1, 3}, 5, []int{1, 3}},
		{[]int{1, 2, 3, 4, 5, 6, 7}, 127, []int{1, 2, 3, 4, 5, 6, 7}},
	}
	for _, tt := range tests {
		if got := DaysToMask(tt.days); got != tt.mask {
			t.Errorf("DaysToMask(%v) = %d, want %d", tt.days, got, tt.mask)
		}
		if got := MaskToDays(tt.mask); !reflect.DeepEqual(got, tt.back) {
			t.Errorf("MaskToDays(%d) = %v, want %v", tt.mask, got, tt.back)
		}
	}
}

type env struct {
	mux *http.ServeMux
}

func newEnv(now time.Time) *env {
	service := NewService(memory.New())
	service.now = func() time.Time { return now }
	h := NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/reminders", h.HandleCreate)
	mux.HandleFunc("GET /v1/reminders", h.HandleList)
	mux.HandleFunc("GET /v1/reminders/today", h.HandleToday)
	mux.HandleFunc("PUT /v1/reminders/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /v1/reminders/{id}", h.HandleDelete)
	return &env{mux: mux}
}

func (e *env) call(userID int64, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req = req.WithContext(userctx.WithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func TestReminderLifecycle(t *testing.T) {
	// 2 марта 2026: понедельник
	e := newEnv(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC))

	w := e.call(1, http.MethodPost, "/v1/reminders", `{"name":"Витамин D","dosage":"1 капсула","time":"21:00","days_of_week":[1,3,5]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var evening ReminderDTO
	json.NewDecoder(w.Body).Decode(&evening)
	if evening.Time != "21:00" || !evening.Active || !reflect.DeepEqual(evening.DaysOfWeek, []int{1, 3, 5}) {
		t.Fatalf("unexpected reminder: %+v", evening)
	}

	e.call(1, http.MethodPost, "/v1/reminders", `{"name":"Омега-3","time":"08:30","days_of_week":[1,2]}`)
	e.call(1, http.MethodPost, "/v1/reminders", `{"name":"Магний","time":"12:00","days_of_week":[6,7]}`)
	e.call(1, http.MethodPost, "/v1/reminders", `{"name":"Пауза","time":"10:00","days_of_week":[1],"active":false}`)

	w = e.call(1, http.MethodGet, "/v1/reminders/today", "")
	var today ListRemindersResponse
	json.NewDecoder(w.Body).Decode(&today)
	if len(today.Items) != 2 || today.Items[0].Name != "Омега-3" || today.Items[1].Name != "Витамин D" {
		t.Fatalf("unexpected today list: %+v", today.Items)
	}

	w = e.call(1, http.MethodPut, "/v1/reminders/"+strconv.FormatInt(evening.ID, 10), `{"name":"Витамин D3","time":"20:15","days_of_week":[2]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated ReminderDTO
	json.NewDecoder(w.Body).Decode(&updated)
	if updated.Name != "Витамин D3" || updated.Time != "20:15" || !updated.Active {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if w := e.call(2, http.MethodPut, "/v1/reminders/"+strconv.FormatInt(evening.ID, 10), `{"name":"x","time":"20:15","days_of_week":[2]}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign reminder, got %d", w.Code)
	}

	if w := e.call(1, http.MethodDelete, "/v1/reminders/"+strconv.FormatInt(evening.ID, 10), ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = e.call(1, http.MethodGet, "/v1/reminders", "")
	var all ListRemindersResponse
	json.NewDecoder(w.Body).Decode(&all)
	if len(all.Items) != 3 || all.Items[0].Time != "08:30" {
		t.Fatalf("unexpected list: %+v", all.Items)
	}
}

func TestReminderValidation(t *testing.T) {
	e := newEnv(time.Now())
	bodies := []string{
		`{"time":"08:00","days_of_week":[1]}`,
		`{"name":"x","time":"8:00","days_of_week":[1]}`,
		`{"name":"x","time":"24:00","days_of_week":[1]}`,
		`{"name":"x","time":"08:00","days_of_week":[]}`,
		`{"name":"x","time":"08:00","days_of_week":[0]}`,
		`{"name":"x","time":"08:00","days_of_week":[8]}`,
	}
	for _, body := range bodies {
		if w := e.call(1, http.MethodPost, "/v1/reminders", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestReminderLimit(t *testing.T) {
	e := newEnv(time.Now())
	for i := 0; i < MaxPerUser; i++ {
		body := fmt.Sprintf(`{"name":"r%d","time":"09:00","days_of_week":[1]}`, i)
		if w := e.call(1, http.MethodPost, "/v1/reminders", body); w.Code != http.StatusCreated {
			t.Fatalf("reminder %d: expected 201, got %d", i, w.Code)
		}
	}

	w := e.call(1, http.MethodPost, "/v1/reminders", `{"name":"extra","time":"09:00","days_of_week":[1]}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	var body map[string]map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["error"]["code"] != "max_reminders_reached" {
		t.Fatalf("unexpected error body: %+v", body)
	}

	// лимит считается на пользователя
	if w := e.call(2, http.MethodPost, "/v1/reminders", `{"name":"other","time":"09:00","days_of_week":[1]}`); w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for another user, got %d", w.Code)
	}
}
