package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/IDINaXI/Nutrio/internal/logger"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/storage/memory"
	"github.com/IDINaXI/Nutrio/internal/userctx"
)

type fakeBlob struct {
	objects map[string][]byte
	deleted []string
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: map[string][]byte{}}
}

func (f *fakeBlob) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	f.objects[key] = data
	return int64(len(data)), nil
}

func (f *fakeBlob) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlob) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://s3.example.test/" + key + "?ttl=" + fmt.Sprint(int(ttl.Seconds())), nil
}

func (f *fakeBlob) DeleteObject(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func seedUser(t *testing.T, store *memory.MemoryStorage) int64 {
	t.Helper()
	ctx := context.Background()

	age, height, weight := 30, 180.0, 80.0
	gender, goal := "MALE", "LOSE_WEIGHT"
	user := &storage.User{
		Email:         "ivan@example.com",
		PasswordHash:  "x",
		Name:          "Иван",
		Age:           &age,
		HeightCm:      &height,
		WeightKg:      &weight,
		Gender:        &gender,
		Goal:          &goal,
		ActivityLevel: "MODERATELY_ACTIVE",
		Allergies:     []string{"орехи"},
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	for i, kg := range []float64{82, 81.4, 80.9} {
		store.CreateWeight(ctx, &storage.WeightEntry{UserID: user.ID, WeightKg: kg, Date: fmt.Sprintf("2026-02-%02d", i*7+1)})
	}
	waist := 90.5
	store.CreateMeasurement(ctx, &storage.Measurement{UserID: user.ID, Date: "2026-02-08", WaistCm: &waist})
	store.CreateReminder(ctx, &storage.Reminder{UserID: user.ID, Name: "Витамин D", Dosage: "2000 МЕ", TimeMinutes: 540, DaysMask: 127, Active: true}, 50)
	store.CreateReminder(ctx, &storage.Reminder{UserID: user.ID, Name: "Старый курс", TimeMinutes: 600, DaysMask: 1, Active: false}, 50)
	return user.ID
}

func newMux(service *Service) *http.ServeMux {
	h := NewHandlers(service)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/reports", h.HandleCreate)
	mux.HandleFunc("GET /v1/reports", h.HandleList)
	mux.HandleFunc("GET /v1/reports/{id}", h.HandleGet)
	mux.HandleFunc("GET /v1/reports/{id}/download", h.HandleDownload)
	mux.HandleFunc("DELETE /v1/reports/{id}", h.HandleDelete)
	return mux
}

func call(mux http.Handler, userID int64, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req = req.WithContext(userctx.WithUserID(req.Context(), userID))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestCreateAndDownloadPDFLocalMode(t *testing.T) {
	store := memory.New()
	userID := seedUser(t, store)
	mux := newMux(NewService(store, store, nil, Options{MaxRangeDays: 90}, logger.NewNop()))

	w := call(mux, userID, http.MethodPost, "/v1/reports", `{"from":"2026-02-01","to":"2026-02-28","format":"pdf"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var dto ReportDTO
	json.NewDecoder(w.Body).Decode(&dto)
	if dto.Status != StatusReady || dto.SizeBytes == 0 {
		t.Fatalf("unexpected report: %+v", dto)
	}
	if !strings.HasSuffix(dto.DownloadURL, "/v1/reports/"+dto.ID.String()+"/download") {
		t.Fatalf("unexpected download url: %s", dto.DownloadURL)
	}

	w = call(mux, userID, http.MethodGet, "/v1/reports/"+dto.ID.String()+"/download", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type %s", w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("download is not a PDF")
	}

	// чужой отчёт не виден
	if w := call(mux, userID+100, http.MethodGet, "/v1/reports/"+dto.ID.String(), ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign report, got %d", w.Code)
	}

	w = call(mux, userID, http.MethodGet, "/v1/reports", "")
	var list ReportsResponse
	json.NewDecoder(w.Body).Decode(&list)
	if len(list.Items) != 1 || list.Items[0].ID != dto.ID {
		t.Fatalf("unexpected list: %+v", list.Items)
	}

	if w := call(mux, userID, http.MethodDelete, "/v1/reports/"+dto.ID.String(), ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := call(mux, userID, http.MethodGet, "/v1/reports/"+dto.ID.String(), ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestCreateCSV(t *testing.T) {
	store := memory.New()
	userID := seedUser(t, store)
	mux := newMux(NewService(store, store, nil, Options{}, nil))

	w := call(mux, userID, http.MethodPost, "/v1/reports", `{"from":"2026-02-01","to":"2026-02-28","format":"csv"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var dto ReportDTO
	json.NewDecoder(w.Body).Decode(&dto)

	w = call(mux, userID, http.MethodGet, "/v1/reports/"+dto.ID.String()+"/download", "")
	want := "date,weight_kg,waist_cm,chest_cm,hips_cm,arm_cm,leg_cm\n" +
		"2026-02-01,82,,,,,\n" +
		"2026-02-08,81.4,90.5,,,,\n" +
		"2026-02-15,80.9,,,,,\n"
	if w.Body.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", w.Body.String(), want)
	}
}

func TestCreateValidation(t *testing.T) {
	store := memory.New()
	userID := seedUser(t, store)
	mux := newMux(NewService(store, store, nil, Options{MaxRangeDays: 30}, nil))

	tests := []struct {
		body string
		code string
	}{
		{`{"from":"2026-02-01","to":"2026-02-28","format":"xlsx"}`, "invalid_request"},
		{`{"from":"01.02.2026","to":"2026-02-28","format":"pdf"}`, "invalid_request"},
		{`{"from":"2026-03-01","to":"2026-02-01","format":"pdf"}`, "invalid_range"},
		{`{"from":"2026-01-01","to":"2026-03-01","format":"pdf"}`, "range_too_large"},
	}
	for _, tt := range tests {
		w := call(mux, userID, http.MethodPost, "/v1/reports", tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.body, w.Code)
			continue
		}
		var body map[string]map[string]string
		json.NewDecoder(w.Body).Decode(&body)
		if body["error"]["code"] != tt.code {
			t.Errorf("%s: expected code %s, got %s", tt.body, tt.code, body["error"]["code"])
		}
	}
}

func TestS3ModeRedirectsToPresignedURL(t *testing.T) {
	store := memory.New()
	userID := seedUser(t, store)
	blobStore := newFakeBlob()
	mux := newMux(NewService(store, store, blobStore, Options{PresignTTL: 10 * time.Minute}, nil))

	w := call(mux, userID, http.MethodPost, "/v1/reports", `{"from":"2026-02-01","to":"2026-02-28","format":"pdf"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var dto ReportDTO
	json.NewDecoder(w.Body).Decode(&dto)
	if !strings.HasPrefix(dto.DownloadURL, "https://s3.example.test/reports/") || !strings.HasSuffix(dto.DownloadURL, "?ttl=600") {
		t.Fatalf("unexpected download url: %s", dto.DownloadURL)
	}
	if len(blobStore.objects) != 1 {
		t.Fatalf("expected uploaded object, got %d", len(blobStore.objects))
	}

	w = call(mux, userID, http.MethodGet, "/v1/reports/"+dto.ID.String()+"/download", "")
	if w.Code != http.StatusFound || w.Header().Get("Location") != dto.DownloadURL {
		t.Fatalf("expected redirect to %s, got %d %s", dto.DownloadURL, w.Code, w.Header().Get("Location"))
	}

	call(mux, userID, http.MethodDelete, "/v1/reports/"+dto.ID.String(), "")
	if len(blobStore.deleted) != 1 || len(blobStore.objects) != 0 {
		t.Fatalf("expected object removed, deleted=%v", blobStore.deleted)
	}
}

func TestPublicURLPreferred(t *testing.T) {
	store := memory.New()
	userID := seedUser(t, store)
	service := NewService(store, store, newFakeBlob(), Options{PreferPublicURL: true, PublicBaseURL: "https://cdn.example.test/"}, nil)

	report, err := service.CreateReport(context.Background(), userID, CreateReportRequest{From: "2026-02-01", To: "2026-02-28", Format: FormatCSV})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	url, err := service.DownloadURL(context.Background(), report, "http://api")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.test/"+*report.ObjectKey {
		t.Fatalf("unexpected url %s", url)
	}
}
