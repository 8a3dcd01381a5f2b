package mealplans

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

	"github.com/IDINaXI/Nutrio/internal/ai"
	"github.com/IDINaXI/Nutrio/internal/planner"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/storage/memory"
	"github.com/IDINaXI/Nutrio/internal/userctx"
	"github.com/IDINaXI/Nutrio/internal/users"
)

type testEnv struct {
	handler *Handler
	service *Service
	store   *memory.MemoryStorage
	userID  int64
}

func ptr[T any](v T) *T { return &v }

func newEnv(t *testing.T, gateway planner.Gateway, complete bool) *testEnv {
	t.Helper()
	store := memory.New()
	u := &storage.User{Email: "ivan@example.com", PasswordHash: "x", ActivityLevel: "SEDENTARY"}
	if complete {
		u.Age = ptr(30)
		u.Gender = ptr("MALE")
		u.WeightKg = ptr(80.0)
		u.HeightCm = ptr(180.0)
		u.Goal = ptr("LOSE_WEIGHT")
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}

	service := NewService(store, users.NewService(store), planner.NewGenerator(gateway), nil)
	// 2026-01-05: понедельник
	service.now = func() time.Time { return time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC) }

	return &testEnv{handler: NewHandler(service), service: service, store: store, userID: u.ID}
}

func (e *testEnv) do(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req = req.WithContext(userctx.WithUserID(req.Context(), e.userID))
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	return resp.Error.Code
}

func TestGenerateWeeklyFallbackScenario(t *testing.T) {
	env := newEnv(t, nil, true)

	w := env.do(t, env.handler.HandleGenerate, http.MethodPost, "/v1/meal-plans/generate", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var plan MealPlanDTO
	json.NewDecoder(w.Body).Decode(&plan)
	if plan.Source != planner.SourceFallback || !plan.IsCurrent {
		t.Fatalf("unexpected plan: source=%s current=%v", plan.Source, plan.IsCurrent)
	}
	if plan.StartDate != "2026-01-05" || plan.EndDate != "2026-01-11" {
		t.Fatalf("unexpected dates %s..%s", plan.StartDate, plan.EndDate)
	}
	if len(plan.Week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(plan.Week))
	}
	for i, day := range plan.Week {
		if day.Day != planner.WeekDays[i] || day.TotalCalories != 1816 || !day.Complete() {
			t.Fatalf("unexpected day %d: %+v", i, day)
		}
	}

	w = env.do(t, env.handler.HandleGetCurrent, http.MethodGet, "/v1/meal-plans/current", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGenerateIncompleteProfile(t *testing.T) {
	env := newEnv(t, nil, false)

	w := env.do(t, env.handler.HandleGenerate, http.MethodPost, "/v1/meal-plans/generate", "")
	if w.Code != http.StatusUnprocessableEntity || errorCode(t, w) != "incomplete_profile" {
		t.Fatalf("expected 422 incomplete_profile, got %d", w.Code)
	}

	if _, err := env.store.GetCurrentMealPlan(context.Background(), env.userID); err != storage.ErrNotFound {
		t.Fatalf("nothing must be stored, got %v", err)
	}
}

func TestGenerateCustomUpdatesProfile(t *testing.T) {
	env := newEnv(t, nil, false)

	body := `{"age":30,"gender":"MALE","weight_kg":80,"height_cm":180,"goal":"LOSE_WEIGHT","activity_level":"SEDENTARY"}`
	w := env.do(t, env.handler.HandleGenerateCustom, http.MethodPost, "/v1/meal-plans/generate/custom", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	u, _ := env.store.GetUserByID(context.Background(), env.userID)
	if u.Age == nil || *u.Age != 30 {
		t.Fatalf("profile was not updated: %+v", u)
	}

	w = env.do(t, env.handler.HandleGenerateCustom, http.MethodPost, "/v1/meal-plans/generate/custom", `{"age":500}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCurrentNotFound(t *testing.T) {
	env := newEnv(t, nil, true)

	w := env.do(t, env.handler.HandleGetCurrent, http.MethodGet, "/v1/meal-plans/current", "")
	if w.Code != http.StatusNotFound || errorCode(t, w) != "not_found" {
		t.Fatalf("expected 404 not_found, got %d", w.Code)
	}
}

func TestListHistoryNewestFirst(t *testing.T) {
	env := newEnv(t, nil, true)

	for i := 0; i < 3; i++ {
		env.do(t, env.handler.HandleGenerate, http.MethodPost, "/v1/meal-plans/generate", "")
	}

	w := env.do(t, env.handler.HandleList, http.MethodGet, "/v1/meal-plans?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListMealPlansResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Items) != 2 || resp.Limit != 2 {
		t.Fatalf("unexpected page: %+v", resp)
	}
	if !resp.Items[0].IsCurrent || resp.Items[1].IsCurrent || resp.Items[0].ID < resp.Items[1].ID {
		t.Fatalf("expected newest (current) first: %+v", resp.Items)
	}

	w = env.do(t, env.handler.HandleList, http.MethodGet, "/v1/meal-plans?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReplaceCurrentTolerantDecoding(t *testing.T) {
	env := newEnv(t, nil, true)

	var days []string
	for _, label := range planner.WeekDays {
		days = append(days, `{"date":"`+label+`","breakfast":{"name":"Каша","calories":"350","proteins":10,"fats":5,"carbs":60,"ingredients":"Овсянка"}}`)
	}
	body := `{"week":[` + strings.Join(days, ",") + `]}`

	w := env.do(t, env.handler.HandleReplaceCurrent, http.MethodPut, "/v1/meal-plans/current", body)
	if w.Code != http.StatusBadRequest {
		// "calories" строкой: схема нарушена
		t.Fatalf("expected 400 for string calories, got %d", w.Code)
	}

	body = strings.ReplaceAll(body, `"calories":"350"`, `"calories":350`)
	w = env.do(t, env.handler.HandleReplaceCurrent, http.MethodPut, "/v1/meal-plans/current", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var plan MealPlanDTO
	json.NewDecoder(w.Body).Decode(&plan)
	if plan.Source != planner.SourceCustom {
		t.Fatalf("expected custom source, got %s", plan.Source)
	}
	b := plan.Week[2].Breakfast
	if plan.Week[2].Day != "Среда" || b == nil || b.Carbohydrates != 60 || len(b.Ingredients) != 1 || b.Type != planner.MealBreakfast {
		t.Fatalf("unexpected decoded day: %+v", plan.Week[2])
	}

	w = env.do(t, env.handler.HandleReplaceCurrent, http.MethodPut, "/v1/meal-plans/current", `{"week":[]}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_plan" {
		t.Fatalf("expected 400 invalid_plan, got %d", w.Code)
	}
}

func TestReplaceCurrentLabelsUnnamedDays(t *testing.T) {
	env := newEnv(t, nil, true)

	days := make([]string, len(planner.WeekDays))
	for i := range days {
		days[i] = fmt.Sprintf(`{"breakfast":{"name":"b%d","calories":300,"proteins":10,"fats":5,"carbohydrates":40}}`, i)
	}
	w := env.do(t, env.handler.HandleReplaceCurrent, http.MethodPut, "/v1/meal-plans/current", `{"week":[`+strings.Join(days, ",")+`]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var plan MealPlanDTO
	json.NewDecoder(w.Body).Decode(&plan)
	for i, day := range plan.Week {
		if day.Day != planner.WeekDays[i] {
			t.Fatalf("day %d: expected label %s, got %q", i, planner.WeekDays[i], day.Day)
		}
	}

	resp, err := env.service.RegenerateDay(context.Background(), env.userID, RegenerateDayRequest{Day: "Среда"})
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if resp.Plan == nil {
		t.Fatal("expected stored plan to be updated")
	}
	if b := resp.Plan.Week[2].Breakfast; b == nil || b.Name == "b2" {
		t.Fatalf("expected Wednesday to be replaced, got %+v", b)
	}
	if resp.Plan.Week[1].Breakfast.Name != "b1" {
		t.Fatalf("other days must stay unchanged, got %s", resp.Plan.Week[1].Breakfast.Name)
	}
}

func TestGenerateDayAndHistory(t *testing.T) {
	env := newEnv(t, nil, true)

	w := env.do(t, env.handler.HandleGenerateDay, http.MethodPost, "/v1/meal-plans/day/generate", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var day DayPlanDTO
	json.NewDecoder(w.Body).Decode(&day)
	if day.Day != "Понедельник" || day.Date != "2026-01-05" || day.Plan.Day != "Понедельник" {
		t.Fatalf("expected today's label by default: %+v", day)
	}

	w = env.do(t, env.handler.HandleGenerateDay, http.MethodPost, "/v1/meal-plans/day/generate", `{"day":"пятница"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&day)
	if day.Day != "Пятница" {
		t.Fatalf("expected canonical label, got %s", day.Day)
	}

	w = env.do(t, env.handler.HandleGenerateDay, http.MethodPost, "/v1/meal-plans/day/generate", `{"day":"Funday"}`)
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "invalid_day" {
		t.Fatalf("expected 400 invalid_day, got %d", w.Code)
	}

	w = env.do(t, env.handler.HandleDayHistory, http.MethodGet, "/v1/meal-plans/day-history", "")
	var history ListDayPlansResponse
	json.NewDecoder(w.Body).Decode(&history)
	if len(history.Items) != 2 || history.Items[0].Day != "Пятница" || !history.Items[1].Plan.Complete() {
		t.Fatalf("unexpected history: %+v", history.Items)
	}
}

func TestRegenerateDayUpdatesCurrentPlan(t *testing.T) {
	env := newEnv(t, ai.NewMockGateway(), true)

	w := env.do(t, env.handler.HandleGenerate, http.MethodPost, "/v1/meal-plans/generate", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var plan MealPlanDTO
	json.NewDecoder(w.Body).Decode(&plan)

	w = env.do(t, env.handler.HandleRegenerateDay, http.MethodPost, "/v1/meal-plans/regenerate-day", `{"day":"Среда"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp RegenerateDayResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Plan == nil || resp.Day.Day != "Среда" {
		t.Fatalf("expected the stored plan to be updated: %+v", resp)
	}

	others := map[string]bool{}
	for _, d := range plan.Week {
		if d.Day == "Среда" {
			continue
		}
		for _, m := range d.Meals() {
			others[strings.ToLower(m.Name)] = true
		}
	}
	for _, m := range resp.Day.Meals() {
		if others[strings.ToLower(m.Name)] {
			t.Fatalf("regenerated meal %q repeats another day", m.Name)
		}
	}

	current, _ := env.service.Current(context.Background(), env.userID)
	if current.ID != plan.ID || current.Week[2].Breakfast.Name != resp.Day.Breakfast.Name {
		t.Fatalf("current plan was not updated in place")
	}
}

func TestRegenerateDayWithClientWeek(t *testing.T) {
	env := newEnv(t, nil, true)

	week, err := planner.Fallback{}.GenerateWeek(planner.UserProfile{
		Age: 30, Gender: planner.GenderMale, WeightKg: 80, HeightCm: 180,
		ActivityLevel: planner.ActivitySedentary, Goal: planner.GoalLoseWeight,
	})
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(week.Week)

	w := env.do(t, env.handler.HandleRegenerateDay, http.MethodPost, "/v1/meal-plans/regenerate-day",
		`{"day":"Вторник","week":`+string(raw)+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp RegenerateDayResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Plan != nil || resp.Source != planner.SourceFallback || !resp.Day.Complete() {
		t.Fatalf("unexpected response: %+v", resp)
	}

	w = env.do(t, env.handler.HandleRegenerateDay, http.MethodPost, "/v1/meal-plans/regenerate-day", `{"day":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing day, got %d", w.Code)
	}
}

func TestUnauthorized(t *testing.T) {
	env := newEnv(t, nil, true)
	req := httptest.NewRequest(http.MethodGet, "/v1/meal-plans/current", nil)
	w := httptest.NewRecorder()
	env.handler.HandleGetCurrent(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
