package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase    string
	token      string
	client     = &http.Client{Timeout: 2 * time.Minute}
	testDate   string
	createdIDs = make(map[string]string) // id созданных ресурсов для последующих шагов
)

func main() {
	fmt.Println("=== Nutrio E2E Smoke Test ===")
	fmt.Println()

	apiBase = getEnv("API_BASE_URL", defaultAPIBase)
	token = getEnv("SMOKE_TOKEN", "")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Println()

	testDate = time.Now().Format("2006-01-02")

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Register", testRegister},
		{"Update Profile", testUpdateProfile},
		{"Nutrition Targets", testTargets},
		{"Generate Meal Plan", testGeneratePlan},
		{"Current Meal Plan", testCurrentPlan},
		{"Regenerate Day", testRegenerateDay},
		{"Log Weight", testLogWeight},
		{"Log Measurement", testLogMeasurement},
		{"Create Reminder", testCreateReminder},
		{"Today Reminders", testTodayReminders},
		{"Create Report (CSV)", testCreateReport},
		{"Download Report", testDownloadReport},
		{"Delete Report", testDeleteReport},
		{"Delete Reminder", testDeleteReminder},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	return call("GET", "/healthz", nil, http.StatusOK, nil)
}

func testRegister() error {
	// с готовым токеном регистрация не нужна
	if token != "" {
		return nil
	}

	payload := map[string]interface{}{
		"email":    fmt.Sprintf("smoke+%d@nutrio.local", time.Now().UnixNano()),
		"password": "smoke-password",
		"name":     "Smoke",
	}
	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := call("POST", "/v1/auth/register", payload, http.StatusCreated, &result); err != nil {
		return err
	}
	if result.AccessToken == "" {
		return fmt.Errorf("empty access_token")
	}
	token = result.AccessToken
	return nil
}

func testUpdateProfile() error {
	payload := map[string]interface{}{
		"age":            30,
		"height_cm":      175,
		"weight_kg":      70,
		"gender":         "MALE",
		"goal":           "MAINTAIN_WEIGHT",
		"activity_level": "MODERATELY_ACTIVE",
	}
	return call("PUT", "/v1/users/me", payload, http.StatusOK, nil)
}

func testTargets() error {
	var result struct {
		TotalCalories int `json:"total_calories"`
	}
	if err := call("GET", "/v1/nutrition/targets", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if result.TotalCalories <= 0 {
		return fmt.Errorf("total_calories=%d", result.TotalCalories)
	}
	return nil
}

func testGeneratePlan() error {
	var result struct {
		Source string            `json:"source"`
		Week   []json.RawMessage `json:"week"`
	}
	if err := call("POST", "/v1/meal-plans/generate", nil, http.StatusCreated, &result); err != nil {
		return err
	}
	if len(result.Week) != 7 {
		return fmt.Errorf("week has %d days", len(result.Week))
	}
	fmt.Printf("(source=%s) ", result.Source)
	return nil
}

func testCurrentPlan() error {
	var result struct {
		IsCurrent bool `json:"is_current"`
	}
	if err := call("GET", "/v1/meal-plans/current", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if !result.IsCurrent {
		return fmt.Errorf("plan is not current")
	}
	return nil
}

func testRegenerateDay() error {
	var result struct {
		Day struct {
			Day string `json:"day"`
		} `json:"day"`
	}
	payload := map[string]interface{}{"day": "Среда"}
	if err := call("POST", "/v1/meal-plans/regenerate-day", payload, http.StatusOK, &result); err != nil {
		return err
	}
	if result.Day.Day != "Среда" {
		return fmt.Errorf("day=%q", result.Day.Day)
	}
	return nil
}

func testLogWeight() error {
	payload := map[string]interface{}{"weight_kg": 70.4, "date": testDate}
	return call("POST", "/v1/weights", payload, http.StatusCreated, nil)
}

func testLogMeasurement() error {
	payload := map[string]interface{}{"waist_cm": 82.5, "date": testDate}
	return call("POST", "/v1/measurements", payload, http.StatusCreated, nil)
}

func testCreateReminder() error {
	payload := map[string]interface{}{
		"name":         "Витамин D",
		"dosage":       "1 капсула",
		"time":         "09:00",
		"days_of_week": []int{1, 2, 3, 4, 5, 6, 7},
	}
	var result struct {
		ID int64 `json:"id"`
	}
	if err := call("POST", "/v1/reminders", payload, http.StatusCreated, &result); err != nil {
		return err
	}
	createdIDs["reminder"] = fmt.Sprint(result.ID)
	return nil
}

func testTodayReminders() error {
	var result struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := call("GET", "/v1/reminders/today", nil, http.StatusOK, &result); err != nil {
		return err
	}
	if len(result.Items) == 0 {
		return fmt.Errorf("daily reminder missing from today list")
	}
	return nil
}

func testCreateReport() error {
	from := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	payload := map[string]interface{}{"from": from, "to": testDate, "format": "csv"}

	var result struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := call("POST", "/v1/reports", payload, http.StatusCreated, &result); err != nil {
		return err
	}
	if result.Status != "ready" {
		return fmt.Errorf("status=%s", result.Status)
	}
	createdIDs["report"] = result.ID
	return nil
}

func testDownloadReport() error {
	reportID, ok := createdIDs["report"]
	if !ok {
		return fmt.Errorf("no report ID from create step")
	}

	req, err := http.NewRequest("GET", apiBase+"/v1/reports/"+reportID+"/download", nil)
	if err != nil {
		return err
	}
	addAuth(req)

	// presigned-редиректы (S3) client проходит сам
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(data, []byte("date,weight_kg")) {
		return fmt.Errorf("unexpected csv header: %.40q", data)
	}
	return nil
}

func testDeleteReport() error {
	reportID, ok := createdIDs["report"]
	if !ok {
		return fmt.Errorf("no report ID from create step")
	}
	return call("DELETE", "/v1/reports/"+reportID, nil, http.StatusNoContent, nil)
}

func testDeleteReminder() error {
	reminderID, ok := createdIDs["reminder"]
	if !ok {
		return fmt.Errorf("no reminder ID from create step")
	}
	return call("DELETE", "/v1/reminders/"+reminderID, nil, http.StatusNoContent, nil)
}

// Helper functions

func call(method, path string, payload interface{}, wantStatus int, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuth(req)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

func addAuth(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
