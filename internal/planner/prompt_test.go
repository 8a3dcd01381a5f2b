package planner

import (
	"errors"
	"strings"
	"testing"
)

func TestWeeklyPrompt(t *testing.T) {
	p := scenarioProfile()
	p.Allergies = []string{"Арахис", " ", "арахис", "Молоко"}

	prompt, err := PromptBuilder{}.Weekly(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"Возраст: 30",
		"Пол: мужской",
		"Вес: 80.0 кг",
		"Рост: 180.0 см",
		"сидячий образ жизни",
		"снижение веса",
		`"week"`,
		"Не повторяй блюда",
		"Воскресенье",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}

	if n := strings.Count(prompt, "Верни ТОЛЬКО"); n < 2 {
		t.Errorf("expected JSON-only instruction at least twice, got %d", n)
	}
	if n := strings.Count(prompt, "СТРОГО ИЗБЕГАЙ"); n != 2 {
		t.Errorf("expected allergy clause twice, got %d", n)
	}
	if !strings.Contains(prompt, "Арахис, Молоко") {
		t.Error("expected de-duplicated allergy list")
	}
	if !strings.HasSuffix(strings.TrimSpace(prompt), "Молоко.") {
		t.Error("expected trailing allergy reminder at the end of the prompt")
	}
}

func TestPromptWithoutAllergies(t *testing.T) {
	prompt, err := PromptBuilder{}.Daily(scenarioProfile(), "Пятница")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(prompt, "СТРОГО ИЗБЕГАЙ") {
		t.Error("allergy clause must be omitted when allergies are empty")
	}
	if !strings.Contains(prompt, `"day": "Пятница"`) {
		t.Error("expected day label in schema")
	}
	if !strings.Contains(prompt, "Аллергии и непереносимости: нет") {
		t.Error("expected explicit empty allergy line")
	}
}

func TestRegeneratePromptListsExistingMeals(t *testing.T) {
	prompt, err := PromptBuilder{}.Regenerate(scenarioProfile(), "Среда", []string{"Овсянка", "Борщ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "- Овсянка\n- Борщ") {
		t.Errorf("expected avoid list in prompt:\n%s", prompt)
	}
}

func TestPromptIncompleteProfile(t *testing.T) {
	if _, err := (PromptBuilder{}).Weekly(UserProfile{Age: 30}); !errors.Is(err, ErrIncompleteProfile) {
		t.Fatalf("expected ErrIncompleteProfile, got %v", err)
	}
}
