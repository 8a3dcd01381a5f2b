package planner

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func mealJSON(name string, calories interface{}) string {
	return fmt.Sprintf(`{"name":%q,"type":"BREAKFAST","calories":%v,"proteins":20,"fats":10.5,"carbohydrates":40,"ingredients":["Гречка (60 г)"],"recipe":"Отварить"}`, name, calories)
}

func dayJSON(label string) string {
	return fmt.Sprintf(`{"day":%q,"breakfast":%s,"lunch":%s,"dinner":%s,"snack":%s,"totalCalories":1800,"macronutrients":{"proteins":120,"fats":60,"carbohydrates":200}}`,
		label,
		mealJSON("Завтрак "+label, 400),
		mealJSON("Обед "+label, 600),
		mealJSON("Ужин "+label, 550),
		mealJSON("Перекус "+label, 250),
	)
}

func weekJSON(key string, n int) string {
	days := make([]string, n)
	for i := range days {
		days[i] = dayJSON(WeekDays[i%len(WeekDays)])
	}
	return fmt.Sprintf(`{%q:[%s]}`, key, strings.Join(days, ","))
}

func TestDecodeWeek(t *testing.T) {
	for _, key := range []string{"week", "days"} {
		t.Run(key, func(t *testing.T) {
			week, err := DecodeWeek(weekJSON(key, 7))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(week.Week) != 7 {
				t.Fatalf("expected 7 days, got %d", len(week.Week))
			}
			day := week.Week[2]
			if day.Day != "Среда" {
				t.Fatalf("expected Среда, got %s", day.Day)
			}
			if !day.Complete() {
				t.Fatal("expected all four slots")
			}
			if day.Dinner.Type != MealDinner {
				t.Fatalf("expected slot type DINNER, got %s", day.Dinner.Type)
			}
			if day.Breakfast.Fats != 10.5 {
				t.Fatalf("expected fats 10.5, got %v", day.Breakfast.Fats)
			}
			if day.TotalCalories != 1800 {
				t.Fatalf("expected 1800, got %d", day.TotalCalories)
			}
		})
	}
}

func TestDecodeWeekRejectsWrongDayCount(t *testing.T) {
	for _, n := range []int{6, 8} {
		_, err := DecodeWeek(weekJSON("week", n))
		if !errors.Is(err, ErrSchema) {
			t.Fatalf("expected schema error for %d days, got %v", n, err)
		}
		if !strings.Contains(err.Error(), "AI did not return 7 days") {
			t.Fatalf("unexpected message: %v", err)
		}
	}
}

func TestDecodeCarbsRename(t *testing.T) {
	text := `{"day":"Вторник","breakfast":{"name":"Омлет","calories":350,"proteins":25,"fats":20,"carbs":40},"macronutrients":{"proteins":25,"fats":20,"carbs":40}}`
	day, err := DecodeDay(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Breakfast.Carbohydrates != 40 {
		t.Fatalf("expected carbohydrates 40, got %v", day.Breakfast.Carbohydrates)
	}
	if day.Macronutrients.Carbohydrates != 40 {
		t.Fatalf("expected day carbohydrates 40, got %v", day.Macronutrients.Carbohydrates)
	}
	if day.Breakfast.Type != MealBreakfast {
		t.Fatalf("expected type from slot, got %s", day.Breakfast.Type)
	}
}

func TestDecodeDayWrapperAndDefaults(t *testing.T) {
	text := `{"day":{"date":"2026-10-18","lunch":{"name":"Суп","calories":300.6,"proteins":10,"fats":5,"carbohydrates":30,"ingredients":[{"name":"Картофель","amount":"100 г"},{"name":"Морковь","quantity":50}]},"dinner":{"name":"Рыба","calories":400,"proteins":30,"fats":12,"carbohydrates":0,"ingredients":"Треска"}}}`
	day, err := DecodeDay(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day.Day != "2026-10-18" {
		t.Fatalf("expected date label, got %q", day.Day)
	}
	if day.Lunch.Calories != 301 {
		t.Fatalf("expected calories rounded to 301, got %d", day.Lunch.Calories)
	}
	if day.TotalCalories != 701 {
		t.Fatalf("expected summed total 701, got %d", day.TotalCalories)
	}
	if day.Macronutrients.Proteins != 40 {
		t.Fatalf("expected summed proteins 40, got %v", day.Macronutrients.Proteins)
	}
	want := []string{"Картофель (100 г)", "Морковь (50)"}
	if strings.Join(day.Lunch.Ingredients, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, day.Lunch.Ingredients)
	}
	if len(day.Dinner.Ingredients) != 1 || day.Dinner.Ingredients[0] != "Треска" {
		t.Fatalf("expected single ingredient, got %v", day.Dinner.Ingredients)
	}
	if day.Breakfast != nil || day.Complete() {
		t.Fatal("expected missing breakfast to stay empty")
	}
}

func TestDecodeSchemaErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
		path string
	}{
		{"string calories", `{"breakfast":` + mealJSON("Каша", `"350"`) + `}`, "breakfast.calories"},
		{"missing proteins", `{"lunch":{"name":"Суп","calories":300,"fats":5,"carbohydrates":30}}`, "lunch.proteins"},
		{"empty name", `{"dinner":{"name":" ","calories":300,"proteins":1,"fats":5,"carbohydrates":30}}`, "dinner.name"},
		{"meal not object", `{"snack":"яблоко"}`, "snack"},
		{"negative fats", `{"snack":{"name":"Орехи","calories":100,"proteins":1,"fats":-5,"carbohydrates":3}}`, "snack.fats"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDay(tc.text)
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SchemaError, got %v", err)
			}
			if se.Path != tc.path {
				t.Fatalf("expected path %s, got %s (%v)", tc.path, se.Path, err)
			}
		})
	}

	_, err := DecodeWeek(strings.Replace(weekJSON("week", 7), `"calories":550`, `"calories":"много"`, 1))
	var se *SchemaError
	if !errors.As(err, &se) || se.Path != "week[0].dinner.calories" {
		t.Fatalf("expected week[0].dinner.calories, got %v", err)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	for _, text := range []string{`{"week":`, `[1,2]`, `{"week":"нет"}`, `{}`} {
		if _, err := DecodeWeek(text); !errors.Is(err, ErrSchema) {
			t.Fatalf("expected schema error for %s, got %v", text, err)
		}
	}
}

func TestDecodeWeekLabelsDaysByPosition(t *testing.T) {
	days := make([]string, len(WeekDays))
	for i := range days {
		days[i] = strings.Replace(dayJSON(""), `"day":"",`, "", 1)
	}
	days[3] = dayJSON("Четверг")

	week, err := DecodeWeek(`{"week":[` + strings.Join(days, ",") + `]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, day := range week.Week {
		if day.Day != WeekDays[i] {
			t.Errorf("day %d: expected %s, got %q", i, WeekDays[i], day.Day)
		}
	}
	if i, ok := week.Day("Среда"); !ok || i != 2 {
		t.Fatalf("expected Среда at index 2, got %d %v", i, ok)
	}
}
