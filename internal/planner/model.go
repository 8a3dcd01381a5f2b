package planner

import "strings"

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "SEDENTARY"
	ActivityLightlyActive    ActivityLevel = "LIGHTLY_ACTIVE"
	ActivityModeratelyActive ActivityLevel = "MODERATELY_ACTIVE"
	ActivityVeryActive       ActivityLevel = "VERY_ACTIVE"
	ActivityExtremelyActive  ActivityLevel = "EXTREMELY_ACTIVE"
)

type Goal string

const (
	GoalLoseWeight     Goal = "LOSE_WEIGHT"
	GoalMaintainWeight Goal = "MAINTAIN_WEIGHT"
	GoalGainWeight     Goal = "GAIN_WEIGHT"
)

type MealType string

const (
	MealBreakfast MealType = "BREAKFAST"
	MealLunch     MealType = "LUNCH"
	MealDinner    MealType = "DINNER"
	MealSnack     MealType = "SNACK"
)

// Slots lists the JSON key and meal type of each slot in canonical order.
var Slots = []struct {
	Key  string
	Type MealType
}{
	{"breakfast", MealBreakfast},
	{"lunch", MealLunch},
	{"dinner", MealDinner},
	{"snack", MealSnack},
}

// WeekDays are the weekday labels used in prompts and plans.
var WeekDays = []string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}

// DayIndex returns the weekday index (0 = Monday) or -1.
func DayIndex(label string) int {
	label = strings.TrimSpace(label)
	for i, d := range WeekDays {
		if strings.EqualFold(d, label) {
			return i
		}
	}
	return -1
}

// UserProfile is the generation input. The storage layer owns it.
type UserProfile struct {
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	WeightKg      float64       `json:"weight_kg"`
	HeightCm      float64       `json:"height_cm"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`
	Allergies     []string      `json:"allergies,omitempty"`
}

// Validate checks that every field needed for generation is set.
func (p UserProfile) Validate() error {
	var missing []string
	if p.Age <= 0 {
		missing = append(missing, "age")
	}
	if p.Gender != GenderMale && p.Gender != GenderFemale {
		missing = append(missing, "gender")
	}
	if p.WeightKg <= 0 {
		missing = append(missing, "weight_kg")
	}
	if p.HeightCm <= 0 {
		missing = append(missing, "height_cm")
	}
	if _, ok := activityMultipliers[p.ActivityLevel]; !ok {
		missing = append(missing, "activity_level")
	}
	if _, ok := goalMultipliers[p.Goal]; !ok {
		missing = append(missing, "goal")
	}
	if len(missing) > 0 {
		return &IncompleteProfileError{Missing: missing}
	}
	return nil
}

// allergyList возвращает аллергены без пустых строк и дублей (без учёта регистра).
func (p UserProfile) allergyList() []string {
	seen := make(map[string]bool, len(p.Allergies))
	out := make([]string, 0, len(p.Allergies))
	for _, a := range p.Allergies {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

type Meal struct {
	Name          string   `json:"name"`
	Type          MealType `json:"type"`
	Calories      int      `json:"calories"`
	Proteins      float64  `json:"proteins"`
	Fats          float64  `json:"fats"`
	Carbohydrates float64  `json:"carbohydrates"`
	Ingredients   []string `json:"ingredients"`
	Recipe        string   `json:"recipe,omitempty"`
	Description   string   `json:"description,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

type Macronutrients struct {
	Proteins      float64 `json:"proteins"`
	Fats          float64 `json:"fats"`
	Carbohydrates float64 `json:"carbohydrates"`
}

type DayPlan struct {
	Day            string         `json:"day"`
	Breakfast      *Meal          `json:"breakfast,omitempty"`
	Lunch          *Meal          `json:"lunch,omitempty"`
	Dinner         *Meal          `json:"dinner,omitempty"`
	Snack          *Meal          `json:"snack,omitempty"`
	TotalCalories  int            `json:"totalCalories"`
	Macronutrients Macronutrients `json:"macronutrients"`
}

// Meals returns the filled slots in canonical order.
func (d DayPlan) Meals() []*Meal {
	out := make([]*Meal, 0, 4)
	for _, m := range []*Meal{d.Breakfast, d.Lunch, d.Dinner, d.Snack} {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Complete reports whether all four slots are filled.
func (d DayPlan) Complete() bool {
	return d.Breakfast != nil && d.Lunch != nil && d.Dinner != nil && d.Snack != nil
}

func (d *DayPlan) slot(t MealType) **Meal {
	switch t {
	case MealBreakfast:
		return &d.Breakfast
	case MealLunch:
		return &d.Lunch
	case MealDinner:
		return &d.Dinner
	default:
		return &d.Snack
	}
}

type WeekPlan struct {
	Week []DayPlan `json:"week"`
}

// Day finds a day by label, ignoring case.
func (w WeekPlan) Day(label string) (int, bool) {
	for i, d := range w.Week {
		if sameDay(d.Day, label) {
			return i, true
		}
	}
	return -1, false
}

func sameDay(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// normalizeName приводит название блюда к ключу сравнения.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
