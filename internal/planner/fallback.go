package planner

import "math"

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtremelyActive:  1.9,
}

var goalMultipliers = map[Goal]float64{
	GoalLoseWeight:     0.85,
	GoalMaintainWeight: 1.0,
	GoalGainWeight:     1.15,
}

// Targets are the daily targets calculated from a profile.
type Targets struct {
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	TotalCalories int     `json:"total_calories"`
	Proteins      float64 `json:"proteins"`
	Fats          float64 `json:"fats"`
	Carbohydrates float64 `json:"carbohydrates"`
}

// CalculateTargets computes BMR (Mifflin-St Jeor without the sex term), TDEE and macros.
func CalculateTargets(p UserProfile) (Targets, error) {
	if err := p.Validate(); err != nil {
		return Targets{}, err
	}

	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) + 5
	tdee := bmr * activityMultipliers[p.ActivityLevel] * goalMultipliers[p.Goal]
	proteins := p.WeightKg * 2.2
	fats := tdee * 0.25 / 9
	carbs := (tdee - proteins*4 - fats*9) / 4

	return Targets{
		BMR:           round1(bmr),
		TDEE:          round1(tdee),
		TotalCalories: int(math.Round(tdee)),
		Proteins:      round1(proteins),
		Fats:          round1(fats),
		Carbohydrates: round1(math.Max(carbs, 0)),
	}, nil
}

type catalogEntry struct {
	name        string
	calories    int
	protein     float64 // доли суточных макросов
	fat         float64
	carbs       float64
	ingredients []string
	recipe      string
}

// catalog: статичный набор блюд на каждый слот.
var catalog = map[MealType][]catalogEntry{
	MealBreakfast: {
		{
			name: "Протеиновая овсянка", calories: 450, protein: 0.20, fat: 0.15, carbs: 0.25,
			ingredients: []string{"Овсяные хлопья", "Протеиновый порошок", "Банан", "Миндальное молоко", "Семена чиа"},
			recipe:      "Сварите овсянку на миндальном молоке, добавьте протеиновый порошок, украсьте бананом и семенами чиа",
		},
		{
			name: "Тост с авокадо и яйцами", calories: 500, protein: 0.25, fat: 0.20, carbs: 0.20,
			ingredients: []string{"Цельнозерновой хлеб", "Авокадо", "Яйца", "Помидоры черри", "Микрозелень"},
			recipe:      "Подсушите хлеб, намажьте размятым авокадо, выложите яйца пашот и помидоры, посыпьте зеленью",
		},
		{
			name: "Греческий йогурт с гранолой", calories: 400, protein: 0.30, fat: 0.10, carbs: 0.15,
			ingredients: []string{"Греческий йогурт", "Гранола", "Смесь ягод", "Мёд", "Миндаль"},
			recipe:      "Выложите слоями йогурт, гранолу и ягоды, полейте мёдом и посыпьте миндалём",
		},
	},
	MealLunch: {
		{
			name: "Салат с куриной грудкой", calories: 550, protein: 0.30, fat: 0.15, carbs: 0.20,
			ingredients: []string{"Куриная грудка", "Листья салата", "Огурец", "Помидоры", "Оливковое масло", "Киноа"},
			recipe:      "Обжарьте курицу на гриле, нарежьте овощи, смешайте с киноа и заправьте оливковым маслом",
		},
		{
			name: "Средиземноморская чаша", calories: 600, protein: 0.25, fat: 0.20, carbs: 0.25,
			ingredients: []string{"Нут", "Булгур", "Огурец", "Сыр фета", "Оливки", "Хумус"},
			recipe:      "Отварите булгур, выложите в чашу с нутом, овощами, фетой и оливками, добавьте хумус",
		},
		{
			name: "Будда-боул с чечевицей", calories: 500, protein: 0.20, fat: 0.15, carbs: 0.30,
			ingredients: []string{"Чечевица", "Бурый рис", "Батат", "Шпинат", "Тахини"},
			recipe:      "Отварите чечевицу и рис, запеките батат, соберите боул со шпинатом и полейте тахини",
		},
	},
	MealDinner: {
		{
			name: "Стейк с овощами", calories: 650, protein: 0.35, fat: 0.25, carbs: 0.15,
			ingredients: []string{"Говяжий стейк", "Брокколи", "Болгарский перец", "Кабачок", "Оливковое масло"},
			recipe:      "Обжарьте стейк до нужной прожарки, овощи запеките с оливковым маслом",
		},
		{
			name: "Запеченный лосось с киноа", calories: 600, protein: 0.30, fat: 0.20, carbs: 0.20,
			ingredients: []string{"Филе лосося", "Киноа", "Спаржа", "Лимон", "Чеснок"},
			recipe:      "Запеките лосось с лимоном и чесноком 15 минут при 200 °C, подавайте с киноа и спаржей",
		},
		{
			name: "Стир-фрай с индейкой", calories: 550, protein: 0.25, fat: 0.15, carbs: 0.25,
			ingredients: []string{"Филе индейки", "Рисовая лапша", "Морковь", "Стручковая фасоль", "Соевый соус"},
			recipe:      "Быстро обжарьте индейку с овощами в воке, добавьте лапшу и соевый соус",
		},
	},
	MealSnack: {
		{
			name: "Протеиновый смузи", calories: 300, protein: 0.15, fat: 0.10, carbs: 0.10,
			ingredients: []string{"Протеиновый порошок", "Банан", "Шпинат", "Миндальное молоко"},
			recipe:      "Взбейте все ингредиенты в блендере до однородности",
		},
		{
			name: "Яблоко с ореховой пастой", calories: 250, protein: 0.10, fat: 0.15, carbs: 0.15,
			ingredients: []string{"Яблоко", "Арахисовая паста"},
			recipe:      "Нарежьте яблоко дольками и подавайте с арахисовой пастой",
		},
		{
			name: "Греческий йогурт с орехами", calories: 200, protein: 0.20, fat: 0.10, carbs: 0.05,
			ingredients: []string{"Греческий йогурт", "Грецкие орехи", "Корица"},
			recipe:      "Посыпьте йогурт рублеными орехами и корицей",
		},
	},
}

func (e catalogEntry) meal(t MealType, tg Targets) *Meal {
	ingredients := make([]string, len(e.ingredients))
	copy(ingredients, e.ingredients)
	return &Meal{
		Name:          e.name,
		Type:          t,
		Calories:      e.calories,
		Proteins:      round1(tg.Proteins * e.protein),
		Fats:          round1(tg.Fats * e.fat),
		Carbohydrates: round1(tg.Carbohydrates * e.carbs),
		Ingredients:   ingredients,
		Recipe:        e.recipe,
	}
}

// Fallback is the deterministic plan generator that needs no AI.
type Fallback struct{}

// GenerateWeek builds a week: day i takes the i-th catalog dish in each slot, wrapping around.
func (Fallback) GenerateWeek(p UserProfile) (WeekPlan, error) {
	tg, err := CalculateTargets(p)
	if err != nil {
		return WeekPlan{}, err
	}
	allergies := p.allergyList()
	week := WeekPlan{Week: make([]DayPlan, len(WeekDays))}
	for i, label := range WeekDays {
		week.Week[i] = buildDay(label, tg, allergies, func(MealType, []catalogEntry) int { return i })
	}
	return week, nil
}

// GenerateDay builds a day offset into the catalog by its weekday index (0 for other labels).
func (Fallback) GenerateDay(p UserProfile, label string) (DayPlan, error) {
	tg, err := CalculateTargets(p)
	if err != nil {
		return DayPlan{}, err
	}
	offset := rotationOffset(label)
	return buildDay(label, tg, p.allergyList(), func(MealType, []catalogEntry) int { return offset }), nil
}

// GenerateRotatedDay picks, per slot, the dish used least often in the other days of the week.
func (Fallback) GenerateRotatedDay(p UserProfile, label string, week WeekPlan) (DayPlan, error) {
	tg, err := CalculateTargets(p)
	if err != nil {
		return DayPlan{}, err
	}
	used := usedNames(week, label)
	offset := rotationOffset(label)

	return buildDay(label, tg, p.allergyList(), func(t MealType, entries []catalogEntry) int {
		best, bestCount := offset, -1
		for k := 0; k < len(entries); k++ {
			idx := (offset + k) % len(entries)
			count := used[normalizeName(entries[idx].name)]
			if bestCount < 0 || count < bestCount {
				best, bestCount = idx, count
			}
		}
		return best
	}), nil
}

// buildDay заполняет слоты; блюда с аллергенами пропускаются в пользу следующих по кругу.
func buildDay(label string, tg Targets, allergies []string, pick func(MealType, []catalogEntry) int) DayPlan {
	day := DayPlan{
		Day:           label,
		TotalCalories: tg.TotalCalories,
		Macronutrients: Macronutrients{
			Proteins:      tg.Proteins,
			Fats:          tg.Fats,
			Carbohydrates: tg.Carbohydrates,
		},
	}
	for _, s := range Slots {
		entries := catalog[s.Type]
		idx := safeIndex(entries, pick(s.Type, entries)%len(entries), allergies)
		*day.slot(s.Type) = entries[idx].meal(s.Type, tg)
	}
	return day
}

func rotationOffset(label string) int {
	if i := DayIndex(label); i >= 0 {
		return i
	}
	return 0
}

// usedNames считает нормализованные названия блюд во всех днях, кроме label.
func usedNames(week WeekPlan, label string) map[string]int {
	used := make(map[string]int)
	for _, d := range week.Week {
		if sameDay(d.Day, label) {
			continue
		}
		for _, m := range d.Meals() {
			used[normalizeName(m.Name)]++
		}
	}
	return used
}

func sumMacros(d DayPlan) Macronutrients {
	var m Macronutrients
	for _, meal := range d.Meals() {
		m.Proteins += meal.Proteins
		m.Fats += meal.Fats
		m.Carbohydrates += meal.Carbohydrates
	}
	return Macronutrients{
		Proteins:      round1(m.Proteins),
		Fats:          round1(m.Fats),
		Carbohydrates: round1(m.Carbohydrates),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
