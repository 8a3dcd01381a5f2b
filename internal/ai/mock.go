package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/IDINaXI/Nutrio/internal/planner"
)

// MockGateway answers the way a real model does: JSON inside a markdown fence.
// It is used for local development and smoke tests.
type MockGateway struct {
	calls atomic.Int64
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

type mockDish struct {
	name     string
	calories int
	proteins float64
	fats     float64
	carbs    float64
	items    []string
}

var mockMenu = map[string][]mockDish{
	"breakfast": {
		{"Сырники со сметаной", 420, 28, 14, 45, []string{"Творог 5% (180 г)", "Яйцо (1 шт)", "Рисовая мука (30 г)", "Сметана 10% (30 г)"}},
		{"Гречневая каша с молоком", 380, 15, 9, 60, []string{"Гречка (60 г)", "Молоко 2.5% (200 мл)", "Мёд (10 г)"}},
		{"Омлет со шпинатом", 350, 24, 22, 8, []string{"Яйца (3 шт)", "Шпинат (50 г)", "Сыр (20 г)"}},
		{"Пшённая каша с тыквой", 390, 11, 8, 68, []string{"Пшено (60 г)", "Тыква (150 г)", "Молоко (150 мл)"}},
		{"Творог с ягодами", 300, 30, 6, 25, []string{"Творог 5% (200 г)", "Черника (80 г)", "Мёд (10 г)"}},
		{"Бутерброды с индейкой", 410, 27, 12, 44, []string{"Цельнозерновой хлеб (80 г)", "Индейка (80 г)", "Огурец (60 г)"}},
		{"Рисовая каша с яблоком", 370, 9, 7, 70, []string{"Рис (60 г)", "Яблоко (100 г)", "Молоко (150 мл)"}},
	},
	"lunch": {
		{"Борщ с говядиной", 520, 30, 18, 50, []string{"Говядина (120 г)", "Свёкла (100 г)", "Капуста (100 г)", "Картофель (100 г)"}},
		{"Куриный суп с лапшой", 450, 32, 10, 52, []string{"Куриное филе (120 г)", "Лапша (50 г)", "Морковь (50 г)"}},
		{"Плов с курицей", 610, 35, 18, 75, []string{"Рис (80 г)", "Куриное бедро (150 г)", "Морковь (80 г)"}},
		{"Уха из судака", 400, 34, 9, 35, []string{"Судак (150 г)", "Картофель (120 г)", "Лук (40 г)"}},
		{"Голубцы с индейкой", 530, 33, 17, 55, []string{"Капуста (150 г)", "Фарш индейки (150 г)", "Рис (40 г)"}},
		{"Щи из свежей капусты", 420, 22, 14, 45, []string{"Капуста (150 г)", "Говядина (100 г)", "Картофель (80 г)"}},
		{"Гречка с тефтелями", 580, 36, 19, 60, []string{"Гречка (70 г)", "Фарш говяжий (150 г)", "Томатный соус (50 г)"}},
	},
	"dinner": {
		{"Треска с овощами на пару", 420, 38, 8, 30, []string{"Треска (180 г)", "Брокколи (150 г)", "Морковь (80 г)"}},
		{"Куриные котлеты с булгуром", 560, 40, 16, 55, []string{"Куриный фарш (180 г)", "Булгур (60 г)"}},
		{"Запечённая индейка с овощами", 500, 42, 14, 35, []string{"Индейка (200 г)", "Кабачок (150 г)", "Перец (100 г)"}},
		{"Рагу из кролика", 530, 39, 20, 38, []string{"Кролик (180 г)", "Картофель (120 г)", "Морковь (60 г)"}},
		{"Форель с киноа", 580, 37, 24, 45, []string{"Форель (160 г)", "Киноа (60 г)", "Лимон (20 г)"}},
		{"Тушёная говядина с фасолью", 600, 45, 20, 48, []string{"Говядина (170 г)", "Фасоль (120 г)", "Томаты (100 г)"}},
		{"Фаршированные перцы", 480, 30, 16, 45, []string{"Перец (2 шт)", "Фарш индейки (150 г)", "Рис (40 г)"}},
	},
	"snack": {
		{"Кефир с отрубями", 180, 10, 4, 22, []string{"Кефир 1% (250 мл)", "Овсяные отруби (20 г)"}},
		{"Яблоко и грецкие орехи", 230, 5, 14, 24, []string{"Яблоко (150 г)", "Грецкие орехи (20 г)"}},
		{"Хумус с морковью", 210, 7, 10, 22, []string{"Хумус (60 г)", "Морковь (120 г)"}},
		{"Ряженка с бананом", 250, 9, 6, 38, []string{"Ряженка (200 мл)", "Банан (100 г)"}},
		{"Творожок с корицей", 190, 20, 5, 14, []string{"Творог (150 г)", "Корица (2 г)"}},
		{"Сухофрукты и миндаль", 260, 6, 12, 32, []string{"Курага (30 г)", "Миндаль (20 г)"}},
		{"Протеиновый батончик", 200, 15, 7, 20, []string{"Протеиновый батончик (1 шт)"}},
	},
}

var (
	dayLabelPattern = regexp.MustCompile(`"day":\s*"([^"]+)"`)
	allergyPattern  = regexp.MustCompile(`СТРОГО ИЗБЕГАЙ: ([^\n]+)\.`)
)

// promptAllergies достаёт аллергены из финального напоминания промпта.
func promptAllergies(prompt string) []string {
	match := allergyPattern.FindStringSubmatch(prompt)
	if match == nil {
		return nil
	}
	var out []string
	for _, a := range strings.Split(match[1], ", ") {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (d mockDish) mentions(allergies []string) bool {
	text := strings.ToLower(d.name + " " + strings.Join(d.items, " "))
	for _, a := range allergies {
		if strings.Contains(text, a) {
			return true
		}
	}
	return false
}

func (m *MockGateway) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	call := int(m.calls.Add(1))
	allergies := promptAllergies(prompt)

	var payload interface{}
	if strings.Contains(prompt, `"week"`) {
		week := make([]map[string]interface{}, 0, len(planner.WeekDays))
		for i, label := range planner.WeekDays {
			week = append(week, mockDay(label, i, "", allergies))
		}
		payload = map[string]interface{}{"week": week}
	} else {
		label := planner.WeekDays[0]
		if match := dayLabelPattern.FindStringSubmatch(prompt); match != nil {
			label = match[1]
		}
		offset := planner.DayIndex(label)
		if offset < 0 {
			offset = 0
		}
		// повторные запросы дают другой набор блюд
		payload = mockDay(label, offset+call, prompt, allergies)
	}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("mock: %w", err)
	}
	return "```json\n" + string(body) + "\n```", nil
}

// mockDay пропускает блюда, перечисленные в промпте списком "- название",
// и блюда с аллергенами пользователя.
func mockDay(label string, offset int, prompt string, allergies []string) map[string]interface{} {
	day := map[string]interface{}{"day": label}
	total := 0
	var proteins, fats, carbs float64
	for _, slot := range planner.Slots {
		dishes := mockMenu[slot.Key]
		d := dishes[offset%len(dishes)]
		for k := 0; k < len(dishes); k++ {
			candidate := dishes[(offset+k)%len(dishes)]
			if !strings.Contains(prompt, "- "+candidate.name+"\n") && !candidate.mentions(allergies) {
				d = candidate
				break
			}
		}
		day[slot.Key] = map[string]interface{}{
			"name":        d.name,
			"type":        slot.Type,
			"calories":    d.calories,
			"proteins":    d.proteins,
			"fats":        d.fats,
			"carbs":       d.carbs,
			"ingredients": d.items,
			"recipe":      "Приготовить по классическому рецепту.",
			"description": "Демо-блюдо",
		}
		total += d.calories
		proteins += d.proteins
		fats += d.fats
		carbs += d.carbs
	}
	day["totalCalories"] = total
	day["macronutrients"] = map[string]interface{}{
		"proteins":      proteins,
		"fats":          fats,
		"carbohydrates": carbs,
	}
	return day
}
