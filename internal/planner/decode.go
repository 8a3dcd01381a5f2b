package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DecodeWeek decodes cleaned JSON into a week plan. Both "week" and "days"
// keys are accepted and exactly seven days are required.
func DecodeWeek(text string) (WeekPlan, error) {
	root, err := parseObject(text)
	if err != nil {
		return WeekPlan{}, err
	}

	key := "week"
	rawDays, ok := root[key]
	if !ok {
		key = "days"
		rawDays, ok = root[key]
	}
	if !ok {
		return WeekPlan{}, schemaErrorf("week", "missing key")
	}
	days, ok := rawDays.([]interface{})
	if !ok {
		return WeekPlan{}, schemaErrorf(key, "expected array, got %s", jsonKind(rawDays))
	}
	if len(days) != len(WeekDays) {
		return WeekPlan{}, schemaErrorf(key, "AI did not return 7 days (got %d)", len(days))
	}

	week := WeekPlan{Week: make([]DayPlan, 0, len(days))}
	for i, raw := range days {
		path := fmt.Sprintf("%s[%d]", key, i)
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return WeekPlan{}, schemaErrorf(path, "expected object, got %s", jsonKind(raw))
		}
		day, err := bindDay(path, obj)
		if err != nil {
			return WeekPlan{}, err
		}
		// без метки день получает название по позиции в неделе
		if day.Day == "" {
			day.Day = WeekDays[i]
		}
		week.Week = append(week.Week, day)
	}
	return week, nil
}

// DecodeDay decodes a day plan: the day object itself or a {"day": {...}} wrapper.
func DecodeDay(text string) (DayPlan, error) {
	root, err := parseObject(text)
	if err != nil {
		return DayPlan{}, err
	}
	path := "day"
	if inner, ok := root["day"].(map[string]interface{}); ok {
		root = inner
	} else {
		path = ""
	}
	return bindDay(path, root)
}

func parseObject(text string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, &SchemaError{Msg: "invalid json: " + err.Error()}
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, &SchemaError{Msg: "expected object, got " + jsonKind(v)}
	}
	return obj, nil
}

func bindDay(path string, obj map[string]interface{}) (DayPlan, error) {
	var day DayPlan

	for _, key := range []string{"day", "date"} {
		if s, ok := obj[key].(string); ok {
			day.Day = strings.TrimSpace(s)
			break
		}
	}

	for _, s := range Slots {
		raw, ok := obj[s.Key]
		if !ok || raw == nil {
			continue
		}
		mealPath := join(path, s.Key)
		m, ok := raw.(map[string]interface{})
		if !ok {
			return DayPlan{}, schemaErrorf(mealPath, "expected object, got %s", jsonKind(raw))
		}
		meal, err := bindMeal(mealPath, m)
		if err != nil {
			return DayPlan{}, err
		}
		meal.Type = s.Type
		*day.slot(s.Type) = meal
	}

	if raw, ok := obj["totalCalories"]; ok && raw != nil {
		v, err := number(join(path, "totalCalories"), raw)
		if err != nil {
			return DayPlan{}, err
		}
		day.TotalCalories = int(math.Round(v))
	} else {
		for _, m := range day.Meals() {
			day.TotalCalories += m.Calories
		}
	}

	if raw, ok := obj["macronutrients"]; ok && raw != nil {
		mPath := join(path, "macronutrients")
		m, ok := raw.(map[string]interface{})
		if !ok {
			return DayPlan{}, schemaErrorf(mPath, "expected object, got %s", jsonKind(raw))
		}
		reconcile(m)
		macros, err := bindMacros(mPath, m)
		if err != nil {
			return DayPlan{}, err
		}
		day.Macronutrients = macros
	} else {
		day.Macronutrients = sumMacros(day)
	}

	return day, nil
}

// reconcile приводит ключи к канонической схеме: "type" дублирует слот,
// "carbs" переименовывается в "carbohydrates".
func reconcile(obj map[string]interface{}) {
	delete(obj, "type")
	if v, ok := obj["carbs"]; ok {
		if _, has := obj["carbohydrates"]; !has {
			obj["carbohydrates"] = v
		}
		delete(obj, "carbs")
	}
}

func bindMeal(path string, obj map[string]interface{}) (*Meal, error) {
	reconcile(obj)

	name, ok := obj["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, schemaErrorf(join(path, "name"), "required non-empty string")
	}
	meal := &Meal{Name: strings.TrimSpace(name)}

	calories, err := requiredNumber(path, "calories", obj)
	if err != nil {
		return nil, err
	}
	if calories < 0 {
		return nil, schemaErrorf(join(path, "calories"), "must be >= 0")
	}
	meal.Calories = int(math.Round(calories))

	macros, err := bindMacros(path, obj)
	if err != nil {
		return nil, err
	}
	meal.Proteins = macros.Proteins
	meal.Fats = macros.Fats
	meal.Carbohydrates = macros.Carbohydrates

	meal.Ingredients, err = ingredients(join(path, "ingredients"), obj["ingredients"])
	if err != nil {
		return nil, err
	}

	for key, dst := range map[string]*string{
		"recipe":      &meal.Recipe,
		"description": &meal.Description,
		"imageUrl":    &meal.ImageURL,
	} {
		raw, ok := obj[key]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return nil, schemaErrorf(join(path, key), "expected string, got %s", jsonKind(raw))
		}
		*dst = s
	}
	return meal, nil
}

func bindMacros(path string, obj map[string]interface{}) (Macronutrients, error) {
	var m Macronutrients
	fields := []struct {
		key string
		dst *float64
	}{
		{"proteins", &m.Proteins},
		{"fats", &m.Fats},
		{"carbohydrates", &m.Carbohydrates},
	}
	for _, f := range fields {
		key, dst := f.key, f.dst
		v, err := requiredNumber(path, key, obj)
		if err != nil {
			return Macronutrients{}, err
		}
		if v < 0 {
			return Macronutrients{}, schemaErrorf(join(path, key), "must be >= 0")
		}
		*dst = v
	}
	return m, nil
}

// ingredients принимает массив строк, массив объектов {name, amount|quantity} или одну строку.
func ingredients(path string, raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		return []string{strings.TrimSpace(v)}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			switch it := item.(type) {
			case string:
				out = append(out, it)
			case map[string]interface{}:
				name, ok := it["name"].(string)
				if !ok || name == "" {
					return nil, schemaErrorf(join(itemPath, "name"), "required string")
				}
				amount := firstScalar(it, "amount", "quantity")
				if amount != "" {
					name = fmt.Sprintf("%s (%s)", name, amount)
				}
				out = append(out, name)
			default:
				return nil, schemaErrorf(itemPath, "expected string or object, got %s", jsonKind(item))
			}
		}
		return out, nil
	default:
		return nil, schemaErrorf(path, "expected array, got %s", jsonKind(raw))
	}
}

func firstScalar(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func requiredNumber(path, key string, obj map[string]interface{}) (float64, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return 0, schemaErrorf(join(path, key), "missing required number")
	}
	return number(join(path, key), raw)
}

func number(path string, raw interface{}) (float64, error) {
	n, ok := raw.(json.Number)
	if !ok {
		return 0, schemaErrorf(path, "expected number, got %s", jsonKind(raw))
	}
	v, err := n.Float64()
	if err != nil {
		return 0, schemaErrorf(path, "malformed number %q", n.String())
	}
	return v, nil
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// EncodeWeek encodes a week in the canonical schema.
func EncodeWeek(w WeekPlan) ([]byte, error) {
	return encode(w)
}

// EncodeDay encodes a day in the canonical schema.
func EncodeDay(d DayPlan) ([]byte, error) {
	return encode(d)
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
