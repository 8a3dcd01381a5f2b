package planner

import "strings"

// containsAllergen reports the first allergen named in the meal's name,
// ingredients or recipe. Matching is a case-insensitive substring check.
func containsAllergen(m *Meal, allergies []string) (string, bool) {
	if m == nil || len(allergies) == 0 {
		return "", false
	}
	fields := make([]string, 0, len(m.Ingredients)+3)
	fields = append(fields, m.Name, m.Recipe, m.Description)
	fields = append(fields, m.Ingredients...)
	return matchAllergen(fields, allergies)
}

func (e catalogEntry) containsAllergen(allergies []string) bool {
	if len(allergies) == 0 {
		return false
	}
	fields := make([]string, 0, len(e.ingredients)+2)
	fields = append(fields, e.name, e.recipe)
	fields = append(fields, e.ingredients...)
	_, ok := matchAllergen(fields, allergies)
	return ok
}

func matchAllergen(fields, allergies []string) (string, bool) {
	for _, a := range allergies {
		needle := strings.ToLower(strings.TrimSpace(a))
		if needle == "" {
			continue
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), needle) {
				return a, true
			}
		}
	}
	return "", false
}

// checkAllergens rejects an AI day that names one of the user's allergens.
func checkAllergens(path string, d DayPlan, allergies []string) error {
	for _, s := range Slots {
		m := *d.slot(s.Type)
		if a, ok := containsAllergen(m, allergies); ok {
			return schemaErrorf(join(path, s.Key), "meal contains allergen %q", a)
		}
	}
	return nil
}

// safeIndex starts at idx and returns the first catalog entry free of allergens.
// When every entry in the slot matches, idx is kept.
func safeIndex(entries []catalogEntry, idx int, allergies []string) int {
	for k := 0; k < len(entries); k++ {
		i := (idx + k) % len(entries)
		if !entries[i].containsAllergen(allergies) {
			return i
		}
	}
	return idx
}
