package planner

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(promptFS, "prompts/*.tmpl"))

var genderLabels = map[Gender]string{
	GenderMale:   "мужской",
	GenderFemale: "женский",
}

var activityLabels = map[ActivityLevel]string{
	ActivitySedentary:        "сидячий образ жизни",
	ActivityLightlyActive:    "лёгкая активность (1-3 тренировки в неделю)",
	ActivityModeratelyActive: "умеренная активность (3-5 тренировок в неделю)",
	ActivityVeryActive:       "высокая активность (6-7 тренировок в неделю)",
	ActivityExtremelyActive:  "очень высокая активность (физическая работа или 2 тренировки в день)",
}

var goalLabels = map[Goal]string{
	GoalLoseWeight:     "снижение веса",
	GoalMaintainWeight: "поддержание веса",
	GoalGainWeight:     "набор мышечной массы",
}

type promptData struct {
	Profile   UserProfile
	Gender    string
	Activity  string
	Goal      string
	Allergies []string
	Day       string
	DayList   string
	Avoid     []string
}

// PromptBuilder renders AI prompts from a user profile.
type PromptBuilder struct{}

// Weekly returns the 7-day prompt.
func (PromptBuilder) Weekly(p UserProfile) (string, error) {
	return render("weekly.tmpl", p, "", nil)
}

// Daily returns the single-day prompt.
func (PromptBuilder) Daily(p UserProfile, day string) (string, error) {
	return render("daily.tmpl", p, day, nil)
}

// Regenerate returns the daily prompt listing dishes already present in the week.
func (PromptBuilder) Regenerate(p UserProfile, day string, avoid []string) (string, error) {
	return render("daily.tmpl", p, day, avoid)
}

func render(name string, p UserProfile, day string, avoid []string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	data := promptData{
		Profile:   p,
		Gender:    genderLabels[p.Gender],
		Activity:  activityLabels[p.ActivityLevel],
		Goal:      goalLabels[p.Goal],
		Allergies: p.allergyList(),
		Day:       strings.TrimSpace(day),
		DayList:   strings.Join(WeekDays, ", "),
		Avoid:     avoid,
	}
	if data.Day == "" {
		data.Day = WeekDays[0]
	}

	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
