package planner

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestExtractJSONFencedRoundTrip(t *testing.T) {
	embedded := `{"week":[{"day":"Понедельник","totalCalories":1800}]}`
	raw := "Вот ваш план:\n```json\n" + embedded + "\n```\nПриятного аппетита!"

	got, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want, have interface{}
	if err := json.Unmarshal([]byte(embedded), &want); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	if err := json.Unmarshal([]byte(got), &have); err != nil {
		t.Fatalf("extracted text is not json: %v\n%s", err, got)
	}
	if !reflect.DeepEqual(want, have) {
		t.Fatalf("expected %v, got %v", want, have)
	}
}

func TestExtractJSONVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"trailing prose", `{"a":1} надеюсь, это поможет {}`, `{"a":1}`},
		{"fence without newline", "```json{\"a\":1}```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"braces inside strings", `{"recipe":"смешать {соус} и \"}\"","b":2} ещё текст }`, `{"recipe":"смешать {соус} и \"}\"","b":2}`},
		{"nested", `ответ: {"a":{"b":{"c":1}}}}}`, `{"a":{"b":{"c":1}}}`},
		{"unbalanced keeps remainder", `{"a":{"b":1}`, `{"a":{"b":1}`},
		{"openai envelope", `{"choices":[{"message":{"content":"` + "```json\\n{\\\"a\\\":1}\\n```" + `"}}]}`, `{"a":1}`},
		{"gemini envelope", `{"candidates":[{"content":{"parts":[{"text":"{\"a\":2}"}]}}]}`, `{"a":2}`},
		{"string literal", `"{\"a\":3}"`, `{"a":3}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	for _, raw := range []string{"", "извините, не могу помочь", "```json\n[1,2,3]\n```"} {
		if _, err := ExtractJSON(raw); !errors.Is(err, ErrNoJSONFound) {
			t.Fatalf("expected ErrNoJSONFound for %q, got %v", raw, err)
		}
	}
}

func TestExtractJSONUnescapesUnicode(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"single", `{"name":"\u041e\u0432\u0441\u044f\u043d\u043a\u0430"}`, `{"name":"Овсянка"}`},
		{"double", `{"name":"\\u0421\\u0443\\u043f"}`, `{"name":"Суп"}`},
		{"ascii escapes kept", `{"q":"\u0022x\u0022","t":"a\nb"}`, `{"q":"\u0022x\u0022","t":"a\nb"}`},
		{"surrogate pair", `{"e":"\ud83c\udf4e"}`, `{"e":"🍎"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
			again, err := ExtractJSON(got)
			if err != nil || again != got {
				t.Fatalf("second pass changed output: %s -> %s (%v)", got, again, err)
			}
		})
	}
}

func TestExtractJSONRepairsMojibake(t *testing.T) {
	broken, err := charmap.ISO8859_1.NewDecoder().String(`{"name":"Салат"}`)
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	got, err := ExtractJSON(broken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"name":"Салат"}` {
		t.Fatalf("expected repaired text, got %s", got)
	}

	// корректный текст не трогаем
	clean := `{"name":"Салат с тунцом"}`
	if got, _ := ExtractJSON(clean); got != clean {
		t.Fatalf("expected clean text unchanged, got %s", got)
	}
}
