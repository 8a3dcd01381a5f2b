package planner

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ExtractJSON extracts the first balanced JSON object from a model reply.
func ExtractJSON(raw string) (string, error) {
	content := unwrapEnvelope(strings.TrimSpace(raw))
	content = stripFences(content)

	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", ErrNoJSONFound
	}
	obj := balancedObject(content[start:])
	obj = repairMojibake(obj)
	obj = unescapeUnicode(obj)
	return obj, nil
}

// unwrapEnvelope снимает обёртки провайдеров: OpenAI-совместимую, Gemini
// и ответ, целиком закодированный как JSON-строка.
func unwrapEnvelope(raw string) string {
	if raw == "" {
		return raw
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return strings.TrimSpace(s)
		}
		return raw
	}
	if raw[0] != '{' {
		return raw
	}

	var env struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text *string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return raw
	}
	if len(env.Choices) > 0 && env.Choices[0].Message.Content != nil {
		return strings.TrimSpace(*env.Choices[0].Message.Content)
	}
	if len(env.Candidates) > 0 {
		parts := env.Candidates[0].Content.Parts
		if len(parts) > 0 && parts[0].Text != nil {
			return strings.TrimSpace(*parts[0].Text)
		}
	}
	return raw
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// ```json\n: отрезаем тег языка вместе с переводом строки
			if !strings.ContainsAny(s[:nl], "{[") {
				s = s[nl+1:]
			}
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// balancedObject возвращает объект от первой '{' до парной '}' с учётом строк
// и экранирования. Если пара не нашлась, возвращается остаток целиком.
func balancedObject(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return s
}

// Маркеры UTF-8, прочитанного как однобайтовая кодировка: "Ð", "Ñ" (кириллица), "Ã", "Â".
var mojibakeMarkers = []string{"Ð", "Ñ", "Ã", "Â", "â€"}

func repairMojibake(s string) string {
	if !hasMojibake(s) {
		return s
	}
	for _, enc := range []encoding.Encoding{charmap.Windows1252, charmap.ISO8859_1} {
		b, err := enc.NewEncoder().Bytes([]byte(s))
		if err != nil {
			continue
		}
		if utf8.Valid(b) && string(b) != s {
			return string(b)
		}
	}
	return s
}

func hasMojibake(s string) bool {
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// unescapeUnicode раскрывает \uXXXX для не-ASCII символов. Одинарное и двойное
// экранирование превращаются в сам символ, ASCII-последовательности (\u0022 и т.п.)
// остаются как есть, поэтому повторный вызов ничего не меняет.
func unescapeUnicode(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '\\' {
			j++
		}
		run := j - i
		r, size := decodeEscape(s[j:])
		if (run == 1 || run == 2) && size > 0 {
			b.WriteRune(r)
			i = j + size
			continue
		}
		b.WriteString(s[i:j])
		i = j
	}
	return b.String()
}

// decodeEscape разбирает "uXXXX" (и суррогатную пару "uXXXX\uXXXX") в начале s.
// size=0, если это не escape или код символа < 0x80.
func decodeEscape(s string) (rune, int) {
	r, ok := hex4(s)
	if !ok || r < 0x80 {
		return 0, 0
	}
	if utf16.IsSurrogate(r) {
		rest := s[5:]
		slashes := 0
		for slashes < len(rest) && slashes < 2 && rest[slashes] == '\\' {
			slashes++
		}
		if slashes > 0 {
			if lo, ok := hex4(rest[slashes:]); ok {
				if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
					return pair, 5 + slashes + 5
				}
			}
		}
		return 0, 0
	}
	return r, 5
}

func hex4(s string) (rune, bool) {
	if len(s) < 5 || s[0] != 'u' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[1:5], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
