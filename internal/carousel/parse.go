package carousel

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// maxRawExcerpt bounds the raw model output kept on a ParseError.
const maxRawExcerpt = 500

var (
	arrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)
	codeFence    = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\n?(.*?)\\s*```$")
)

// RequiredFields are the slide fields a model response must fill.
var RequiredFields = []string{"headline", "content", "backgroundColor", "textColor", "textSize"}

// ParseError reports model output that could not be read as a JSON array.
type ParseError struct {
	Raw string // first 500 characters of the response
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse carousel response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a decoded response with the wrong slide count
// (Index == 0) or a slide missing required fields (Index is 1-based).
type ValidationError struct {
	Index  int
	Fields []string
	Count  int
	Want   int
}

func (e *ValidationError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("invalid carousel data structure: expected exactly %d slides, got %d", e.Want, e.Count)
	}
	return fmt.Sprintf("invalid slide %d: missing required fields: %s", e.Index, strings.Join(e.Fields, ", "))
}

// Parse recovers exactly n fully specified slides from raw model output.
// The whole response is tried as JSON first, then the outermost bracketed
// array inside it. Every slide must carry RequiredFields; out-of-range enum
// values are replaced with defaults and colors are normalized. The result
// is all or nothing.
func Parse(raw string, n int) ([]Slide, error) {
	return parse(raw, n, RequiredFields, true)
}

// ParseOverrides is Parse for template-backed carousels: only headline and
// content are required, and style fields the model omitted or set to an
// unknown value are left empty so the template defaults stand.
func ParseOverrides(raw string, n int) ([]Slide, error) {
	return parse(raw, n, RequiredFields[:2], false)
}

func parse(raw string, n int, required []string, fill bool) ([]Slide, error) {
	items, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if len(items) != n {
		return nil, &ValidationError{Count: len(items), Want: n}
	}

	slides := make([]Slide, n)
	for i, item := range items {
		var missing []string
		for _, f := range required {
			if stringField(item, f) == "" {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return nil, &ValidationError{Index: i + 1, Fields: missing, Count: len(items), Want: n}
		}
		slides[i] = toSlide(item, i+1, fill)
	}
	return slides, nil
}

// decode returns the slide objects in a model response.
func decode(raw string) ([]map[string]any, error) {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	items, err := decodeArray(text)
	if err == nil {
		return items, nil
	}
	if sub := arrayPattern.FindString(text); sub != "" {
		if items, subErr := decodeArray(sub); subErr == nil {
			return items, nil
		}
	}
	return nil, &ParseError{Raw: Excerpt(raw, maxRawExcerpt), Err: err}
}

// decodeArray accepts a JSON array of objects, or an object wrapping one
// under "slides".
func decodeArray(text string) ([]map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		if inner, ok := obj["slides"]; ok {
			v = inner
		}
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}

	items := make([]map[string]any, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			obj = map[string]any{}
		}
		items[i] = obj
	}
	return items, nil
}

func toSlide(item map[string]any, n int, fill bool) Slide {
	s := Slide{
		SlideNumber:     n,
		Headline:        stringField(item, "headline"),
		Content:         stringField(item, "content"),
		BackgroundImage: stringField(item, "backgroundImage"),
	}

	if c := stringField(item, "backgroundColor"); c != "" {
		s.BackgroundColor = NormalizeColor(c)
	}
	if c := stringField(item, "textColor"); c != "" {
		s.TextColor = NormalizeColor(c)
	}
	if v := TextSize(strings.ToLower(stringField(item, "textSize"))); v.Valid() {
		s.TextSize = v
	} else if fill {
		s.TextSize = TextMedium
	}
	if v := FontFamily(strings.ToLower(stringField(item, "fontFamily"))); v.Valid() {
		s.FontFamily = v
	} else if fill {
		s.FontFamily = FontInter
	}
	if v := TextAlign(strings.ToLower(stringField(item, "textAlign"))); v.Valid() {
		s.TextAlign = v
	} else if fill {
		s.TextAlign = AlignCenter
	}
	if v := FontWeight(strings.ToLower(stringField(item, "fontWeight"))); v.Valid() {
		s.FontWeight = v
	} else if fill {
		s.FontWeight = WeightBold
	}
	return s
}

func stringField(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return strings.TrimSpace(s)
}

// Excerpt returns at most n runes of s.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
