package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"postcraft/internal/ai"
	"postcraft/internal/carousel"
)

// carouselStyle is the styling the model is asked to pre-apply.
type carouselStyle struct {
	Background string
	Text       string
	Font       carousel.FontFamily
}

var defaultCarouselStyle = carouselStyle{Background: "#ffffff", Text: "#000000", Font: carousel.FontInter}

// exampleSlide mirrors the JSON object shown to the model.
type exampleSlide struct {
	SlideNumber     int     `json:"slideNumber"`
	Headline        string  `json:"headline"`
	Content         string  `json:"content"`
	BackgroundColor string  `json:"backgroundColor"`
	TextColor       string  `json:"textColor"`
	TextSize        string  `json:"textSize"`
	FontFamily      string  `json:"fontFamily"`
	TextAlign       string  `json:"textAlign"`
	FontWeight      string  `json:"fontWeight"`
	BackgroundImage *string `json:"backgroundImage"`
}

// Carousel builds the prompt for exactly n slides. With a template, the
// example output is pre-styled with the template's background, text color
// and heading font. The request carries a response schema for providers
// with structured output; the prompt demands bare JSON for the rest.
func Carousel(content string, kind Kind, tpl *carousel.Template, n int) Request {
	style := defaultCarouselStyle
	if tpl != nil {
		style = carouselStyle{
			Background: tpl.BackgroundColor,
			Text:       tpl.DefaultColors.Text,
			Font:       tpl.DefaultFonts.Heading,
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a carousel content generator. Create exactly %d slides for a %s carousel based on this content:\n\n", n, kind.Label())
	sb.WriteString(strings.TrimSpace(content))
	sb.WriteString("\n\nIMPORTANT: You must respond with ONLY a valid JSON array. No other text, explanations, or markdown formatting.\n\n")
	fmt.Fprintf(&sb, `Requirements:
- Craft exactly %d engaging slides with original, compelling text
- Each slide should have a clear, focused message derived from the source content
- Create compelling headlines and concise, impactful text
- Ensure smooth flow between slides
- Each slide should be self-contained but part of a cohesive story
- DO NOT simply break up the original text; create new, engaging content inspired by it
`, n)
	sb.WriteString("\nJSON format (respond with ONLY this structure):\n")
	sb.WriteString(exampleJSON(style, n))
	sb.WriteString("\n\nRemember: Respond with ONLY the JSON array, no other text.")

	return Request{
		System:  "You produce slide carousels as strict JSON.",
		User:    sb.String(),
		Options: ai.Options{ResponseSchema: CarouselSchema(n)},
	}
}

func exampleJSON(style carouselStyle, n int) string {
	slides := make([]exampleSlide, n)
	for i := range slides {
		weight := carousel.WeightSemibold
		if i == 0 || i == n-1 {
			weight = carousel.WeightBold
		}
		slides[i] = exampleSlide{
			SlideNumber:     i + 1,
			Headline:        fmt.Sprintf("Compelling headline for slide %d", i+1),
			Content:         fmt.Sprintf("Main content text for slide %d", i+1),
			BackgroundColor: style.Background,
			TextColor:       style.Text,
			TextSize:        string(carousel.TextMedium),
			FontFamily:      string(style.Font),
			TextAlign:       string(carousel.AlignCenter),
			FontWeight:      string(weight),
		}
	}
	out, _ := json.MarshalIndent(slides, "", "  ")
	return string(out)
}

// CarouselSchema describes an array of exactly n slide objects.
func CarouselSchema(n int) *genai.Schema {
	count := int64(n)
	str := func(desc string, enum ...string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc, Enum: enum}
	}
	props := map[string]*genai.Schema{
		"slideNumber":     {Type: genai.TypeInteger},
		"headline":        str("short slide headline"),
		"content":         str("slide body text"),
		"backgroundColor": str("hex color such as #ffffff"),
		"textColor":       str("hex color such as #000000"),
		"textSize":        str("", "small", "medium", "large"),
		"fontFamily":      str("", "inter", "roboto", "opensans", "playfair", "montserrat", "lato"),
		"textAlign":       str("", "left", "center", "right"),
		"fontWeight":      str("", "normal", "medium", "semibold", "bold"),
	}
	order := []string{"slideNumber", "headline", "content", "backgroundColor", "textColor",
		"textSize", "fontFamily", "textAlign", "fontWeight"}

	return &genai.Schema{
		Type:     genai.TypeArray,
		MinItems: &count,
		MaxItems: &count,
		Items: &genai.Schema{
			Type:             genai.TypeObject,
			Properties:       props,
			Required:         append([]string{"slideNumber"}, carousel.RequiredFields...),
			PropertyOrdering: order,
		},
	}
}
