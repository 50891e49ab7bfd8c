package carousel

import (
	"fmt"
	"strings"
)

// Category groups templates by intended use.
type Category string

const (
	CategorySocial       Category = "social"
	CategoryNewsletter   Category = "newsletter"
	CategoryPresentation Category = "presentation"
	CategoryMarketing    Category = "marketing"
	CategoryGeometric    Category = "geometric"
)

// Palette is a template's default colors.
type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

// Fonts is a template's default font assignment.
type Fonts struct {
	Heading FontFamily `json:"heading"`
	Body    FontFamily `json:"body"`
	Accent  FontFamily `json:"accent"`
}

// Template is a named, immutable visual layout.
type Template struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        Category  `json:"category"`
	AspectRatio     string    `json:"aspectRatio"`
	BackgroundColor string    `json:"backgroundColor"`
	BackgroundImage string    `json:"backgroundImage,omitempty"`
	Elements        []Element `json:"elements"`
	DefaultColors   Palette   `json:"defaultColors"`
	DefaultFonts    Fonts     `json:"defaultFonts"`
}

// Element returns the element with the given id.
func (t Template) Element(id string) (Element, bool) {
	for _, el := range t.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

// AspectSize returns the aspect ratio as width and height units.
// Unknown or empty ratios fall back to 4:3.
func (t Template) AspectSize() (w, h int) {
	var a, b int
	if _, err := fmt.Sscanf(strings.TrimSpace(t.AspectRatio), "%d:%d", &a, &b); err != nil || a <= 0 || b <= 0 {
		return 4, 3
	}
	return a, b
}

func (t Template) clone() Template {
	t.Elements = cloneElements(t.Elements)
	return t
}

// catalog is the fixed, ordered template table. It is never mutated;
// accessors hand out deep copies.
var catalog = []Template{
	{
		ID:              "social-modern",
		Name:            "Modern Social",
		Description:     "Clean, modern design perfect for social media",
		Category:        CategorySocial,
		AspectRatio:     "9:16",
		BackgroundColor: "#ffffff",
		DefaultColors: Palette{
			Primary: "#3b82f6", Secondary: "#64748b", Accent: "#f59e0b",
			Text: "#1f2937", Background: "#ffffff",
		},
		DefaultFonts: Fonts{Heading: FontInter, Body: FontInter, Accent: FontInter},
		Elements: []Element{
			{
				ID: HeadlineID, Type: ElementText, Content: "Your Headline Here",
				Position: Position{X: 10, Y: 20, Width: 80, Height: 25},
				Style:    ElementStyle{FontSize: 32, Color: "#1f2937", FontFamily: FontInter, FontWeight: WeightBold, TextAlign: AlignCenter},
				Editable: true,
			},
			{
				ID: ContentID, Type: ElementText, Content: "Your content goes here. Make it engaging and concise.",
				Position: Position{X: 10, Y: 50, Width: 80, Height: 30},
				Style:    ElementStyle{FontSize: 18, Color: "#64748b", FontFamily: FontInter, FontWeight: WeightNormal, TextAlign: AlignCenter},
				Editable: true,
			},
			{
				ID: "accent-shape", Type: ElementShape,
				Position: Position{X: 5, Y: 85, Width: 90, Height: 8},
				Style:    ElementStyle{BackgroundColor: "#3b82f6", BorderRadius: 4},
			},
		},
	},
	{
		ID:              "newsletter-professional",
		Name:            "Professional Newsletter",
		Description:     "Professional layout for newsletter content",
		Category:        CategoryNewsletter,
		AspectRatio:     "4:3",
		BackgroundColor: "#f8fafc",
		DefaultColors: Palette{
			Primary: "#1e40af", Secondary: "#475569", Accent: "#dc2626",
			Text: "#1e293b", Background: "#f8fafc",
		},
		DefaultFonts: Fonts{Heading: FontInter, Body: FontInter, Accent: FontInter},
		Elements: []Element{
			{
				ID: HeadlineID, Type: ElementText, Content: "Newsletter Title",
				Position: Position{X: 10, Y: 15, Width: 80, Height: 20},
				Style:    ElementStyle{FontSize: 28, Color: "#1e40af", FontFamily: FontInter, FontWeight: WeightBold, TextAlign: AlignLeft},
				Editable: true,
			},
			{
				ID: ContentID, Type: ElementText,
				Content:  "Your newsletter content goes here. This template is designed for longer-form content with proper spacing and readability.",
				Position: Position{X: 10, Y: 40, Width: 80, Height: 45},
				Style:    ElementStyle{FontSize: 16, Color: "#475569", FontFamily: FontInter, FontWeight: WeightNormal, TextAlign: AlignLeft},
				Editable: true,
			},
			{
				ID: "footer", Type: ElementText, Content: "Learn more at yourcompany.com",
				Position: Position{X: 10, Y: 88, Width: 80, Height: 8},
				Style:    ElementStyle{FontSize: 14, Color: "#64748b", FontFamily: FontInter, FontWeight: WeightMedium, TextAlign: AlignLeft},
				Editable: true,
			},
		},
	},
	{
		ID:              "marketing-bold",
		Name:            "Bold Marketing",
		Description:     "High-impact design for marketing campaigns",
		Category:        CategoryMarketing,
		AspectRatio:     "1:1",
		BackgroundColor: "#1f2937",
		DefaultColors: Palette{
			Primary: "#f59e0b", Secondary: "#ffffff", Accent: "#ef4444",
			Text: "#ffffff", Background: "#1f2937",
		},
		DefaultFonts: Fonts{Heading: FontMontserrat, Body: FontInter, Accent: FontMontserrat},
		Elements: []Element{
			{
				ID: HeadlineID, Type: ElementText, Content: "BOLD MESSAGE",
				Position: Position{X: 10, Y: 25, Width: 80, Height: 30},
				Style:    ElementStyle{FontSize: 36, Color: "#f59e0b", FontFamily: FontMontserrat, FontWeight: WeightBold, TextAlign: AlignCenter},
				Editable: true,
			},
			{
				ID: ContentID, Type: ElementText, Content: "Make an impact with bold, attention-grabbing content.",
				Position: Position{X: 10, Y: 60, Width: 80, Height: 25},
				Style:    ElementStyle{FontSize: 18, Color: "#ffffff", FontFamily: FontInter, FontWeight: WeightMedium, TextAlign: AlignCenter},
				Editable: true,
			},
			{
				ID: "accent-bar", Type: ElementShape,
				Position: Position{X: 20, Y: 85, Width: 60, Height: 4},
				Style:    ElementStyle{BackgroundColor: "#ef4444", BorderRadius: 2},
			},
		},
	},
	{
		ID:              "presentation-clean",
		Name:            "Clean Presentation",
		Description:     "Minimalist design for presentations",
		Category:        CategoryPresentation,
		AspectRatio:     "16:9",
		BackgroundColor: "#ffffff",
		DefaultColors: Palette{
			Primary: "#2563eb", Secondary: "#6b7280", Accent: "#10b981",
			Text: "#111827", Background: "#ffffff",
		},
		DefaultFonts: Fonts{Heading: FontInter, Body: FontInter, Accent: FontInter},
		Elements: []Element{
			{
				ID: HeadlineID, Type: ElementText, Content: "Presentation Title",
				Position: Position{X: 15, Y: 30, Width: 70, Height: 20},
				Style:    ElementStyle{FontSize: 28, Color: "#2563eb", FontFamily: FontInter, FontWeight: WeightBold, TextAlign: AlignCenter},
				Editable: true,
			},
			{
				ID: ContentID, Type: ElementText, Content: "Key points and supporting information for your presentation slide.",
				Position: Position{X: 15, Y: 55, Width: 70, Height: 30},
				Style:    ElementStyle{FontSize: 18, Color: "#111827", FontFamily: FontInter, FontWeight: WeightNormal, TextAlign: AlignCenter},
				Editable: true,
			},
			{
				ID: "bottom-accent", Type: ElementShape,
				Position: Position{X: 0, Y: 90, Width: 100, Height: 10},
				Style:    ElementStyle{BackgroundColor: "#10b981"},
			},
		},
	},
}

// Templates returns the whole catalog in catalog order.
func Templates() []Template {
	out := make([]Template, len(catalog))
	for i, t := range catalog {
		out[i] = t.clone()
	}
	return out
}

// GetTemplateByID returns the template with the given id.
func GetTemplateByID(id string) (Template, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Template{}, false
}

// GetTemplatesByCategory returns the templates in a category, in catalog order.
func GetTemplatesByCategory(category Category) []Template {
	var out []Template
	for _, t := range catalog {
		if t.Category == category {
			out = append(out, t.clone())
		}
	}
	return out
}

// CreateSlideFromTemplate instantiates a template as slide number n.
// Blank headline or content falls back to the template's default element
// text, then to a generic placeholder. Style fields come from the template
// defaults; elements are deep-copied with only the headline and content
// elements rewritten. The result depends on nothing but the arguments.
func CreateSlideFromTemplate(t Template, n int, p Pair) Slide {
	headlineEl, hasHeadline := t.Element(HeadlineID)
	contentEl, _ := t.Element(ContentID)

	headline := strings.TrimSpace(p.Headline)
	if headline == "" {
		headline = headlineEl.Content
	}
	if headline == "" {
		headline = fmt.Sprintf("Slide %d Title", n)
	}

	body := strings.TrimSpace(p.Content)
	if body == "" {
		body = contentEl.Content
	}
	if body == "" {
		body = "Slide content goes here..."
	}

	align, weight := AlignCenter, WeightBold
	if hasHeadline {
		if headlineEl.Style.TextAlign != "" {
			align = headlineEl.Style.TextAlign
		}
		if headlineEl.Style.FontWeight != "" {
			weight = headlineEl.Style.FontWeight
		}
	}

	slide := Slide{
		SlideNumber:     n,
		TemplateID:      t.ID,
		BackgroundColor: t.BackgroundColor,
		TextColor:       t.DefaultColors.Text,
		TextSize:        TextMedium,
		FontFamily:      t.DefaultFonts.Heading,
		TextAlign:       align,
		FontWeight:      weight,
		Elements:        cloneElements(t.Elements),
	}
	slide.SetHeadline(headline)
	slide.SetContent(body)
	return slide
}

// FillTemplate splits content into n pairs and instantiates the template
// once per pair. Missing pairs, when the text is too short to yield n,
// fall back to template defaults.
func FillTemplate(t Template, content string, n int) []Slide {
	pairs := Split(content, n)
	slides := make([]Slide, n)
	for i := 0; i < n; i++ {
		var p Pair
		if i < len(pairs) {
			p = pairs[i]
		}
		slides[i] = CreateSlideFromTemplate(t, i+1, p)
	}
	return slides
}
