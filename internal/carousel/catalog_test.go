package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_Order(t *testing.T) {
	var ids []string
	for _, tpl := range Templates() {
		ids = append(ids, tpl.ID)
	}
	assert.Equal(t, []string{"social-modern", "newsletter-professional", "marketing-bold", "presentation-clean"}, ids)
}

func TestTemplates_UniqueTextElements(t *testing.T) {
	for _, tpl := range Templates() {
		t.Run(tpl.ID, func(t *testing.T) {
			seen := map[string]int{}
			for _, el := range tpl.Elements {
				seen[el.ID]++
				if el.Type == ElementShape {
					assert.False(t, el.Editable, "shape %s must not be editable", el.ID)
				}
			}
			assert.Equal(t, 1, seen[HeadlineID])
			assert.Equal(t, 1, seen[ContentID])
		})
	}
}

func TestGetTemplateByID(t *testing.T) {
	tpl, ok := GetTemplateByID("marketing-bold")
	require.True(t, ok)
	assert.Equal(t, "Bold Marketing", tpl.Name)
	assert.Equal(t, FontMontserrat, tpl.DefaultFonts.Heading)

	_, ok = GetTemplateByID("missing")
	assert.False(t, ok)
}

func TestGetTemplateByID_ReturnsCopy(t *testing.T) {
	tpl, _ := GetTemplateByID("social-modern")
	tpl.Elements[0].Content = "mutated"

	again, _ := GetTemplateByID("social-modern")
	assert.Equal(t, "Your Headline Here", again.Elements[0].Content)
}

func TestGetTemplatesByCategory(t *testing.T) {
	got := GetTemplatesByCategory(CategoryNewsletter)
	require.Len(t, got, 1)
	assert.Equal(t, "newsletter-professional", got[0].ID)

	assert.Empty(t, GetTemplatesByCategory(CategoryGeometric))
}

func TestTemplate_AspectSize(t *testing.T) {
	tests := []struct {
		ratio string
		w, h  int
	}{
		{"9:16", 9, 16},
		{"16:9", 16, 9},
		{"", 4, 3},
		{"wide", 4, 3},
		{"0:1", 4, 3},
	}
	for _, tt := range tests {
		w, h := Template{AspectRatio: tt.ratio}.AspectSize()
		assert.Equal(t, tt.w, w, tt.ratio)
		assert.Equal(t, tt.h, h, tt.ratio)
	}
}

func TestCreateSlideFromTemplate(t *testing.T) {
	tpl, _ := GetTemplateByID("newsletter-professional")

	s := CreateSlideFromTemplate(tpl, 2, Pair{Headline: "Weekly roundup", Content: "Three things happened."})

	assert.Equal(t, 2, s.SlideNumber)
	assert.Equal(t, "newsletter-professional", s.TemplateID)
	assert.Equal(t, "Weekly roundup", s.Headline)
	assert.Equal(t, "Three things happened.", s.Content)
	assert.Equal(t, "#f8fafc", s.BackgroundColor)
	assert.Equal(t, "#1e293b", s.TextColor)
	assert.Equal(t, AlignLeft, s.TextAlign)
	assert.Equal(t, WeightBold, s.FontWeight)
	assert.Equal(t, TextMedium, s.TextSize)
	assert.True(t, s.Templated())

	headline, _ := elementByID(s.Elements, HeadlineID)
	content, _ := elementByID(s.Elements, ContentID)
	footer, _ := elementByID(s.Elements, "footer")
	assert.Equal(t, "Weekly roundup", headline.Content)
	assert.Equal(t, "Three things happened.", content.Content)
	assert.Equal(t, "Learn more at yourcompany.com", footer.Content)
}

func TestCreateSlideFromTemplate_BlankFallsBack(t *testing.T) {
	tpl, _ := GetTemplateByID("social-modern")

	s := CreateSlideFromTemplate(tpl, 1, Pair{Headline: "", Content: "X"})
	assert.Equal(t, "Your Headline Here", s.Headline)
	assert.Equal(t, "X", s.Content)

	bare := Template{ID: "bare"}
	s = CreateSlideFromTemplate(bare, 3, Pair{})
	assert.Equal(t, "Slide 3 Title", s.Headline)
	assert.Equal(t, "Slide content goes here...", s.Content)
	assert.Equal(t, AlignCenter, s.TextAlign)
	assert.False(t, s.Templated())
}

func TestCreateSlideFromTemplate_Idempotent(t *testing.T) {
	tpl, _ := GetTemplateByID("presentation-clean")
	p := Pair{Headline: "Q3 results", Content: "Revenue grew."}

	a := CreateSlideFromTemplate(tpl, 1, p)
	b := CreateSlideFromTemplate(tpl, 1, p)
	assert.Equal(t, a, b)

	a.Elements[0].Content = "edited"
	assert.NotEqual(t, a, b, "slides must not share element storage")
}

func TestFillTemplate(t *testing.T) {
	tpl, _ := GetTemplateByID("social-modern")
	text := "First point\nDetails one.\n\nSecond point\nDetails two.\n\nThird point\nDetails three."

	slides := FillTemplate(tpl, text, 3)
	require.Len(t, slides, 3)
	for i, s := range slides {
		assert.Equal(t, i+1, s.SlideNumber)
	}
	assert.Equal(t, "Second point", slides[1].Headline)
	assert.Equal(t, "Details two.", slides[1].Content)
}

func TestFillTemplate_ShortTextPadsWithDefaults(t *testing.T) {
	tpl, _ := GetTemplateByID("social-modern")

	slides := FillTemplate(tpl, "tiny", 5)
	require.Len(t, slides, 5)
	assert.Equal(t, "tiny", slides[0].Content)
	assert.Equal(t, "Your Headline Here", slides[4].Headline)
	assert.Equal(t, "Your content goes here. Make it engaging and concise.", slides[4].Content)
}

func TestSlide_Overlay(t *testing.T) {
	tpl, _ := GetTemplateByID("social-modern")
	s := CreateSlideFromTemplate(tpl, 1, Pair{Headline: "H", Content: "C"})

	s.Overlay(Slide{TextColor: "#ff0000", FontWeight: WeightNormal})
	assert.Equal(t, "#ff0000", s.TextColor)
	assert.Equal(t, WeightNormal, s.FontWeight)
	assert.Equal(t, "#ffffff", s.BackgroundColor)
	assert.Equal(t, "H", s.Headline)
}

func elementByID(els []Element, id string) (Element, bool) {
	for _, el := range els {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}
