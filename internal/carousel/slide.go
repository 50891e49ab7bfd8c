// Package carousel holds the slide and template model for multi-slide
// carousels, the static template catalog, the deterministic content
// splitter, the model-response parser and color normalization.
package carousel

// TextSize is the relative size of slide text.
type TextSize string

const (
	TextSmall  TextSize = "small"
	TextMedium TextSize = "medium"
	TextLarge  TextSize = "large"
)

// FontFamily identifies one of the supported typefaces.
type FontFamily string

const (
	FontInter      FontFamily = "inter"
	FontRoboto     FontFamily = "roboto"
	FontOpenSans   FontFamily = "opensans"
	FontPlayfair   FontFamily = "playfair"
	FontMontserrat FontFamily = "montserrat"
	FontLato       FontFamily = "lato"
)

// TextAlign is horizontal text alignment.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// FontWeight is the text weight.
type FontWeight string

const (
	WeightNormal   FontWeight = "normal"
	WeightMedium   FontWeight = "medium"
	WeightSemibold FontWeight = "semibold"
	WeightBold     FontWeight = "bold"
)

// ElementType distinguishes text, image and decorative shape elements.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementShape ElementType = "shape"
)

// Element ids the splitter and template engine write generated text into.
const (
	HeadlineID = "headline"
	ContentID  = "content"
)

func (s TextSize) Valid() bool {
	switch s {
	case TextSmall, TextMedium, TextLarge:
		return true
	}
	return false
}

func (f FontFamily) Valid() bool {
	switch f {
	case FontInter, FontRoboto, FontOpenSans, FontPlayfair, FontMontserrat, FontLato:
		return true
	}
	return false
}

func (a TextAlign) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return true
	}
	return false
}

func (w FontWeight) Valid() bool {
	switch w {
	case WeightNormal, WeightMedium, WeightSemibold, WeightBold:
		return true
	}
	return false
}

// Position is a rectangle in percent of the container (0-100 each).
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ElementStyle carries the visual attributes of one element.
type ElementStyle struct {
	FontSize        int        `json:"fontSize,omitempty"`
	Color           string     `json:"color,omitempty"`
	FontFamily      FontFamily `json:"fontFamily,omitempty"`
	FontWeight      FontWeight `json:"fontWeight,omitempty"`
	TextAlign       TextAlign  `json:"textAlign,omitempty"`
	BackgroundColor string     `json:"backgroundColor,omitempty"`
	BorderRadius    float64    `json:"borderRadius,omitempty"`
	Padding         float64    `json:"padding,omitempty"`
	Margin          float64    `json:"margin,omitempty"`
}

// Element is one positioned primitive within a template or slide.
type Element struct {
	ID       string       `json:"id"`
	Type     ElementType  `json:"type"`
	Content  string       `json:"content"`
	Position Position     `json:"position"`
	Style    ElementStyle `json:"style"`
	Editable bool         `json:"editable"`
}

// Slide is one visual unit of a carousel. A slide built from a template
// carries Elements, which are then the authoritative layout; Headline and
// Content mirror the "headline" and "content" elements. Flat slides have
// no Elements and render their text as two centered blocks.
type Slide struct {
	SlideNumber     int        `json:"slideNumber"`
	TemplateID      string     `json:"templateId,omitempty"`
	Headline        string     `json:"headline"`
	Content         string     `json:"content"`
	BackgroundColor string     `json:"backgroundColor"`
	TextColor       string     `json:"textColor"`
	TextSize        TextSize   `json:"textSize"`
	FontFamily      FontFamily `json:"fontFamily"`
	TextAlign       TextAlign  `json:"textAlign"`
	FontWeight      FontWeight `json:"fontWeight"`
	BackgroundImage string     `json:"backgroundImage,omitempty"`
	Elements        []Element  `json:"elements,omitempty"`
}

// Templated reports whether the slide carries a positioned element layout.
func (s Slide) Templated() bool { return len(s.Elements) > 0 }

// SetHeadline updates the headline and the matching element.
func (s *Slide) SetHeadline(text string) {
	s.Headline = text
	s.setElementContent(HeadlineID, text)
}

// SetContent updates the body text and the matching element.
func (s *Slide) SetContent(text string) {
	s.Content = text
	s.setElementContent(ContentID, text)
}

func (s *Slide) setElementContent(id, text string) {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			s.Elements[i].Content = text
			return
		}
	}
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	s.Elements = cloneElements(s.Elements)
	return s
}

func cloneElements(els []Element) []Element {
	if els == nil {
		return nil
	}
	out := make([]Element, len(els))
	copy(out, els)
	return out
}

// Pair is a headline and body produced by the splitter or the model.
type Pair struct {
	Headline string `json:"headline"`
	Content  string `json:"content"`
}

// Overlay copies the non-empty style fields of o onto s. Text and
// elements are left alone.
func (s *Slide) Overlay(o Slide) {
	if o.BackgroundColor != "" {
		s.BackgroundColor = o.BackgroundColor
	}
	if o.TextColor != "" {
		s.TextColor = o.TextColor
	}
	if o.TextSize != "" {
		s.TextSize = o.TextSize
	}
	if o.FontFamily != "" {
		s.FontFamily = o.FontFamily
	}
	if o.TextAlign != "" {
		s.TextAlign = o.TextAlign
	}
	if o.FontWeight != "" {
		s.FontWeight = o.FontWeight
	}
	if o.BackgroundImage != "" {
		s.BackgroundImage = o.BackgroundImage
	}
}
