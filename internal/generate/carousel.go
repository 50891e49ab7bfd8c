package generate

import (
	"context"
	"fmt"
	"strings"

	"postcraft/internal/carousel"
	"postcraft/internal/prompt"
)

// FallbackNote marks a carousel built without the model.
const FallbackNote = "Generated using template fallback due to AI service unavailability"

// CarouselRequest is the input of Carousel.
type CarouselRequest struct {
	Content    string      `json:"content"`
	Type       prompt.Kind `json:"type"`
	TemplateID string      `json:"templateId,omitempty"`
	// SkipAI fills the template from the splitter without a model call.
	SkipAI bool `json:"skipAi,omitempty"`
}

// CarouselResult is a successful carousel.
type CarouselResult struct {
	Success  bool               `json:"success"`
	Slides   []carousel.Slide   `json:"slides"`
	Template *carousel.Template `json:"template,omitempty"`
	Note     string             `json:"note,omitempty"`
	Fallback bool               `json:"fallback,omitempty"`
}

// Carousel generates slides. With a template, the model writes the text
// and the template supplies the layout; any model or parse failure falls
// back to splitting the content into the template, so a templated request
// only fails on bad input. Without a template, model and parse failures
// are returned to the caller.
func (s *Service) Carousel(ctx context.Context, req CarouselRequest) (*CarouselResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, inputErr("content", "Content is required")
	}
	kind := req.Type
	if kind != prompt.KindSocial {
		kind = prompt.KindNewsletter
	}
	n := s.slideCount

	if req.TemplateID == "" {
		slides, err := s.untemplated(ctx, content, kind, n)
		if err != nil {
			return nil, err
		}
		return &CarouselResult{Success: true, Slides: slides}, nil
	}

	tpl, ok := carousel.GetTemplateByID(req.TemplateID)
	if !ok {
		return nil, ErrTemplateNotFound
	}
	result := &CarouselResult{Success: true, Template: &tpl}

	if req.SkipAI {
		result.Slides = carousel.FillTemplate(tpl, content, n)
		return result, nil
	}

	slides, err := s.templated(ctx, content, kind, tpl, n)
	if err != nil {
		s.logger.Warn("carousel generation failed, using template fallback",
			"template", tpl.ID, "error", err)
		result.Slides = carousel.FillTemplate(tpl, content, n)
		result.Note = FallbackNote
		result.Fallback = true
		return result, nil
	}
	result.Slides = slides
	return result, nil
}

func (s *Service) untemplated(ctx context.Context, content string, kind prompt.Kind, n int) ([]carousel.Slide, error) {
	raw, err := s.call(ctx, prompt.Carousel(content, kind, nil, n))
	if err != nil {
		return nil, fmt.Errorf("generate carousel: %w", err)
	}
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	slides, err := carousel.Parse(raw, n)
	if err != nil {
		s.logger.Error("carousel response rejected", "error", err, "raw", carousel.Excerpt(raw, 200))
		return nil, err
	}
	return slides, nil
}

// templated asks the model for slide text pre-styled with the template,
// instantiates the template for each slide and overlays any style the
// model chose.
func (s *Service) templated(ctx context.Context, content string, kind prompt.Kind, tpl carousel.Template, n int) ([]carousel.Slide, error) {
	raw, err := s.call(ctx, prompt.Carousel(content, kind, &tpl, n))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	parsed, err := carousel.ParseOverrides(raw, n)
	if err != nil {
		return nil, err
	}

	slides := make([]carousel.Slide, n)
	for i, p := range parsed {
		slide := carousel.CreateSlideFromTemplate(tpl, i+1, carousel.Pair{Headline: p.Headline, Content: p.Content})
		slide.Overlay(p)
		slides[i] = slide
	}
	if err := complete(slides); err != nil {
		return nil, err
	}
	return slides, nil
}

// complete rejects a batch in which any slide lacks a required field.
func complete(slides []carousel.Slide) error {
	for i, sl := range slides {
		values := []string{sl.Headline, sl.Content, sl.BackgroundColor, sl.TextColor, string(sl.TextSize)}
		var missing []string
		for j, field := range carousel.RequiredFields {
			if strings.TrimSpace(values[j]) == "" {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			return &carousel.ValidationError{Index: i + 1, Fields: missing, Count: len(slides), Want: len(slides)}
		}
	}
	return nil
}
