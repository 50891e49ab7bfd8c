package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcraft/internal/ai"
	"postcraft/internal/carousel"
	"postcraft/internal/fetch"
	"postcraft/internal/prompt"
)

// fakeModel answers each prompt with reply(user).
type fakeModel struct {
	mu         sync.Mutex
	users      []string
	urlContext bool
	reply      func(user string) (string, error)
	image      []byte
	imageErr   error
}

func (f *fakeModel) GenerateWith(_ context.Context, _, user string, _ ai.Options) (string, error) {
	f.mu.Lock()
	f.users = append(f.users, user)
	f.mu.Unlock()
	return f.reply(user)
}

func (f *fakeModel) SupportsURLContext() bool { return f.urlContext }

func (f *fakeModel) GenerateImage(context.Context, string) ([]byte, string, error) {
	if f.imageErr != nil {
		return nil, "", f.imageErr
	}
	return f.image, "image/png", nil
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeFetcher struct {
	text string
	err  error
	hits int
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (fetch.Article, error) {
	f.hits++
	return fetch.Article{URL: rawURL, Text: f.text}, f.err
}

type fakeStore struct {
	err  error
	desc string
}

func (s *fakeStore) PutImage(_ context.Context, description string, _ []byte, _ string) (string, error) {
	s.desc = description
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/images/x.png", nil
}

func newService(m *fakeModel, opts ...Option) *Service {
	return New(m, prompt.NewBuilder(m, prompt.DefaultConfig, nil), opts...)
}

func byPrompt(social, newsletter string) func(string) (string, error) {
	return func(user string) (string, error) {
		switch {
		case strings.Contains(user, "social media post"):
			return social, nil
		case strings.Contains(user, "newsletter"):
			return newsletter, nil
		}
		return "", fmt.Errorf("unexpected prompt: %.40s", user)
	}
}

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(w, " ")
}

func slidesJSON(t *testing.T, n int) string {
	t.Helper()
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{
			"slideNumber":     i + 1,
			"headline":        fmt.Sprintf("Point %d", i+1),
			"content":         fmt.Sprintf("Body of point %d.", i+1),
			"backgroundColor": "#101010",
			"textColor":       "#fafafa",
			"textSize":        "large",
			"fontFamily":      "roboto",
			"textAlign":       "left",
			"fontWeight":      "semibold",
		}
	}
	b, err := json.Marshal(out)
	require.NoError(t, err)
	return string(b)
}

func TestConvert_Text(t *testing.T) {
	m := &fakeModel{reply: byPrompt("  the post  ", "the letter")}
	s := newService(m)

	c, err := s.Convert(context.Background(), ConvertRequest{Mode: prompt.ModeText, ArticleText: "Short article."})
	require.NoError(t, err)

	assert.Equal(t, "Generated Content", c.Title)
	assert.Equal(t, "the post", c.SocialPost)
	assert.Equal(t, "the letter", c.Newsletter)
	assert.Empty(t, c.OriginalURL)
	assert.Equal(t, 2, m.calls())
}

func TestConvert_EmptyOutputsGetPlaceholders(t *testing.T) {
	s := newService(&fakeModel{reply: byPrompt("", " ")})

	c, err := s.Convert(context.Background(), ConvertRequest{Mode: prompt.ModeText, ArticleText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Failed to generate social post", c.SocialPost)
	assert.Equal(t, "Failed to generate newsletter", c.Newsletter)
}

func TestConvert_OneFailureFailsBoth(t *testing.T) {
	boom := errors.New("quota exceeded")
	m := &fakeModel{reply: func(user string) (string, error) {
		if strings.Contains(user, "newsletter") {
			return "", boom
		}
		return "post", nil
	}}

	_, err := newService(m).Convert(context.Background(), ConvertRequest{Mode: prompt.ModeText, ArticleText: "x"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "generate newsletter")
}

func TestConvert_Validation(t *testing.T) {
	s := newService(&fakeModel{reply: byPrompt("a", "b")})
	cases := []struct {
		name string
		req  ConvertRequest
		msg  string
	}{
		{"bad mode", ConvertRequest{Mode: "pdf"}, "Invalid mode. Must be 'url' or 'text'"},
		{"missing url", ConvertRequest{Mode: prompt.ModeURL}, "URL is required"},
		{"bad url", ConvertRequest{Mode: prompt.ModeURL, URL: "example.com"}, "Invalid URL format"},
		{"missing text", ConvertRequest{Mode: prompt.ModeText, ArticleText: "  "}, "Article text is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Convert(context.Background(), tc.req)
			var ie *InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tc.msg, ie.Message)
		})
	}
}

func TestConvert_URLReadByProvider(t *testing.T) {
	m := &fakeModel{urlContext: true, reply: byPrompt("post", "letter")}
	f := &fakeFetcher{}
	s := newService(m, WithFetcher(f))

	c, err := s.Convert(context.Background(), ConvertRequest{Mode: prompt.ModeURL, URL: " https://example.com/a "})
	require.NoError(t, err)
	assert.Equal(t, "Generated from URL", c.Title)
	assert.Equal(t, "https://example.com/a", c.OriginalURL)
	assert.Zero(t, f.hits)
	for _, u := range m.users {
		assert.Contains(t, u, "https://example.com/a")
	}
}

func TestConvert_URLFetchedServerSide(t *testing.T) {
	m := &fakeModel{reply: byPrompt("post", "letter")}
	f := &fakeFetcher{text: "Fetched body text."}
	s := newService(m, WithFetcher(f))

	_, err := s.Convert(context.Background(), ConvertRequest{Mode: prompt.ModeURL, URL: "https://example.com/a"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.hits)
	for _, u := range m.users {
		assert.Contains(t, u, "Fetched body text.")
	}
}

func TestConvert_URLUnreadable(t *testing.T) {
	s := newService(&fakeModel{reply: byPrompt("post", "letter")})
	_, err := s.Convert(context.Background(), ConvertRequest{Mode: prompt.ModeURL, URL: "https://example.com/a"})
	assert.ErrorIs(t, err, ErrURLUnreadable)
}

func TestRegenerate(t *testing.T) {
	m := &fakeModel{urlContext: true, reply: func(string) (string, error) { return "fresh", nil }}
	s := newService(m)

	r, err := s.Regenerate(context.Background(), prompt.KindNewsletter, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "Regenerated Content", r.Title)
	assert.Equal(t, "fresh", r.Newsletter)
	assert.Empty(t, r.SocialPost)

	_, err = s.Regenerate(context.Background(), prompt.KindSocial, "")
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "originalUrl", ie.Field)

	_, err = s.Regenerate(context.Background(), "tweet", "https://example.com/a")
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "type", ie.Field)
}

func TestImage(t *testing.T) {
	t.Run("inline without store", func(t *testing.T) {
		s := newService(&fakeModel{image: []byte{1, 2, 3}})
		u, err := s.Image(context.Background(), "a lighthouse", prompt.KindSocial)
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,AQID", u)
	})
	t.Run("uploaded", func(t *testing.T) {
		st := &fakeStore{}
		s := newService(&fakeModel{image: []byte{1}}, WithImageStore(st))
		u, err := s.Image(context.Background(), "a lighthouse", prompt.KindSocial)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/images/x.png", u)
		assert.Equal(t, "a lighthouse", st.desc)
	})
	t.Run("upload failure falls back to inline", func(t *testing.T) {
		s := newService(&fakeModel{image: []byte{1, 2, 3}}, WithImageStore(&fakeStore{err: errors.New("denied")}))
		u, err := s.Image(context.Background(), "a lighthouse", prompt.KindSocial)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "data:image/png;base64,"))
	})
	t.Run("unsupported", func(t *testing.T) {
		s := newService(&fakeModel{imageErr: ai.ErrImageUnsupported})
		_, err := s.Image(context.Background(), "a lighthouse", prompt.KindSocial)
		assert.ErrorIs(t, err, ai.ErrImageUnsupported)
	})
	t.Run("empty prompt", func(t *testing.T) {
		_, err := newService(&fakeModel{}).Image(context.Background(), " ", prompt.KindSocial)
		var ie *InputError
		assert.ErrorAs(t, err, &ie)
	})
}

func TestCarousel_Untemplated(t *testing.T) {
	raw := slidesJSON(t, 5)
	m := &fakeModel{reply: func(string) (string, error) { return "Here you go:\n" + raw, nil }}

	res, err := newService(m).Carousel(context.Background(), CarouselRequest{Content: words(500), Type: prompt.KindSocial})
	require.NoError(t, err)

	require.Len(t, res.Slides, 5)
	assert.True(t, res.Success)
	assert.Nil(t, res.Template)
	assert.Empty(t, res.Note)
	for i, sl := range res.Slides {
		assert.Equal(t, i+1, sl.SlideNumber)
		assert.NotEmpty(t, sl.Headline)
		assert.NotEmpty(t, sl.Content)
		assert.True(t, carousel.ValidColor(sl.BackgroundColor))
		assert.True(t, carousel.ValidColor(sl.TextColor))
		assert.True(t, sl.TextSize.Valid())
	}
}

func TestCarousel_UntemplatedFailureIsReturned(t *testing.T) {
	m := &fakeModel{reply: func(string) (string, error) { return "I cannot help with that.", nil }}
	_, err := newService(m).Carousel(context.Background(), CarouselRequest{Content: "Some content.", Type: prompt.KindSocial})

	var pe *carousel.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Raw, "I cannot help")

	m.reply = func(string) (string, error) { return slidesJSON(t, 3), nil }
	_, err = newService(m).Carousel(context.Background(), CarouselRequest{Content: "Some content."})
	var ve *carousel.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 3, ve.Count)

	m.reply = func(string) (string, error) { return "", nil }
	_, err = newService(m).Carousel(context.Background(), CarouselRequest{Content: "Some content."})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCarousel_TemplatedUsesModelText(t *testing.T) {
	m := &fakeModel{reply: func(string) (string, error) {
		return `[{"headline":"One","content":"First."},{"headline":"Two","content":"Second.","textColor":"hsl(0, 100%, 50%)"},` +
			`{"headline":"Three","content":"Third."},{"headline":"Four","content":"Fourth."},{"headline":"Five","content":"Fifth."}]`, nil
	}}

	res, err := newService(m).Carousel(context.Background(), CarouselRequest{
		Content: "Anything.", Type: prompt.KindSocial, TemplateID: "social-modern",
	})
	require.NoError(t, err)
	require.Len(t, res.Slides, 5)
	require.NotNil(t, res.Template)
	assert.False(t, res.Fallback)

	tpl, _ := carousel.GetTemplateByID("social-modern")
	assert.Equal(t, "One", res.Slides[0].Headline)
	assert.Equal(t, tpl.DefaultColors.Text, res.Slides[0].TextColor)
	assert.Equal(t, "#ff0000", res.Slides[1].TextColor)
	assert.Equal(t, tpl.BackgroundColor, res.Slides[1].BackgroundColor)
	for _, sl := range res.Slides {
		assert.Equal(t, "social-modern", sl.TemplateID)
		assert.NotEmpty(t, sl.Elements)
	}
}

func TestCarousel_TemplatedFallsBackOnMalformedOutput(t *testing.T) {
	m := &fakeModel{reply: func(string) (string, error) { return `[{"headline": "One", "content": `, nil }}
	content := "First paragraph about budgets.\nIt explains the basics.\n\n" +
		"Second paragraph on trade-offs.\nIt weighs latency.\n\n" +
		"Third paragraph on rollout.\nIt covers the migration."

	res, err := newService(m).Carousel(context.Background(), CarouselRequest{
		Content: content, Type: prompt.KindNewsletter, TemplateID: "newsletter-professional",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.Fallback)
	assert.Equal(t, FallbackNote, res.Note)
	require.Len(t, res.Slides, 5)
	assert.Equal(t, carousel.FillTemplate(*res.Template, content, 5), res.Slides)
}

func TestCarousel_TemplatedFallsBackOnModelError(t *testing.T) {
	m := &fakeModel{reply: func(string) (string, error) { return "", errors.New("503") }}
	res, err := newService(m, WithSlideCount(3)).Carousel(context.Background(), CarouselRequest{
		Content: "Alpha beta gamma delta.", TemplateID: "marketing-bold",
	})
	require.NoError(t, err)
	assert.Len(t, res.Slides, 3)
	assert.Equal(t, FallbackNote, res.Note)
}

func TestCarousel_SkipAI(t *testing.T) {
	m := &fakeModel{reply: func(string) (string, error) { t.Fatal("model must not be called"); return "", nil }}
	res, err := newService(m).Carousel(context.Background(), CarouselRequest{
		Content: "One idea here. Another idea there.", TemplateID: "social-modern", SkipAI: true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Slides, 5)
	assert.Empty(t, res.Note)
}

func TestCarousel_BadInput(t *testing.T) {
	s := newService(&fakeModel{})

	_, err := s.Carousel(context.Background(), CarouselRequest{Content: "  "})
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Content is required", ie.Message)

	_, err = s.Carousel(context.Background(), CarouselRequest{Content: "x", TemplateID: "nope"})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
