package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postcraft/internal/ai"
	"postcraft/internal/carousel"
	"postcraft/internal/fetch"
	"postcraft/internal/generate"
	"postcraft/internal/middleware"
	"postcraft/internal/prompt"
)

func okConversion(req generate.ConvertRequest) (*generate.Conversion, error) {
	return &generate.Conversion{Title: "Generated Content", SocialPost: "post", Newsletter: "letter"}, nil
}

func TestConvert(t *testing.T) {
	t.Run("text mode", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.convert = okConversion

		rec := do(env.API.Convert, http.MethodPost, "/api/convert", `{"mode":"text","articleText":"Some article."}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["socialPost"] != "post" || body["newsletter"] != "letter" {
			t.Errorf("unexpected body: %v", body)
		}
	})

	t.Run("uses stored memories when none are sent", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.convert = okConversion
		env.Memories.Add(context.Background(), testOwner, "sample one")

		do(env.API.Convert, http.MethodPost, "/api/convert", `{"mode":"text","articleText":"x"}`)
		if got := env.Gen.lastConvert.Memories; len(got) != 1 || got[0] != "sample one" {
			t.Errorf("memories: got %v, want stored sample", got)
		}
	})

	t.Run("request memories override stored ones", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.convert = okConversion
		env.Memories.Add(context.Background(), testOwner, "stored")

		do(env.API.Convert, http.MethodPost, "/api/convert", `{"mode":"text","articleText":"x","memories":[]}`)
		if got := env.Gen.lastConvert.Memories; len(got) != 0 {
			t.Errorf("memories: got %v, want the explicit empty list", got)
		}
	})

	t.Run("invalid input is rejected before the model", func(t *testing.T) {
		env := newTestEnv(t)
		called := false
		env.Gen.convert = func(generate.ConvertRequest) (*generate.Conversion, error) {
			called = true
			return nil, nil
		}

		tests := []struct{ body, want string }{
			{`{"mode":"url"}`, "URL is required"},
			{`{"mode":"url","url":"not a url"}`, "Invalid URL format"},
			{`{"mode":"text","articleText":"  "}`, "Article text is required"},
			{`{"mode":"pdf"}`, "Invalid mode. Must be 'url' or 'text'"},
		}
		for _, tt := range tests {
			rec := do(env.API.Convert, http.MethodPost, "/api/convert", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: status %d, want 400", tt.body, rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != tt.want {
				t.Errorf("%s: error %q, want %q", tt.body, got, tt.want)
			}
		}
		if called {
			t.Error("generator should not run for invalid input")
		}
	})
}

func TestUpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		errorMsg string
	}{
		{"quota", errors.New("RESOURCE_EXHAUSTED: quota exceeded"), http.StatusTooManyRequests, "API quota exceeded"},
		{"rate limit", &ai.StatusError{Provider: "openai", Code: 429, Body: "slow down"}, http.StatusTooManyRequests, "Rate limit exceeded"},
		{"model gone", errors.New("model not found"), http.StatusServiceUnavailable, "AI model not available"},
		{"generic", errors.New("connection reset"), http.StatusInternalServerError, "Failed to generate content"},
		{"fetch timeout", &fetch.TimeoutError{URL: "https://example.com"}, http.StatusGatewayTimeout, "Timed out reading the URL"},
		{"unreadable url", generate.ErrURLUnreadable, http.StatusUnprocessableEntity, generate.ErrURLUnreadable.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.Gen.convert = func(generate.ConvertRequest) (*generate.Conversion, error) {
				return nil, fmt.Errorf("generate social: %w", tt.err)
			}
			rec := do(env.API.Convert, http.MethodPost, "/api/convert", `{"mode":"text","articleText":"x"}`)
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			if got := decodeBody(t, rec)["error"]; got != tt.errorMsg {
				t.Errorf("error: got %q, want %q", got, tt.errorMsg)
			}
		})
	}
}

func TestCanceledErrors(t *testing.T) {
	canceled := func(generate.ConvertRequest) (*generate.Conversion, error) {
		return nil, fmt.Errorf("fetch https://example.com: %w", context.Canceled)
	}

	t.Run("live client still gets an answer", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.convert = canceled
		rec := do(env.API.Convert, http.MethodPost, "/api/convert", `{"mode":"text","articleText":"x"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status: got %d, want 500", rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "Failed to generate content" {
			t.Errorf("error: got %v", got)
		}
	})

	t.Run("gone client gets nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.convert = canceled
		req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(`{"mode":"text","articleText":"x"}`))
		ctx, cancel := context.WithCancel(middleware.WithOwner(req.Context(), testOwner))
		cancel()
		rec := httptest.NewRecorder()
		env.API.Convert(rec, req.WithContext(ctx))
		if rec.Body.Len() != 0 {
			t.Errorf("body: got %q, want empty", rec.Body.String())
		}
	})
}

func TestRegenerate(t *testing.T) {
	env := newTestEnv(t)
	env.Gen.regenerate = func(k prompt.Kind, u string) (*generate.Regeneration, error) {
		if k != prompt.KindNewsletter || u != "https://example.com/a" {
			t.Errorf("got kind %q url %q", k, u)
		}
		return &generate.Regeneration{Title: "Regenerated Content", Newsletter: "fresh"}, nil
	}

	rec := do(env.API.Regenerate, http.MethodPost, "/api/regenerate", `{"type":"newsletter","originalUrl":"https://example.com/a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["newsletter"] != "fresh" {
		t.Errorf("newsletter: got %v", body["newsletter"])
	}
	if _, ok := body["socialPost"]; ok {
		t.Error("socialPost should be omitted")
	}
}

func TestGenerateCarouselErrors(t *testing.T) {
	raw := strings.Repeat("x", 500)
	tests := []struct {
		name    string
		err     error
		status  int
		errMsg  string
		wantRaw bool
	}{
		{"template not found", generate.ErrTemplateNotFound, http.StatusNotFound, "Template not found", false},
		{"parse failure", &carousel.ParseError{Raw: raw, Err: errors.New("no JSON array found in response")}, http.StatusInternalServerError, "Failed to parse carousel data from AI response", true},
		{"wrong count", &carousel.ValidationError{Count: 3, Want: 5}, http.StatusInternalServerError, "Invalid carousel data structure - expected exactly 5 slides", false},
		{"missing fields", &carousel.ValidationError{Index: 2, Fields: []string{"textSize"}}, http.StatusInternalServerError, "Invalid slide 2 - missing required fields", false},
		{"empty", generate.ErrEmptyResponse, http.StatusInternalServerError, "No response received from AI service", false},
		{"input", &generate.InputError{Field: "content", Message: "Content is required"}, http.StatusBadRequest, "Content is required", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.Gen.carousel = func(generate.CarouselRequest) (*generate.CarouselResult, error) { return nil, tt.err }

			rec := do(env.API.GenerateCarousel, http.MethodPost, "/api/generate-carousel", `{"content":"x","type":"social"}`)
			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
			body := decodeBody(t, rec)
			if body["error"] != tt.errMsg {
				t.Errorf("error: got %q, want %q", body["error"], tt.errMsg)
			}
			if tt.wantRaw && body["rawResponse"] != raw {
				t.Errorf("rawResponse missing or altered")
			}
		})
	}
}

func TestGenerateCarouselWithRealService(t *testing.T) {
	model := &stubModel{reply: func(string) (string, error) { return "", errors.New("quota exceeded") }}
	svc := generate.New(model, prompt.NewBuilder(model, prompt.DefaultConfig, nil))
	env := newTestEnv(t, func(d *Deps) { d.Generator = svc })

	body := `{"content":"Paragraph one is here.\n\nParagraph two.\n\nThree.\n\nFour.\n\nFive.","type":"social","templateId":"social-modern"}`
	rec := do(env.API.GenerateCarousel, http.MethodPost, "/api/generate-carousel", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	if out["success"] != true {
		t.Errorf("success: got %v", out["success"])
	}
	if out["note"] != generate.FallbackNote {
		t.Errorf("note: got %v, want fallback note", out["note"])
	}
	if slides, _ := out["slides"].([]any); len(slides) != generate.DefaultSlideCount {
		t.Errorf("slides: got %d, want %d", len(slides), generate.DefaultSlideCount)
	}
}

func TestGenerateImage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.image = func(d string, k prompt.Kind) (string, error) {
			if k != prompt.KindSocial {
				t.Errorf("kind: got %q, want social default", k)
			}
			return "data:image/png;base64,AAAA", nil
		}
		rec := do(env.API.GenerateImage, http.MethodPost, "/api/generate-image", `{"prompt":"a lighthouse"}`)
		body := decodeBody(t, rec)
		if rec.Code != http.StatusOK || body["success"] != true || body["imageUrl"] != "data:image/png;base64,AAAA" {
			t.Errorf("unexpected response %d %v", rec.Code, body)
		}
	})

	t.Run("no image data", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.image = func(string, prompt.Kind) (string, error) { return "", fmt.Errorf("gemini image: %w", ai.ErrNoImageData) }
		rec := do(env.API.GenerateImage, http.MethodPost, "/api/generate-image", `{"prompt":"x"}`)
		body := decodeBody(t, rec)
		if rec.Code != http.StatusOK || body["success"] != false || body["imageUrl"] != nil {
			t.Errorf("unexpected response %d %v", rec.Code, body)
		}
	})

	t.Run("auth failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.image = func(string, prompt.Kind) (string, error) {
			return "", &ai.StatusError{Provider: "gemini", Code: 401, Body: "bad key"}
		}
		rec := do(env.API.GenerateImage, http.MethodPost, "/api/generate-image", `{"prompt":"x"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rec.Code)
		}
	})

	t.Run("unsupported provider", func(t *testing.T) {
		env := newTestEnv(t)
		env.Gen.image = func(string, prompt.Kind) (string, error) { return "", ai.ErrImageUnsupported }
		rec := do(env.API.GenerateImage, http.MethodPost, "/api/generate-image", `{"prompt":"x"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status: got %d, want 503", rec.Code)
		}
	})
}

// stubModel satisfies generate.Model for tests that run the real service.
type stubModel struct {
	reply func(user string) (string, error)
}

func (m *stubModel) GenerateWith(_ context.Context, _, user string, _ ai.Options) (string, error) {
	return m.reply(user)
}

func (m *stubModel) SupportsURLContext() bool { return false }

func (m *stubModel) GenerateImage(context.Context, string) ([]byte, string, error) {
	return nil, "", ai.ErrImageUnsupported
}
