// Package fetch downloads a web page and extracts its readable article text.
// It backs URL conversions when the active model provider cannot read URLs
// itself.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a whole fetch, headers and body included.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 5 << 20

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("fetch: page has no readable content")

// TimeoutError reports a fetch that exceeded its time bound.
type TimeoutError struct {
	URL   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetching %s timed out after %s", e.URL, e.After)
}

// Timeout reports true, matching net.Error.
func (e *TimeoutError) Timeout() bool { return true }

// Article is the extracted content of a page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Reader fetches pages. Concurrent fetches of the same URL share one
// download.
type Reader struct {
	client  *http.Client
	timeout time.Duration
	clean   *bluemonday.Policy
	strip   *bluemonday.Policy
	group   singleflight.Group
}

// NewReader creates a reader bounded by timeout (DefaultTimeout if <= 0).
func NewReader(timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Reader{
		client:  &http.Client{},
		timeout: timeout,
		clean:   bluemonday.UGCPolicy(),
		strip:   bluemonday.StrictPolicy(),
	}
}

// Fetch downloads rawURL and returns its article text.
func (r *Reader) Fetch(ctx context.Context, rawURL string) (Article, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Article{}, fmt.Errorf("fetch: invalid URL %q", rawURL)
	}

	// The shared download must outlive any single waiter, so it runs
	// detached from the caller and bounded by r.timeout alone. Each caller
	// still stops waiting when its own context ends.
	ch := r.group.DoChan(u.String(), func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), u)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Article{}, res.Err
		}
		return res.Val.(Article), nil
	case <-ctx.Done():
		return Article{}, ctx.Err()
	}
}

func (r *Reader) fetch(ctx context.Context, u *url.URL) (Article, error) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body, err := r.download(tctx, u)
	if err != nil {
		if ctx.Err() == nil && (errors.Is(tctx.Err(), context.DeadlineExceeded) || isTimeout(err)) {
			return Article{}, &TimeoutError{URL: u.String(), After: r.timeout}
		}
		return Article{}, err
	}

	cleaned := r.clean.Sanitize(body)
	a := Article{URL: u.String()}
	if parsed, err := readability.FromReader(strings.NewReader(cleaned), u); err == nil {
		a.Title = strings.TrimSpace(parsed.Title)
		a.Text = parsed.TextContent
	}
	if strings.TrimSpace(a.Text) == "" {
		a.Text = r.strip.Sanitize(cleaned)
	}
	a.Text = tidy(a.Text)
	if a.Text == "" {
		return Article{}, ErrNoContent
	}
	return a, nil
}

func (r *Reader) download(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", "postcraft/1.0 (+article reader)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("fetch %s: read body: %w", u, err)
	}
	return string(b), nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

var (
	blankRuns  = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
	spaceRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)
	htmlEntity = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&#39;", "'", "&#34;", `"`, "&quot;", `"`, "&nbsp;", " ")
)

// tidy collapses whitespace while keeping paragraph breaks.
func tidy(s string) string {
	s = htmlEntity.Replace(s)
	s = spaceRuns.ReplaceAllString(s, " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
