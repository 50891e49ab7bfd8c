package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	_ "golang.org/x/image/webp"
)

// DefaultImageTimeout bounds a remote image download.
const DefaultImageTimeout = 5 * time.Second

const maxImageBytes = 10 << 20

// MaxImagePixels caps the decoded size of a source image. Larger images
// are rejected from their header, before any pixel buffer is allocated.
const MaxImagePixels = 16 << 20

var (
	// ErrRemoteImage is returned for http(s) references when remote loading
	// is disabled.
	ErrRemoteImage = errors.New("imaging: remote images are disabled")

	// ErrImageTooLarge is returned for images above MaxImagePixels.
	ErrImageTooLarge = errors.New("imaging: image too large")

	// ErrPrivateAddress is returned when a remote image resolves to a
	// loopback, private or link-local address.
	ErrPrivateAddress = errors.New("imaging: refusing non-public address")
)

// Loader resolves image references: data URLs always, http(s) URLs when
// built with a client.
type Loader struct {
	client  *http.Client
	timeout time.Duration
}

// NewLoader returns a loader. A nil client disables remote images.
func NewLoader(client *http.Client) *Loader {
	return &Loader{client: client, timeout: DefaultImageTimeout}
}

// PublicClient returns an HTTP client that only connects to public unicast
// addresses. The check runs on the resolved address of every connection,
// redirects included, and proxies from the environment are ignored.
func PublicClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: DefaultImageTimeout,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !publicIP(ip) {
				return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
			}
			return nil
		},
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               nil,
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: DefaultImageTimeout,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

// Load decodes the image behind ref. PNG, JPEG, GIF and WebP are read.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "data:") {
		data, err := decodeDataURL(ref)
		if err != nil {
			return nil, err
		}
		return decode(data)
	}

	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("imaging: unsupported image reference %.40q", ref)
	}
	if l.client == nil {
		return nil, ErrRemoteImage
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("imaging: build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imaging: fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imaging: fetch %s: status %d", u.Host, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("imaging: read %s: %w", u.Host, err)
	}
	return decode(data)
}

// decode reads the image header first and refuses image bombs before the
// full decode allocates the pixel buffer.
func decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("imaging: decode: empty image %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, MaxImagePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	return img, nil
}

// decodeDataURL returns the payload of a base64 data URL.
func decodeDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("imaging: malformed data URL")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("imaging: data URL is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("imaging: data URL: %w", err)
	}
	return data, nil
}
