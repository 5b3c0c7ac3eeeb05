// fetcher.go - Image loading from URLs, local files and data URLs.
package assets

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xob0t/stencilkit/pkg/render"
)

// Fetcher defaults.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultMaxBytes = 32 << 20
	userAgent       = "stencilkit/1.0"
)

// FetcherOptions configures a Fetcher. Zero values select defaults.
type FetcherOptions struct {
	Client   *http.Client  // overrides Timeout when set
	Timeout  time.Duration // per request
	MaxBytes int64         // download and file size limit
	BaseDir  string        // relative paths are resolved against it

	// DisableLocal rejects file:// URLs and filesystem paths. Servers set it
	// so documents cannot read the host filesystem.
	DisableLocal bool
}

// Fetcher is the headless image loader. It implements render.ImageLoader.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	baseDir  string
	noLocal  bool
}

// NewFetcher creates a fetcher with defaults applied.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &Fetcher{
		client:   client,
		maxBytes: opts.MaxBytes,
		baseDir:  opts.BaseDir,
		noLocal:  opts.DisableLocal,
	}
}

// Claims reports whether the fetcher can handle src.
func (f *Fetcher) Claims(src string) bool {
	switch scheme(src) {
	case "http", "https", "data":
		return true
	case "file", "":
		return !f.noLocal && strings.TrimSpace(src) != ""
	}
	return false
}

// LoadImage loads and decodes src.
func (f *Fetcher) LoadImage(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	var (
		data []byte
		err  error
	)
	switch scheme(src) {
	case "http", "https":
		data, err = f.get(ctx, RewriteShareURL(src))
	case "data":
		data, err = decodeDataURL(src)
	case "file":
		if f.noLocal {
			return nil, fmt.Errorf("%q: %w", src, ErrUnsupportedSource)
		}
		u, perr := url.Parse(src)
		if perr != nil {
			return nil, fmt.Errorf("parse %q: %w", src, perr)
		}
		data, err = f.readFile(u.Path)
	case "":
		if f.noLocal || src == "" {
			return nil, fmt.Errorf("%q: %w", src, ErrUnsupportedSource)
		}
		data, err = f.readFile(f.resolvePath(src))
	default:
		return nil, fmt.Errorf("%q: %w", src, ErrUnsupportedSource)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	render.Logger().Debug("fetching image", "url", rawURL)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrTooLarge)
	}
	return data, nil
}

func (f *Fetcher) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > f.maxBytes {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}
	return os.ReadFile(path)
}

func (f *Fetcher) resolvePath(p string) string {
	if filepath.IsAbs(p) || f.baseDir == "" {
		return p
	}
	return filepath.Join(f.baseDir, filepath.FromSlash(p))
}

// scheme returns the lower-cased URL scheme of src, or "" for plain paths.
// Windows drive letters ("C:\...") count as paths.
func scheme(src string) string {
	i := strings.IndexByte(src, ':')
	if i <= 1 {
		return ""
	}
	s := strings.ToLower(src[:i])
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return ""
		}
	}
	return s
}

// decodeDataURL decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURL(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, fmt.Errorf("data URL: missing comma")
	}
	header, payload := src[len("data:"):comma], src[comma+1:]
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("data URL: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URL: %w", err)
	}
	return []byte(s), nil
}
