// Package assets resolves person photo references into embeddable bytes.
//
// A photo reference is either a data URI, which decodes locally, or an
// http(s) URL, which is fetched with retry and kept in a [cache.Cache].
// Resolution always yields raw image bytes plus a MIME type, so exporters
// can embed the result directly. A placeholder avatar is compiled into
// the binary for persons without a photo.
package assets

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/cache"
	"github.com/matzehuels/stemma/pkg/errors"
	"github.com/matzehuels/stemma/pkg/httputil"
)

// DefaultTTL is how long fetched photos stay cached.
const DefaultTTL = 24 * time.Hour

// MaxPhotoBytes caps photo payloads at 5 MiB, fetched or inline.
const MaxPhotoBytes int64 = 5 << 20

//go:embed default_avatar.svg
var defaultAvatar []byte

// DefaultAvatar returns the embedded placeholder image and its MIME type.
func DefaultAvatar() ([]byte, string) {
	return defaultAvatar, "image/svg+xml"
}

// Fetcher resolves photo references, caching fetched URLs.
type Fetcher struct {
	client *httputil.Client
	cache  cache.Cache
	logger *log.Logger
}

// NewFetcher creates a Fetcher backed by c. A nil cache disables caching;
// a nil logger discards debug output.
func NewFetcher(c cache.Cache, logger *log.Logger) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Fetcher{
		client: httputil.NewClient(MaxPhotoBytes, map[string]string{"User-Agent": "stemma"}),
		cache:  c,
		logger: logger,
	}
}

// Resolve turns a person photo reference into image bytes and a MIME type.
// An empty reference resolves to the placeholder avatar. Data URIs decode
// locally; http(s) URLs are fetched through the cache. Non-image payloads
// and unsupported schemes return ErrCodeInvalidPhotoRef.
func (f *Fetcher) Resolve(ctx context.Context, ref string) ([]byte, string, error) {
	switch {
	case ref == "":
		data, mime := DefaultAvatar()
		return data, mime, nil
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return f.fetch(ctx, ref)
	default:
		return nil, "", errors.New(errors.ErrCodeInvalidPhotoRef, "unsupported photo reference: %q", ref)
	}
}

func (f *Fetcher) fetch(ctx context.Context, photoURL string) ([]byte, string, error) {
	key := cache.Key("avatar", photoURL)
	if data, ok, err := f.cache.Get(ctx, key); err != nil {
		f.logger.Debug("avatar cache read failed", "url", photoURL, "error", err)
	} else if ok {
		return data, detectMIME(data, ""), nil
	}

	var (
		data     []byte
		declared string
	)
	err := httputil.RetryWithBackoff(ctx, func() error {
		var ferr error
		data, declared, ferr = f.client.Fetch(ctx, photoURL)
		return ferr
	})
	switch {
	case stderrors.Is(err, httputil.ErrTooLarge):
		return nil, "", errors.Wrap(errors.ErrCodeInvalidPhotoRef, err, "photo at %s", photoURL)
	case stderrors.Is(err, httputil.ErrNotFound):
		return nil, "", errors.Wrap(errors.ErrCodeNotFound, err, "photo at %s", photoURL)
	case err != nil:
		return nil, "", errors.Wrap(errors.ErrCodeNetwork, err, "fetching photo at %s", photoURL)
	}

	mime := detectMIME(data, declared)
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", errors.New(errors.ErrCodeInvalidPhotoRef, "photo at %s is not an image: %s", photoURL, mime)
	}

	if err := f.cache.Set(ctx, key, data, DefaultTTL); err != nil {
		f.logger.Debug("avatar cache write failed", "url", photoURL, "error", err)
	}
	f.logger.Debug("avatar fetched", "url", photoURL, "bytes", len(data), "mime", mime)
	return data, mime, nil
}

// decodeDataURI splits a data:<mime>[;base64],<payload> reference into
// payload bytes and MIME type.
func decodeDataURI(ref string) ([]byte, string, error) {
	meta, payload, found := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !found {
		return nil, "", errors.New(errors.ErrCodeInvalidPhotoRef, "malformed data URI")
	}

	params := strings.Split(meta, ";")
	mime := params[0]
	if mime == "" {
		mime = "text/plain"
	}

	var data []byte
	if slices.Contains(params[1:], "base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidPhotoRef, err, "malformed data URI payload")
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidPhotoRef, err, "malformed data URI payload")
		}
		data = []byte(unescaped)
	}

	if int64(len(data)) > MaxPhotoBytes {
		cause := &errors.AssetTooLargeError{Size: int64(len(data)), Limit: MaxPhotoBytes}
		return nil, "", errors.Wrap(errors.ErrCodeInvalidPhotoRef, cause, "inline photo")
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", errors.New(errors.ErrCodeInvalidPhotoRef, "photo is not an image: %s", mime)
	}
	return data, mime, nil
}

// detectMIME determines an image MIME type, preferring content sniffing
// over the declared header. http.DetectContentType cannot identify SVG,
// so SVG falls back to the declared type or an <svg marker in the bytes.
func detectMIME(data []byte, declared string) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if strings.Contains(declared, "image/svg") || svgMarker(data) {
		return "image/svg+xml"
	}
	return sniffed
}

func svgMarker(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<svg"))
}
