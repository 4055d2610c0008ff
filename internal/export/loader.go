package export

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ukydev/office-duty-card/internal/photostore"
)

// PhotoLoader resolves a photo reference to a decoded image.
type PhotoLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// HTTPPhotoLoader decodes data URLs in memory and fetches http(s) URLs.
type HTTPPhotoLoader struct {
	client   *resty.Client
	maxBytes int
}

func NewPhotoLoader(timeout time.Duration, maxBytes int) *HTTPPhotoLoader {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "image/*")
	if maxBytes > 0 {
		client.SetResponseBodyLimit(maxBytes)
	}
	return &HTTPPhotoLoader{client: client, maxBytes: maxBytes}
}

func (l *HTTPPhotoLoader) Load(ctx context.Context, src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(src, "data:"):
		raw, _, err := photostore.ParseDataURL(src, l.maxBytes)
		if err != nil {
			return nil, err
		}
		return photostore.DecodeImage(raw)
	case strings.HasPrefix(src, "https://"), strings.HasPrefix(src, "http://"):
		resp, err := l.client.R().SetContext(ctx).Get(src)
		if err != nil {
			return nil, fmt.Errorf("fetch photo: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch photo: status %d", resp.StatusCode())
		}
		return photostore.DecodeImage(resp.Body())
	default:
		return nil, fmt.Errorf("unsupported photo source %q", truncate(src, 32))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
