// Package photostore uploads employee photos to remote object storage and
// decodes the images the card renderer draws.
package photostore

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"golang.org/x/image/webp"
)

var (
	// ErrInvalidImage is returned for data URLs or bytes that are not a
	// supported image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrUpload is returned when the remote store rejects or fails an upload.
	ErrUpload = errors.New("photo upload failed")
)

// AllowedMimes are the image types accepted for employee photos.
var AllowedMimes = []string{"image/png", "image/jpeg", "image/webp"}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidImage, reason)
}

// ParseDataURL decodes a base64 data URL and checks that the declared mime
// type is allowed and matches the content. maxBytes <= 0 disables the size
// check.
func ParseDataURL(value string, maxBytes int) ([]byte, string, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return nil, "", invalid("empty data url")
	}
	if !strings.HasPrefix(raw, "data:") {
		return nil, "", invalid("invalid data url prefix")
	}
	comma := strings.Index(raw, ",")
	if comma <= 5 {
		return nil, "", invalid("invalid data url payload")
	}
	meta := raw[5:comma]
	payload := raw[comma+1:]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, "", invalid("data url must be base64")
	}
	mime := strings.ToLower(strings.TrimSpace(meta[:len(meta)-len(";base64")]))
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	if !allowed(mime) {
		return nil, "", invalid("unsupported data url mime type")
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", invalid("unable to decode data url")
	}
	if len(decoded) == 0 {
		return nil, "", invalid("empty data url content")
	}
	if maxBytes > 0 && len(decoded) > maxBytes {
		return nil, "", invalid("data url exceeds max size")
	}
	detected := http.DetectContentType(decoded)
	if !strings.EqualFold(detected, mime) {
		return nil, "", invalid("data url mime does not match content")
	}
	return decoded, detected, nil
}

func allowed(mime string) bool {
	for _, m := range AllowedMimes {
		if m == mime {
			return true
		}
	}
	return false
}

// DecodeImage decodes png, jpeg or webp bytes.
func DecodeImage(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, webpErr := webp.Decode(bytes.NewReader(raw))
		if webpErr != nil {
			return nil, invalid("unable to decode image")
		}
		img = decoded
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, invalid("invalid image dimensions")
	}
	return img, nil
}
