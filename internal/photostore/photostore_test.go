package photostore

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestParseDataURL(t *testing.T) {
	valid := pngDataURL(t, 4, 6)

	raw, mime, err := ParseDataURL(valid, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.NotEmpty(t, raw)

	tests := []struct {
		name  string
		input string
		max   int
	}{
		{"empty", "", 0},
		{"not a data url", "https://example.com/p.png", 0},
		{"not base64", "data:image/png,abc", 0},
		{"unsupported type", "data:image/gif;base64,R0lGODlh", 0},
		{"bad payload", "data:image/png;base64,!!!", 0},
		{"mime mismatch", "data:image/jpeg;base64," + valid[len("data:image/png;base64,"):], 0},
		{"too large", valid, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDataURL(tt.input, tt.max)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestDecodeImage(t *testing.T) {
	raw, _, err := ParseDataURL(pngDataURL(t, 4, 6), 0)
	require.NoError(t, err)

	img, err := DecodeImage(raw)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	_, err = DecodeImage([]byte("not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestCloudinaryUploader_Upload(t *testing.T) {
	photo := pngDataURL(t, 2, 2)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1_1/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, photo, r.PostForm.Get("file"))
		assert.Equal(t, "office_duty_card", r.PostForm.Get("upload_preset"))
		assert.Equal(t, "office-duty-cards", r.PostForm.Get("folder"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url":"https://res.example.com/demo/p.png","public_id":"p"}`))
	}))
	defer server.Close()

	u := NewCloudinaryUploader(CloudinaryConfig{
		BaseURL: server.URL,
		Cloud:   "demo",
		Preset:  "office_duty_card",
		Folder:  "office-duty-cards",
	})

	url, err := u.Upload(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, "https://res.example.com/demo/p.png", url)
}

func TestCloudinaryUploader_Errors(t *testing.T) {
	photo := pngDataURL(t, 2, 2)

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
		}))
		defer server.Close()

		u := NewCloudinaryUploader(CloudinaryConfig{BaseURL: server.URL, Cloud: "demo"})
		_, err := u.Upload(context.Background(), photo)
		assert.ErrorIs(t, err, ErrUpload)
	})

	t.Run("missing secure url", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		u := NewCloudinaryUploader(CloudinaryConfig{BaseURL: server.URL, Cloud: "demo"})
		_, err := u.Upload(context.Background(), photo)
		assert.ErrorIs(t, err, ErrUpload)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		u := NewCloudinaryUploader(CloudinaryConfig{BaseURL: server.URL, Cloud: "demo", Timeout: 20 * time.Millisecond})
		_, err := u.Upload(context.Background(), photo)
		assert.ErrorIs(t, err, ErrUpload)
	})

	t.Run("invalid image never leaves the process", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		u := NewCloudinaryUploader(CloudinaryConfig{BaseURL: server.URL, Cloud: "demo"})
		_, err := u.Upload(context.Background(), "data:text/plain;base64,aGk=")
		assert.ErrorIs(t, err, ErrInvalidImage)
		assert.False(t, called)
	})
}
