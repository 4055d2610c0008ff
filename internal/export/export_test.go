package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/office-duty-card/internal/models"
	"github.com/ukydev/office-duty-card/internal/render"
)

// MockPhotoLoader is a mock implementation of PhotoLoader
type MockPhotoLoader struct {
	mock.Mock
}

func (m *MockPhotoLoader) Load(ctx context.Context, src string) (image.Image, error) {
	args := m.Called(ctx, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(image.Image), args.Error(1)
}

// slowLoader ignores its context and blocks until released.
type slowLoader struct {
	release chan struct{}
}

func (s *slowLoader) Load(ctx context.Context, src string) (image.Image, error) {
	<-s.release
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func testPhoto() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 60, 80))
	for x := 0; x < 60; x++ {
		for y := 0; y < 80; y++ {
			img.SetRGBA(x, y, color.RGBA{R: 30, G: 90, B: 160, A: 255})
		}
	}
	return img
}

func testCard() models.Card {
	return models.Card{
		Employee: models.EmployeeRecord{
			SerialNo:     "S-001",
			EmployeeCode: "E-100",
			EmployeeName: "Ayesha Khan",
			CNIC:         "42101-1234567-1",
			PhotoURL:     "https://res.example.com/p.png",
		},
		Vehicle: models.VehicleRecord{VehicleNo: "KHI-123", ValidFrom: "Jan-2025", ValidTo: "Jan-2026"},
	}
}

func newExporter(t *testing.T, loader PhotoLoader, opts Options) *Exporter {
	t.Helper()
	r, err := render.NewRasterizer()
	require.NoError(t, err)
	branding := render.Branding{OrgName: "K-Electric Limited", OrgShortName: "KE"}
	return New(r, branding, render.Assets{}, loader, opts)
}

func mediaBox(r *pdf.Reader, page int) []float64 {
	box := r.Page(page).V.Key("MediaBox")
	if box.IsNull() {
		box = r.Trailer().Key("Root").Key("Pages").Key("MediaBox")
	}
	out := make([]float64, box.Len())
	for i := range out {
		out[i] = box.Index(i).Float64()
	}
	return out
}

func TestExport_TwoPortraitPages(t *testing.T) {
	loader := new(MockPhotoLoader)
	loader.On("Load", mock.Anything, "https://res.example.com/p.png").Return(testPhoto(), nil)

	e := newExporter(t, loader, Options{Scale: 2})
	out, err := e.Export(context.Background(), testCard())
	require.NoError(t, err)
	loader.AssertExpectations(t)

	r, err := pdf.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	require.Equal(t, 2, r.NumPage())

	for page := 1; page <= 2; page++ {
		box := mediaBox(r, page)
		require.Len(t, box, 4)
		width, height := box[2]-box[0], box[3]-box[1]
		assert.InDelta(t, 53.98*72/25.4, width, 0.5)
		assert.InDelta(t, 85.6*72/25.4, height, 0.5)
		assert.Less(t, width, height)
	}
}

func TestExport_InlinePhotoPreferred(t *testing.T) {
	loader := new(MockPhotoLoader)
	card := testCard()
	card.Employee.Photo = "data:image/png;base64,AAAA"
	loader.On("Load", mock.Anything, card.Employee.Photo).Return(testPhoto(), nil)

	e := newExporter(t, loader, Options{})
	_, err := e.Export(context.Background(), card)
	require.NoError(t, err)
	loader.AssertExpectations(t)
}

func TestExport_NoPhotoDrawsPlaceholder(t *testing.T) {
	loader := new(MockPhotoLoader)
	card := testCard()
	card.Employee.PhotoURL = ""

	e := newExporter(t, loader, Options{})
	out, err := e.Export(context.Background(), card)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestExport_PhotoFailure(t *testing.T) {
	loader := new(MockPhotoLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(nil, errors.New("404"))

	e := newExporter(t, loader, Options{})
	out, err := e.Export(context.Background(), testCard())
	assert.ErrorIs(t, err, ErrAssetLoad)
	assert.Nil(t, out)
}

func TestExport_PhotoTimeout(t *testing.T) {
	loader := &slowLoader{release: make(chan struct{})}
	defer close(loader.release)

	e := newExporter(t, loader, Options{AssetTimeout: 30 * time.Millisecond})
	start := time.Now()
	_, err := e.Export(context.Background(), testCard())
	assert.ErrorIs(t, err, ErrAssetLoad)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExport_Cancelled(t *testing.T) {
	loader := new(MockPhotoLoader)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newExporter(t, loader, Options{})
	_, err := e.Export(ctx, testCard())
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrAssetLoad)
}

func TestExport_Concurrent(t *testing.T) {
	loader := new(MockPhotoLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(testPhoto(), nil)
	e := newExporter(t, loader, Options{Scale: 2})

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Export(context.Background(), testCard())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestPreviewPNG(t *testing.T) {
	loader := new(MockPhotoLoader)
	loader.On("Load", mock.Anything, mock.Anything).Return(testPhoto(), nil)
	e := newExporter(t, loader, Options{})

	out, err := e.PreviewPNG(context.Background(), testCard(), render.SideBack, render.Landscape)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
	loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)

	out, err = e.PreviewPNG(context.Background(), testCard(), render.SideFront, render.Portrait)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Less(t, img.Bounds().Dx(), img.Bounds().Dy())

	_, err = e.PreviewPNG(context.Background(), testCard(), render.Side("middle"), render.Portrait)
	assert.Error(t, err)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testPhoto()))
	return buf.Bytes()
}

func TestHTTPPhotoLoader(t *testing.T) {
	raw := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(raw)
	}))
	defer server.Close()

	l := NewPhotoLoader(time.Second, 0)
	ctx := context.Background()

	img, err := l.Load(ctx, server.URL+"/p.png")
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())

	img, err = l.Load(ctx, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dy())

	_, err = l.Load(ctx, server.URL+"/missing.png")
	assert.Error(t, err)

	_, err = l.Load(ctx, "ftp://example.com/p.png")
	assert.Error(t, err)

	small := NewPhotoLoader(time.Second, 10)
	_, err = small.Load(ctx, server.URL+"/p.png")
	assert.Error(t, err)
}

func TestHTTPPhotoLoader_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		chunk := bytes.Repeat([]byte{0xff}, 64<<10)
		for i := 0; i < 64; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	l := NewPhotoLoader(5*time.Second, 1<<10)
	_, err := l.Load(context.Background(), server.URL+"/huge.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch photo")
}
