// Package export turns a card into a printable two-page PDF.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/go-pdf/fpdf"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/models"
	"github.com/ukydev/office-duty-card/internal/render"
)

// Filename is the download name of an exported card.
const Filename = "office-duty-card.pdf"

// ErrAssetLoad is returned when an image needed by a panel cannot be loaded
// in time. No PDF is produced.
var ErrAssetLoad = errors.New("export asset failed to load")

const minScale = 2

// Options tune the export.
type Options struct {
	AssetTimeout time.Duration
	Scale        int
}

// Exporter renders cards to PDF and PNG.
type Exporter struct {
	raster   *render.Rasterizer
	branding render.Branding
	assets   render.Assets
	photos   PhotoLoader
	timeout  time.Duration
	scale    int
}

func New(raster *render.Rasterizer, branding render.Branding, assets render.Assets, photos PhotoLoader, opts Options) *Exporter {
	if opts.AssetTimeout <= 0 {
		opts.AssetTimeout = 10 * time.Second
	}
	if opts.Scale < minScale {
		opts.Scale = minScale
	}
	return &Exporter{
		raster:   raster,
		branding: branding,
		assets:   assets,
		photos:   photos,
		timeout:  opts.AssetTimeout,
		scale:    opts.Scale,
	}
}

// Export renders the front and then the back of card, each on its own
// portrait page of card size.
func (e *Exporter) Export(ctx context.Context, card models.Card) ([]byte, error) {
	w, h := render.Portrait.Size()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Office Duty Card", true)
	pdf.SetCreator("office-duty-card", true)

	for _, side := range []render.Side{render.SideFront, render.SideBack} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		png, err := e.renderSide(ctx, card, side, render.Portrait, e.scale)
		if err != nil {
			return nil, err
		}

		name := "card-" + string(side)
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(png))
		pdf.ImageOptions(name, 0, 0, w, h, false, opt, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	log.WithFields(log.Fields{
		"card_id": card.ID.Hex(),
		"bytes":   buf.Len(),
	}).Info("card exported")
	return buf.Bytes(), nil
}

// PreviewPNG renders one side of card at preview resolution.
func (e *Exporter) PreviewPNG(ctx context.Context, card models.Card, side render.Side, o render.Orientation) ([]byte, error) {
	if side != render.SideFront && side != render.SideBack {
		return nil, fmt.Errorf("unknown side %q", side)
	}
	return e.renderSide(ctx, card, side, o, minScale)
}

func (e *Exporter) renderSide(ctx context.Context, card models.Card, side render.Side, o render.Orientation, scale int) ([]byte, error) {
	var panel render.Panel
	assets := e.assets
	if side == render.SideFront {
		panel = render.Front(card, e.branding, o)
		photo, err := e.loadPhoto(ctx, card.Employee.PhotoSource())
		if err != nil {
			return nil, err
		}
		assets = assets.WithPhoto(photo)
	} else {
		panel = render.Back(card, e.branding, o)
	}

	img, err := e.raster.Rasterize(panel, assets, scale)
	if err != nil {
		return nil, fmt.Errorf("rasterize %s: %w", side, err)
	}
	return render.EncodePNG(img)
}

type loadResult struct {
	img image.Image
	err error
}

// loadPhoto waits at most the asset timeout. An empty source yields a nil
// image and a drawn placeholder.
func (e *Exporter) loadPhoto(ctx context.Context, src string) (image.Image, error) {
	if src == "" {
		return nil, nil
	}
	lctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan loadResult, 1)
	go func() {
		img, err := e.photos.Load(lctx, src)
		done <- loadResult{img: img, err: err}
	}()

	select {
	case <-lctx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.WithField("timeout", e.timeout.String()).Warn("photo load timed out")
		return nil, fmt.Errorf("%w: photo timed out after %s", ErrAssetLoad, e.timeout)
	case r := <-done:
		if r.err != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			log.WithError(r.err).Warn("photo load failed")
			return nil, fmt.Errorf("%w: %v", ErrAssetLoad, r.err)
		}
		return r.img, nil
	}
}
