package render

import (
	"fmt"
	"image"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/config"
	"github.com/ukydev/office-duty-card/internal/photostore"
)

// BrandingFromConfig returns the organisation texts printed on the cards.
func BrandingFromConfig(cfg config.Config) Branding {
	return Branding{
		OrgName:       cfg.OrgName,
		OrgShortName:  cfg.OrgShortName,
		ReturnAddress: cfg.ReturnAddress,
	}
}

// LoadAssets reads the logo and signature images. An empty path leaves the
// slot nil so a placeholder is drawn.
func LoadAssets(logoPath, signaturePath string) (Assets, error) {
	logo, err := loadImageFile(logoPath)
	if err != nil {
		return Assets{}, fmt.Errorf("load logo: %w", err)
	}
	signature, err := loadImageFile(signaturePath)
	if err != nil {
		return Assets{}, fmt.Errorf("load signature: %w", err)
	}
	return Assets{Logo: logo, Signature: signature}, nil
}

func loadImageFile(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := photostore.DecodeImage(raw)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"path": path, "width": img.Bounds().Dx(), "height": img.Bounds().Dy()}).Debug("loaded card asset")
	return img, nil
}

// WithPhoto returns a copy of a with the employee photo set.
func (a Assets) WithPhoto(photo image.Image) Assets {
	a.Photo = photo
	return a
}
