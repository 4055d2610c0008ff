package photostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// Uploader stores an inline photo and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, dataURL string) (string, error)
}

// CloudinaryConfig configures unsigned uploads to a Cloudinary account.
type CloudinaryConfig struct {
	BaseURL  string
	Cloud    string
	Preset   string
	Folder   string
	Timeout  time.Duration
	MaxBytes int
}

// CloudinaryUploader posts photos to Cloudinary's unsigned upload endpoint.
type CloudinaryUploader struct {
	client *resty.Client
	cfg    CloudinaryConfig
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type cloudinaryError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinaryUploader(cfg CloudinaryConfig) *CloudinaryUploader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	return &CloudinaryUploader{client: client, cfg: cfg}
}

// Upload sends the data URL as-is; Cloudinary accepts data URIs in the file
// field. The image is validated locally first.
func (u *CloudinaryUploader) Upload(ctx context.Context, dataURL string) (string, error) {
	if _, _, err := ParseDataURL(dataURL, u.cfg.MaxBytes); err != nil {
		return "", err
	}

	var result cloudinaryResponse
	var apiErr cloudinaryError
	resp, err := u.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"file":          dataURL,
			"upload_preset": u.cfg.Preset,
			"folder":        u.cfg.Folder,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/v1_1/%s/image/upload", u.cfg.Cloud))
	if err != nil {
		log.WithError(err).Error("cloudinary upload request failed")
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if resp.IsError() {
		log.WithFields(log.Fields{
			"status":  resp.StatusCode(),
			"message": apiErr.Error.Message,
		}).Error("cloudinary rejected upload")
		return "", fmt.Errorf("%w: status %d", ErrUpload, resp.StatusCode())
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: response missing secure_url", ErrUpload)
	}

	log.WithField("public_id", result.PublicID).Debug("photo uploaded")
	return result.SecureURL, nil
}
