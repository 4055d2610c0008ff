package photostore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPhotoNotFound is returned when a stored photo does not exist.
var ErrPhotoNotFound = errors.New("photo not found")

// GridFSUploader keeps photos in a GridFS bucket of the card database and
// serves them under <baseURL>/photos/<id>.
type GridFSUploader struct {
	bucket   *gridfs.Bucket
	baseURL  string
	maxBytes int
}

func NewGridFSUploader(database *mongo.Database, baseURL string, maxBytes int) (*GridFSUploader, error) {
	bucket, err := gridfs.NewBucket(database, options.GridFSBucket().SetName("photos"))
	if err != nil {
		return nil, fmt.Errorf("create gridfs bucket: %w", err)
	}
	return &GridFSUploader{
		bucket:   bucket,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

func (u *GridFSUploader) Upload(ctx context.Context, dataURL string) (string, error) {
	raw, mime, err := ParseDataURL(dataURL, u.maxBytes)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := "office-duty-cards/" + uuid.NewString()
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": mime})
	id, err := u.bucket.UploadFromStream(name, bytes.NewReader(raw), opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return u.baseURL + "/photos/" + id.Hex(), nil
}

// Open returns the stored bytes of a photo and their content type.
func (u *GridFSUploader) Open(ctx context.Context, id string) ([]byte, string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, "", ErrPhotoNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if _, err := u.bucket.DownloadToStream(oid, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrPhotoNotFound
		}
		return nil, "", err
	}
	return buf.Bytes(), http.DetectContentType(buf.Bytes()), nil
}
