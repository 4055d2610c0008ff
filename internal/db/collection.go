package db

import (
	"context"
	"errors"

	"github.com/ukydev/office-duty-card/internal/models"
)

var (
	// ErrNotFound is returned when no document matches the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for ids that are not valid ObjectID hex strings.
	ErrInvalidID = errors.New("invalid document id")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate document")
)

// CardCollection defines the interface for duty card storage.
type CardCollection interface {
	InsertCard(ctx context.Context, card models.Card) (string, error)
	FindCardByID(ctx context.Context, id string) (*models.Card, error)
	FindCardsByEmployeeField(ctx context.Context, field, value string) ([]models.Card, error)
	UpdateCard(ctx context.Context, id string, emp models.EmployeeRecord, veh models.VehicleRecord) error
	DeleteCard(ctx context.Context, id string) error
	ListCards(ctx context.Context) ([]models.Card, error)
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
