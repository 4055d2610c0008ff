// Package cards is the record service for duty cards: validation, photo
// upload, persistence and the cached, searchable list.
package cards

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/cache"
	"github.com/ukydev/office-duty-card/internal/db"
	"github.com/ukydev/office-duty-card/internal/events"
	"github.com/ukydev/office-duty-card/internal/models"
	"github.com/ukydev/office-duty-card/internal/photostore"
	"github.com/ukydev/office-duty-card/internal/validation"
)

// ValidationError carries the per-field messages of a rejected submission.
type ValidationError struct {
	Result validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("card validation failed: %d employee, %d vehicle errors",
		len(e.Result.Employee), len(e.Result.Vehicle))
}

type actorKey struct{}

// WithActor records who is acting, for event payloads.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// Service implements card operations on top of a CardCollection.
type Service struct {
	store     db.CardCollection
	validator *validation.Validator
	uploader  photostore.Uploader
	list      *cache.ListCache
	publisher events.Publisher
	now       func() time.Time
}

// NewService wires the record service. list and publisher may be nil.
func NewService(store db.CardCollection, uploader photostore.Uploader, list *cache.ListCache, publisher events.Publisher) *Service {
	return &Service{
		store:     store,
		validator: validation.NewValidator(store),
		uploader:  uploader,
		list:      list,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// prepare normalizes a submission and applies the photo rules: only an inline
// image counts as a new photo, and when editing the stored URL carries
// forward.
func (s *Service) prepare(ctx context.Context, emp models.EmployeeRecord, veh models.VehicleRecord, editingID string) (models.EmployeeRecord, models.VehicleRecord, error) {
	emp = emp.Normalize()
	veh = veh.Normalize()
	if !emp.HasInlinePhoto() {
		emp.Photo = ""
	}
	emp.PhotoURL = ""

	if editingID != "" {
		existing, err := s.store.FindCardByID(ctx, editingID)
		if err != nil {
			return emp, veh, err
		}
		emp.PhotoURL = existing.Employee.PhotoURL
	}

	result := s.validator.Validate(ctx, emp, veh, editingID)
	if !result.OK() {
		return emp, veh, &ValidationError{Result: result}
	}
	return emp, veh, nil
}

// Check validates a submission without saving it and returns the card as it
// would be stored. editingID is empty for a new card.
func (s *Service) Check(ctx context.Context, emp models.EmployeeRecord, veh models.VehicleRecord, editingID string) (models.Card, error) {
	emp, veh, err := s.prepare(ctx, emp, veh, editingID)
	if err != nil {
		return models.Card{}, err
	}
	return models.Card{Employee: emp, Vehicle: veh, CreatedAt: s.now()}, nil
}

func (s *Service) upload(ctx context.Context, emp *models.EmployeeRecord) error {
	if !emp.HasInlinePhoto() {
		return nil
	}
	url, err := s.uploader.Upload(ctx, emp.Photo)
	if err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}
	emp.PhotoURL = url
	emp.Photo = ""
	return nil
}

// Create validates, uploads the inline photo and stores a new card.
func (s *Service) Create(ctx context.Context, emp models.EmployeeRecord, veh models.VehicleRecord) (string, error) {
	emp, veh, err := s.prepare(ctx, emp, veh, "")
	if err != nil {
		return "", err
	}
	if err := s.upload(ctx, &emp); err != nil {
		return "", err
	}

	id, err := s.store.InsertCard(ctx, models.Card{Employee: emp, Vehicle: veh, CreatedAt: s.now()})
	if err != nil {
		// The uploaded photo stays in the object store unreferenced.
		log.WithField("photo_url", emp.PhotoURL).WithError(err).Error("failed to save card after photo upload")
		return "", fmt.Errorf("save card: %w", err)
	}

	s.invalidate(ctx)
	events.Emit(ctx, s.publisher, events.CardCreated, id, actorFrom(ctx))
	log.WithFields(log.Fields{"card_id": id, "serial_no": emp.SerialNo}).Info("card created")
	return id, nil
}

// Update validates and overwrites a card. The stored photo is replaced only
// when a new inline photo is supplied.
func (s *Service) Update(ctx context.Context, id string, emp models.EmployeeRecord, veh models.VehicleRecord) error {
	emp, veh, err := s.prepare(ctx, emp, veh, id)
	if err != nil {
		return err
	}
	if emp.HasInlinePhoto() {
		if err := s.upload(ctx, &emp); err != nil {
			return err
		}
	} else {
		emp.PhotoURL = ""
	}

	if err := s.store.UpdateCard(ctx, id, emp, veh); err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			return err
		}
		return fmt.Errorf("update card: %w", err)
	}

	s.invalidate(ctx)
	events.Emit(ctx, s.publisher, events.CardUpdated, id, actorFrom(ctx))
	log.WithField("card_id", id).Info("card updated")
	return nil
}

// Delete removes a card. Its photo is left in the object store.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) || errors.Is(err, db.ErrInvalidID) {
			return err
		}
		return fmt.Errorf("delete card: %w", err)
	}

	s.invalidate(ctx)
	events.Emit(ctx, s.publisher, events.CardDeleted, id, actorFrom(ctx))
	log.WithField("card_id", id).Info("card deleted")
	return nil
}

// Get returns one card.
func (s *Service) Get(ctx context.Context, id string) (*models.Card, error) {
	return s.store.FindCardByID(ctx, id)
}

// List returns every card, newest first, reading through the list cache.
func (s *Service) List(ctx context.Context) ([]models.Card, error) {
	gen, cacheable := "", s.list != nil
	if cacheable {
		cards, err := s.list.Get(ctx)
		if err == nil {
			return cards, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.WithError(err).Warn("card list cache read failed")
		}
		if gen, err = s.list.Generation(ctx); err != nil {
			log.WithError(err).Warn("card list cache generation read failed")
			cacheable = false
		}
	}

	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if cacheable {
		if err := s.list.Set(ctx, gen, cards); err != nil {
			log.WithError(err).Warn("card list cache write failed")
		}
	}
	return cards, nil
}

// RecordExport announces that a card was downloaded.
func (s *Service) RecordExport(ctx context.Context, id string) {
	events.Emit(ctx, s.publisher, events.CardExported, id, actorFrom(ctx))
}

func (s *Service) invalidate(ctx context.Context) {
	if s.list == nil {
		return
	}
	if err := s.list.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("card list cache invalidation failed")
	}
}
