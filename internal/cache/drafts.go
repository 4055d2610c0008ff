package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/models"
)

// Draft is the unsaved state of a create form. Either half may be absent.
type Draft struct {
	Employee *models.EmployeeRecord `json:"employee,omitempty"`
	Vehicle  *models.VehicleRecord  `json:"vehicle,omitempty"`
}

// DraftStore persists form drafts per user so a half-filled card survives a
// reload.
type DraftStore struct {
	kv  KVStore
	ttl time.Duration
}

func NewDraftStore(kv KVStore, ttl time.Duration) *DraftStore {
	return &DraftStore{kv: kv, ttl: ttl}
}

func employeeDraftKey(user string) string { return "drafts:" + user + ":employee" }
func vehicleDraftKey(user string) string  { return "drafts:" + user + ":vehicle" }

// Load returns the user's draft. Missing or unreadable halves come back nil;
// an unreadable entry is removed.
func (s *DraftStore) Load(ctx context.Context, user string) (Draft, error) {
	var d Draft

	var emp models.EmployeeRecord
	ok, err := s.load(ctx, employeeDraftKey(user), &emp)
	if err != nil {
		return Draft{}, err
	}
	if ok {
		d.Employee = &emp
	}

	var veh models.VehicleRecord
	ok, err = s.load(ctx, vehicleDraftKey(user), &veh)
	if err != nil {
		return Draft{}, err
	}
	if ok {
		d.Vehicle = &veh
	}
	return d, nil
}

func (s *DraftStore) load(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		log.WithField("key", key).Debug("discarding unreadable draft")
		_ = s.kv.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// Save writes whichever halves of the draft are present.
func (s *DraftStore) Save(ctx context.Context, user string, d Draft) error {
	if d.Employee != nil {
		if err := s.save(ctx, employeeDraftKey(user), d.Employee); err != nil {
			return err
		}
	}
	if d.Vehicle != nil {
		if err := s.save(ctx, vehicleDraftKey(user), d.Vehicle); err != nil {
			return err
		}
	}
	return nil
}

func (s *DraftStore) save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.kv.Set(ctx, key, string(raw), s.ttl)
}

// Clear removes both halves of the user's draft.
func (s *DraftStore) Clear(ctx context.Context, user string) error {
	if err := s.kv.Delete(ctx, employeeDraftKey(user)); err != nil {
		return err
	}
	return s.kv.Delete(ctx, vehicleDraftKey(user))
}
