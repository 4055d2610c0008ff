package cache

import (
	"context"
	"errors"
	"time"
)

// Revocations records signed-out token ids until the token would have
// expired anyway.
type Revocations struct {
	kv KVStore
}

func NewRevocations(kv KVStore) *Revocations {
	return &Revocations{kv: kv}
}

func revokedKey(jti string) string { return "revoked:" + jti }

// Revoke marks jti as revoked until expiresAt. Already-expired tokens are
// ignored.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.kv.Set(ctx, revokedKey(jti), "1", ttl)
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := r.kv.Get(ctx, revokedKey(jti))
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
