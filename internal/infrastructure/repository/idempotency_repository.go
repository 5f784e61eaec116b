package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/trademate-console/internal/domain/entity"
	domainRepo "github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// idempotencyRepository keeps replayable form submissions in the console's own database.
type idempotencyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewIdempotencyRepository creates a gorm-backed idempotency store
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db, now: time.Now}
}

// GetByKey returns the live record for a session's key, or nil when there is none.
// Expired rows are ignored even before the cleanup job removes them.
func (r *idempotencyRepository) GetByKey(ctx context.Context, key, sessionID string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND session_id = ? AND expires_at > ?", key, sessionID, r.now()).
		Take(&ikey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ikey, nil
}

// Claim inserts a pending row for the key. The unique index decides a race: the
// loser's insert is dropped and Claim reports false. An expired row for the same
// key is cleared first so the key can be reused.
func (r *idempotencyRepository) Claim(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	db := r.db.WithContext(ctx)
	if err := db.
		Where("key = ? AND session_id = ? AND expires_at <= ?", ikey.Key, ikey.SessionID, r.now()).
		Delete(&entity.IdempotencyKey{}).Error; err != nil {
		return false, err
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(ikey)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Save stores the response of the request holding the claim.
func (r *idempotencyRepository) Save(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return r.db.WithContext(ctx).
		Model(&entity.IdempotencyKey{}).
		Where("key = ? AND session_id = ?", ikey.Key, ikey.SessionID).
		Updates(map[string]any{
			"response_code": ikey.ResponseCode,
			"location":      ikey.Location,
			"response_body": ikey.ResponseBody,
		}).Error
}

func (r *idempotencyRepository) Release(ctx context.Context, key, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("key = ? AND session_id = ? AND response_code = 0", key, sessionID).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&entity.IdempotencyKey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logging.FromContext(ctx).Info("deleted expired idempotency keys", "count", res.RowsAffected)
	}
	return nil
}
