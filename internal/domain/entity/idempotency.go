package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey stores a processed print/commit request so a resubmitted form replays its response
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_session_key;size:255;not null"` // Token embedded in the checkout form
	SessionID    string    `gorm:"uniqueIndex:idx_idempotency_session_key;size:64;not null"`  // Browser session that submitted it
	Endpoint     string    `gorm:"size:255;not null"`                                        // e.g. "POST /store/checkout/print"
	ResponseCode int       `gorm:"not null"` // 0 while the first request is still running
	Location     string    `gorm:"size:512"` // Redirect target of the original response
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// BeforeCreate generates the primary key
func (i *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// Pending reports whether the request that claimed the key has not finished yet.
func (i *IdempotencyKey) Pending() bool {
	return i.ResponseCode == 0
}
