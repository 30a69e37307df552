package domain

import "time"

// Idempotency records the outcome of a create request keyed by (scope, key).
// Scope names the collection being written to ("article", "comment:<id>") so
// the same client key can be reused across collections. A replay with the
// same key returns ResourceID instead of inserting again.
type Idempotency struct {
	ID         string    `gorm:"type:varchar(36);primaryKey"`
	Scope      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_idem_scope_key,priority:1"`
	Key        string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_idem_scope_key,priority:2"`
	ResourceID int       `gorm:"not null"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
