package domain

import (
	"testing"
	"time"
)

func TestIdempotency_UniquePerScopeAndKey(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()

	rec := &Idempotency{ID: "id-1", Scope: "article", Key: "k1", ResourceID: 7, Status: 201, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert valid: %v", err)
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", "id-1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Scope != "article" || got.Key != "k1" || got.ResourceID != 7 || got.Status != 201 {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt should be set by autoCreateTime")
	}

	// same key, same scope
	dup := &Idempotency{ID: "id-2", Scope: "article", Key: "k1", ResourceID: 8, Status: 201, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected UNIQUE violation on (scope, key)")
	}

	// same key, other scope
	other := &Idempotency{ID: "id-3", Scope: "comment:1", Key: "k1", ResourceID: 9, Status: 201, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("same key in another scope should be accepted: %v", err)
	}
}
