package model

import "time"

// AdvisoryLock is a short-lived mutual-exclusion record. Lock identity is
// encoded in the document key; a duplicate-key insert means the region is
// held by another request. A TTL index on expires_at reaps stale locks.
type AdvisoryLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
