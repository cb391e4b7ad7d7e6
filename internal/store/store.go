package store

import (
	"context"
	"encoding/json"
	"time"
)

// Key names a settings document.
type Key string

const (
	KeyUserRules Key = "userRules"
	KeyReports   Key = "reports"
)

// Document is the current value of a key. Exists is false until the key has
// been published for the first time.
type Document struct {
	Key       Key
	Body      json.RawMessage
	Exists    bool
	UpdatedAt time.Time
}

// Listener receives the current document on subscribe and every later change.
// It must not call Publish or Unsubscribe on the same store.
type Listener func(ctx context.Context, doc Document)

type Subscription interface {
	// Unsubscribe stops delivery. Once it returns the listener is never called again.
	Unsubscribe()
}

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// DocumentStore is the replicated settings store as seen by one process.
type DocumentStore interface {
	Subscribe(ctx context.Context, key Key, fn Listener) (Subscription, error)
	// Publish replaces the document at key. Failures are WriteErrors.
	Publish(ctx context.Context, key Key, body json.RawMessage) error
}

// Repository persists documents for Persistent.
type Repository interface {
	Get(ctx context.Context, key Key) (Document, error)
	Upsert(ctx context.Context, doc Document) error
}
