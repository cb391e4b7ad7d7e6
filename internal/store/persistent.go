package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
)

// Persistent is a DocumentStore whose documents live in a Repository. Local
// subscribers are served by a Hub; changes made by other processes arrive
// through Refresh.
type Persistent struct {
	repo   Repository
	hub    *Hub
	logger *slog.Logger

	mu     sync.Mutex
	loaded map[Key]bool
}

func NewPersistent(repo Repository, logger *slog.Logger) *Persistent {
	return &Persistent{
		repo:   repo,
		hub:    NewHub(logger),
		logger: logger,
		loaded: make(map[Key]bool),
	}
}

// Subscribe loads the stored document the first time a key is watched.
func (p *Persistent) Subscribe(ctx context.Context, key Key, fn Listener) (Subscription, error) {
	if err := p.ensureLoaded(ctx, key); err != nil {
		return nil, err
	}
	return p.hub.Subscribe(ctx, key, fn)
}

func (p *Persistent) Publish(ctx context.Context, key Key, body json.RawMessage) error {
	if !json.Valid(body) {
		return internal.NewWriteError("document body is not valid JSON", nil)
	}

	// postgres keeps microseconds; truncating keeps the echo from Refresh identical.
	doc := Document{
		Key:       key,
		Body:      body,
		Exists:    true,
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := p.repo.Upsert(ctx, doc); err != nil {
		p.logger.Error("failed to persist document", "key", key, "error", err)
		return internal.NewWriteError("failed to publish document", err)
	}

	p.hub.commit(ctx, doc)
	return nil
}

// Refresh reloads key from the repository and fans it out if it changed.
func (p *Persistent) Refresh(ctx context.Context, key Key) error {
	doc, err := p.repo.Get(ctx, key)
	if err != nil {
		return err
	}
	if !doc.Exists {
		return nil
	}
	doc.Key = key
	p.hub.commit(ctx, doc)
	return nil
}

func (p *Persistent) ensureLoaded(ctx context.Context, key Key) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded[key] {
		return nil
	}
	if err := p.Refresh(ctx, key); err != nil {
		p.logger.Error("failed to load document", "key", key, "error", err)
		return internal.NewInternalError("failed to load document", err)
	}
	p.loaded[key] = true
	return nil
}
