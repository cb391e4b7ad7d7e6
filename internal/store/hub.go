package store

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Hub is an in-memory DocumentStore. Commits are serialized so every
// subscriber observes documents in commit order.
type Hub struct {
	commitMu sync.Mutex

	mu     sync.RWMutex
	docs   map[Key]Document
	subs   map[Key]map[uint64]*subscription
	nextID uint64

	logger *slog.Logger
	now    func() time.Time
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		docs:   make(map[Key]Document),
		subs:   make(map[Key]map[uint64]*subscription),
		logger: logger,
		now:    time.Now,
	}
}

type subscription struct {
	hub *Hub
	key Key
	id  uint64
	fn  Listener

	mu     sync.Mutex
	closed bool
}

func (s *subscription) deliver(ctx context.Context, doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fn(ctx, doc)
}

func (s *subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.hub.remove(s.key, s.id)
}

func (h *Hub) Subscribe(ctx context.Context, key Key, fn Listener) (Subscription, error) {
	h.commitMu.Lock()
	defer h.commitMu.Unlock()

	h.mu.Lock()
	h.nextID++
	sub := &subscription{hub: h, key: key, id: h.nextID, fn: fn}
	if h.subs[key] == nil {
		h.subs[key] = make(map[uint64]*subscription)
	}
	h.subs[key][sub.id] = sub
	current := h.current(key)
	h.mu.Unlock()

	h.logger.Debug("document subscription added", "key", key, "subscription_id", sub.id)
	sub.deliver(ctx, current)
	return sub, nil
}

func (h *Hub) Publish(ctx context.Context, key Key, body json.RawMessage) error {
	h.commit(ctx, Document{
		Key:       key,
		Body:      body,
		Exists:    true,
		UpdatedAt: h.now().UTC(),
	})
	return nil
}

// Current returns the last committed document for key.
func (h *Hub) Current(key Key) Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current(key)
}

func (h *Hub) current(key Key) Document {
	doc, ok := h.docs[key]
	if !ok {
		return Document{Key: key}
	}
	doc.Body = append(json.RawMessage(nil), doc.Body...)
	return doc
}

// commit stores doc and fans it out. A document identical to the current one
// is dropped so that a store echoing our own writes back does not redeliver.
func (h *Hub) commit(ctx context.Context, doc Document) {
	h.commitMu.Lock()
	defer h.commitMu.Unlock()

	h.mu.Lock()
	if prev, ok := h.docs[doc.Key]; ok && prev.UpdatedAt.Equal(doc.UpdatedAt) && bytes.Equal(prev.Body, doc.Body) {
		h.mu.Unlock()
		return
	}
	doc.Body = append(json.RawMessage(nil), doc.Body...)
	h.docs[doc.Key] = doc
	subs := make([]*subscription, 0, len(h.subs[doc.Key]))
	for _, s := range h.subs[doc.Key] {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	h.logger.Debug("document committed", "key", doc.Key, "subscribers", len(subs))
	for _, s := range subs {
		cp := doc
		cp.Body = append(json.RawMessage(nil), doc.Body...)
		s.deliver(ctx, cp)
	}
}

func (h *Hub) remove(key Key, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[key], id)
	if len(h.subs[key]) == 0 {
		delete(h.subs, key)
	}
}

// Subscribers reports how many live subscriptions exist for key.
func (h *Hub) Subscribers(key Key) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}
