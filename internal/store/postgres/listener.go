package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
	"github.com/jackc/pgx/v5"
)

// Refresher reloads a document after another process changed it.
type Refresher interface {
	Refresh(ctx context.Context, key store.Key) error
}

// Listener turns postgres notifications on a channel into Refresh calls.
type Listener struct {
	dsn       string
	channel   string
	refresher Refresher
	logger    *slog.Logger

	retryDelay time.Duration
}

func NewListener(dsn, channel string, refresher Refresher, logger *slog.Logger) *Listener {
	return &Listener{
		dsn:        dsn,
		channel:    channel,
		refresher:  refresher,
		logger:     logger,
		retryDelay: 2 * time.Second,
	}
}

// Run blocks until ctx is cancelled, reconnecting when the connection drops.
// After every (re)connect all known keys are refreshed, since notifications
// sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("settings listener disconnected", "channel", l.channel, "error", err)

		select {
		case <-time.After(l.retryDelay):
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	l.logger.Info("listening for settings changes", "channel", l.channel)

	for _, key := range []store.Key{store.KeyUserRules, store.KeyReports} {
		l.refresh(ctx, key)
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.refresh(ctx, store.Key(n.Payload))
	}
}

func (l *Listener) refresh(ctx context.Context, key store.Key) {
	if err := l.refresher.Refresh(ctx, key); err != nil {
		l.logger.Error("failed to refresh settings document", "key", key, "error", err)
	}
}
