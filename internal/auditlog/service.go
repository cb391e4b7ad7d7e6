package auditlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/core/common/validation"
	auditDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/auditlog"
)

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

// RetentionOptions are the retention windows offered in settings. Zero keeps logs forever.
var RetentionOptions = []time.Duration{
	30 * 24 * time.Hour,
	90 * 24 * time.Hour,
	180 * 24 * time.Hour,
	365 * 24 * time.Hour,
	0,
}

type RepositoryAPI interface {
	Create(ctx context.Context, log *auditDatamodel.AuditLog) error
	List(ctx context.Context, filter Filter) ([]*auditDatamodel.AuditLog, error)
	DistinctUsers(ctx context.Context) ([]string, error)
	DistinctActions(ctx context.Context) ([]string, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// List returns matching entries, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	if err := validation.ValidateDateRange(filter.From, filter.To); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		return nil, internal.NewInternalError("failed to list audit logs", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, FromDataModel(row))
	}
	return entries, nil
}

// Facets lists the distinct users and actions for the filter dropdowns.
func (s *Service) Facets(ctx context.Context) (Facets, error) {
	users, err := s.repo.DistinctUsers(ctx)
	if err != nil {
		s.logger.Error("failed to load audit users", "error", err)
		return Facets{}, internal.NewInternalError("failed to load audit facets", err)
	}
	actions, err := s.repo.DistinctActions(ctx)
	if err != nil {
		s.logger.Error("failed to load audit actions", "error", err)
		return Facets{}, internal.NewInternalError("failed to load audit facets", err)
	}
	return Facets{Users: users, Actions: actions}, nil
}

// Purge deletes entries older than retention. A zero retention keeps everything.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		s.logger.Debug("audit retention is indefinite, nothing to purge")
		return 0, nil
	}

	cutoff := s.now().UTC().Add(-retention)
	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to purge audit logs", "error", err, "cutoff", cutoff)
		return 0, internal.NewInternalError("failed to purge audit logs", err)
	}

	s.logger.Info("audit logs purged", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}
