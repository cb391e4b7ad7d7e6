package postgres

import (
	"context"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	auditDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/auditlog"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) auditlog.RepositoryAPI {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *auditDatamodel.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AuditLogRepository) List(ctx context.Context, filter auditlog.Filter) ([]*auditDatamodel.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{})

	if filter.User != "" {
		query = query.Where("user_name = ?", filter.User)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", string(filter.Action))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", startOfDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", startOfDay(*filter.To).AddDate(0, 0, 1))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var logs []*auditDatamodel.AuditLog
	err := query.Order("created_at DESC").Order("id DESC").Find(&logs).Error
	return logs, err
}

func (r *AuditLogRepository) DistinctUsers(ctx context.Context) ([]string, error) {
	var users []string
	err := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{}).
		Distinct().Order("user_name ASC").Pluck("user_name", &users).Error
	return users, err
}

func (r *AuditLogRepository) DistinctActions(ctx context.Context) ([]string, error) {
	var actions []string
	err := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{}).
		Distinct().Order("action ASC").Pluck("action", &actions).Error
	return actions, err
}

func (r *AuditLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&auditDatamodel.AuditLog{})
	return result.RowsAffected, result.Error
}

// startOfDay truncates t to midnight in its own location, matching the
// date-only filters sent by the audit log page.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
