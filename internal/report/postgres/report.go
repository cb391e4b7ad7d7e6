package postgres

import (
	"context"

	reportDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/report"
	"github.com/AtirathTechnologies/warehouse-hub/internal/report"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, rep *reportDatamodel.GeneratedReport) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *ReportRepository) List(ctx context.Context, limit int) ([]*reportDatamodel.GeneratedReport, error) {
	var reports []*reportDatamodel.GeneratedReport
	err := r.db.WithContext(ctx).Order("generated_at DESC").Order("id DESC").Limit(limit).Find(&reports).Error
	return reports, err
}
