package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	reportDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/report"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
)

const defaultListLimit = 100

type RepositoryAPI interface {
	Create(ctx context.Context, report *reportDatamodel.GeneratedReport) error
	List(ctx context.Context, limit int) ([]*reportDatamodel.GeneratedReport, error)
}

// Authorizer is the slice of the access service reports depend on.
type Authorizer interface {
	ReportsMode(role permission.Role) permission.ReportsMode
	IsReportTypeEnabled(t permission.ReportType) bool
}

type Service struct {
	repo   RepositoryAPI
	access Authorizer
	sink   auditlog.Sink
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, access Authorizer, sink auditlog.Sink, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		access: access,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Catalog lists the enabled report cards for role. Disabled types are hidden.
func (s *Service) Catalog(role permission.Role) ([]Card, error) {
	mode := s.access.ReportsMode(role)
	if mode == permission.ReportsDenied {
		return nil, internal.ErrReportsAccessDenied
	}

	cards := make([]Card, 0, len(catalog))
	for _, c := range catalog {
		if !s.access.IsReportTypeEnabled(c.Type) {
			continue
		}
		c.CanGenerate = mode == permission.ReportsFull
		cards = append(cards, c)
	}
	return cards, nil
}

// Generate records a report request. The role must be in Full mode and the
// report type enabled at the time of the call.
func (s *Service) Generate(ctx context.Context, actor *internal.CurrentUser, role permission.Role, dto GenerateReportDTO) (*Report, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	reportType := permission.ReportType(dto.Type)

	if s.access.ReportsMode(role) != permission.ReportsFull {
		s.logger.Warn("report generation denied", "role", role, "report_type", reportType)
		return nil, internal.ErrReportsAccessDenied
	}
	if !s.access.IsReportTypeEnabled(reportType) {
		return nil, internal.ErrReportDisabled.WithDetails(map[string]string{"reportType": string(reportType)})
	}

	params := dto.Params
	if params == nil {
		params = map[string]string{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode report parameters", err)
	}

	row := &reportDatamodel.GeneratedReport{
		Type:        string(reportType),
		Title:       titleOf(reportType),
		Params:      string(encoded),
		GeneratedAt: s.now().UTC(),
		GeneratedBy: string(role),
		RequestedBy: actor.AuditName(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to save generated report", "error", err, "report_type", reportType)
		return nil, internal.NewInternalError("failed to save report", err)
	}

	if err := s.sink.Append(ctx, auditlog.Entry{
		User:        actor.AuditName(),
		Action:      auditlog.ActionCreate,
		Module:      auditlog.ModuleReports,
		Description: fmt.Sprintf("Generated %s", row.Title),
	}); err != nil {
		s.logger.Warn("audit append failed", "error", err, "report_id", row.ID)
	}

	s.logger.Info("report generated", "report_id", row.ID, "report_type", reportType, "role", role)
	return FromDataModel(row), nil
}

// List returns generated reports, newest first, to any role that can at least view.
func (s *Service) List(ctx context.Context, role permission.Role, limit int) ([]*Report, error) {
	if s.access.ReportsMode(role) == permission.ReportsDenied {
		return nil, internal.ErrReportsAccessDenied
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list reports", "error", err)
		return nil, internal.NewInternalError("failed to list reports", err)
	}

	reports := make([]*Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, FromDataModel(row))
	}
	return reports, nil
}
