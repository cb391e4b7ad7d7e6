package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
)

// Service owns the editable copy of the permission matrix and report
// availability. Mutations are applied locally first, then audited, then
// published; a failed publish is reported but not rolled back.
type Service struct {
	docs   store.DocumentStore
	sink   auditlog.Sink
	logger *slog.Logger

	matrix *permission.PermissionMatrix

	mu           sync.RWMutex
	availability permission.ReportAvailability
	subs         []store.Subscription

	// serializes mutate+publish so snapshots reach the store in mutation order
	writeMu sync.Mutex

	now func() time.Time
}

func NewService(docs store.DocumentStore, sink auditlog.Sink, logger *slog.Logger) *Service {
	return &Service{
		docs:         docs,
		sink:         sink,
		logger:       logger,
		matrix:       permission.NewPermissionMatrix(),
		availability: permission.DefaultReportAvailability(),
		now:          time.Now,
	}
}

// Start subscribes to both settings documents. Until a document exists the
// defaults stay in effect.
func (s *Service) Start(ctx context.Context) error {
	rules, err := s.docs.Subscribe(ctx, store.KeyUserRules, s.onUserRules)
	if err != nil {
		return fmt.Errorf("subscribe to user rules: %w", err)
	}
	reports, err := s.docs.Subscribe(ctx, store.KeyReports, s.onReports)
	if err != nil {
		rules.Unsubscribe()
		return fmt.Errorf("subscribe to report settings: %w", err)
	}

	s.mu.Lock()
	s.subs = append(s.subs, rules, reports)
	s.mu.Unlock()
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (s *Service) onUserRules(_ context.Context, doc store.Document) {
	if !doc.Exists {
		s.logger.Debug("user rules not published yet, keeping defaults")
		return
	}
	m, err := permission.DecodeMatrix(doc.Body)
	if err != nil {
		s.logger.Error("ignoring malformed user rules", "code", internal.ErrCodeSnapshotMalformed, "error", err)
		return
	}
	s.matrix.Replace(m)
}

func (s *Service) onReports(_ context.Context, doc store.Document) {
	if !doc.Exists {
		s.logger.Debug("report settings not published yet, keeping defaults")
		return
	}
	a, err := permission.DecodeReportAvailability(doc.Body)
	if err != nil {
		s.logger.Error("ignoring malformed report settings", "code", internal.ErrCodeSnapshotMalformed, "error", err)
		return
	}
	s.mu.Lock()
	s.availability = a
	s.mu.Unlock()
}

func (s *Service) Matrix() permission.Matrix {
	return s.matrix.Snapshot()
}

func (s *Service) ReportAvailability() permission.ReportAvailability {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.availability.Clone()
}

// ToggleCapability flips key on role. A toggle the rules turn into a no-op
// (Staff report viewing) is neither audited nor published.
func (s *Service) ToggleCapability(ctx context.Context, actor *internal.CurrentUser, role permission.Role, key permission.Capability) (permission.RoleCapabilities, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	change, err := s.matrix.Apply(role, key)
	if err != nil {
		return permission.RoleCapabilities{}, err
	}
	before, after := change.Before, change.After
	if after == before {
		s.logger.Info("capability toggle had no effect", "role", role, "capability", key)
		return after, nil
	}

	oldValue, _ := before.Get(key)
	newValue, _ := after.Get(key)
	s.audit(ctx, actor, fmt.Sprintf("Updated user rules for role: %s (%s: %t -> %t)", role, key, oldValue, newValue))

	body, err := permission.EncodeMatrix(change.Snapshot, s.now())
	if err != nil {
		return after, internal.NewWriteError("failed to encode user rules", err)
	}
	if err := s.docs.Publish(ctx, store.KeyUserRules, body); err != nil {
		s.logger.Error("failed to publish user rules", "error", err, "role", role, "capability", key)
		return after, asWriteError("failed to publish user rules", err)
	}

	s.logger.Info("user rules updated", "role", role, "capability", key, "value", newValue)
	return after, nil
}

func (s *Service) ToggleReportAvailability(ctx context.Context, actor *internal.CurrentUser, reportType permission.ReportType) (permission.ReportAvailability, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	before := s.availability
	next, err := permission.ToggleReportAvailability(before, reportType)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.availability = next
	s.mu.Unlock()

	s.audit(ctx, actor, fmt.Sprintf("Updated report availability settings (%s: %t -> %t)",
		reportType, before.IsEnabled(reportType), next.IsEnabled(reportType)))

	body, err := permission.EncodeReportAvailability(next, s.now())
	if err != nil {
		return next.Clone(), internal.NewWriteError("failed to encode report settings", err)
	}
	if err := s.docs.Publish(ctx, store.KeyReports, body); err != nil {
		s.logger.Error("failed to publish report settings", "error", err, "report_type", reportType)
		return next.Clone(), asWriteError("failed to publish report settings", err)
	}

	s.logger.Info("report availability updated", "report_type", reportType, "enabled", next.IsEnabled(reportType))
	return next.Clone(), nil
}

func (s *Service) audit(ctx context.Context, actor *internal.CurrentUser, description string) {
	err := s.sink.Append(ctx, auditlog.Entry{
		User:        actor.AuditName(),
		Action:      auditlog.ActionUpdate,
		Module:      auditlog.ModuleSettings,
		Description: description,
	})
	if err != nil {
		s.logger.Warn("audit append failed", "error", err, "description", description)
	}
}

func asWriteError(message string, err error) error {
	if internal.IsWriteError(err) {
		return err
	}
	return internal.NewWriteError(message, err)
}
