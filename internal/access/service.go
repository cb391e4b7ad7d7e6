package access

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
)

// Service is a read-only consumer of the published settings. It keeps the
// last snapshot it received and derives access from it on every call.
// Until a document is published the matrix is empty and every report type
// is enabled.
type Service struct {
	docs   store.DocumentStore
	logger *slog.Logger

	mu           sync.RWMutex
	matrix       permission.Matrix
	availability permission.ReportAvailability
	subs         []store.Subscription
}

func NewService(docs store.DocumentStore, logger *slog.Logger) *Service {
	return &Service{
		docs:         docs,
		logger:       logger,
		matrix:       permission.Matrix{},
		availability: permission.ReportAvailability{},
	}
}

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
	m := permission.Matrix{}
	if doc.Exists {
		decoded, err := permission.DecodeMatrix(doc.Body)
		if err != nil {
			s.logger.Error("ignoring malformed user rules", "code", internal.ErrCodeSnapshotMalformed, "error", err)
			return
		}
		m = decoded
	}

	s.mu.Lock()
	s.matrix = m
	s.mu.Unlock()
	s.logger.Debug("user rules snapshot received", "exists", doc.Exists, "roles", len(m))
}

func (s *Service) onReports(_ context.Context, doc store.Document) {
	a := permission.ReportAvailability{}
	if doc.Exists {
		decoded, err := permission.DecodeReportAvailability(doc.Body)
		if err != nil {
			s.logger.Error("ignoring malformed report settings", "code", internal.ErrCodeSnapshotMalformed, "error", err)
			return
		}
		a = decoded
	}

	s.mu.Lock()
	s.availability = a
	s.mu.Unlock()
}

// Snapshot returns copies of the current matrix and availability.
func (s *Service) Snapshot() (permission.Matrix, permission.ReportAvailability) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matrix.Clone(), s.availability.Clone()
}

func (s *Service) Derive(role permission.Role) permission.DerivedAccess {
	m, _ := s.Snapshot()
	return permission.Derive(role, m)
}

func (s *Service) Navigation(role permission.Role) []permission.NavItem {
	m, _ := s.Snapshot()
	return permission.Navigation(role, m)
}

func (s *Service) ReportsMode(role permission.Role) permission.ReportsMode {
	m, _ := s.Snapshot()
	return permission.ReportsAccessMode(role, m)
}

func (s *Service) IsReportTypeEnabled(t permission.ReportType) bool {
	_, a := s.Snapshot()
	return permission.IsReportTypeEnabled(t, a)
}

func (s *Service) CanGenerateReport(role permission.Role, t permission.ReportType) bool {
	m, a := s.Snapshot()
	return permission.CanGenerateReport(role, m, a, t)
}

// HasCapability reads a single flag from the role's row.
func (s *Service) HasCapability(role permission.Role, key permission.Capability) bool {
	m, _ := s.Snapshot()
	v, err := m.For(role).Get(key)
	return err == nil && v
}
