package access_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/access"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/store"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAccess(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Access Suite")
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func publishMatrix(hub *store.Hub, m permission.Matrix) {
	body, err := permission.EncodeMatrix(m, time.Now())
	Expect(err).NotTo(HaveOccurred())
	Expect(hub.Publish(context.Background(), store.KeyUserRules, body)).To(Succeed())
}

func publishAvailability(hub *store.Hub, a permission.ReportAvailability) {
	body, err := permission.EncodeReportAvailability(a, time.Now())
	Expect(err).NotTo(HaveOccurred())
	Expect(hub.Publish(context.Background(), store.KeyReports, body)).To(Succeed())
}

var _ = Describe("Service", func() {
	var (
		hub *store.Hub
		svc *access.Service
	)

	BeforeEach(func() {
		hub = store.NewHub(testLogger)
		svc = access.NewService(hub, testLogger)
		Expect(svc.Start(context.Background())).To(Succeed())
	})

	AfterEach(func() {
		svc.Stop()
	})

	It("grants nothing report-related before rules are published", func() {
		Expect(svc.ReportsMode(permission.RoleAdmin)).To(Equal(permission.ReportsDenied))
		Expect(svc.IsReportTypeEnabled(permission.ReportStock)).To(BeTrue())
		Expect(svc.Derive(permission.RoleAdmin).CanAccessAdminSection).To(BeTrue())
	})

	It("re-derives on every published update", func() {
		publishMatrix(hub, permission.DefaultMatrix())
		Expect(svc.ReportsMode(permission.RoleAdmin)).To(Equal(permission.ReportsFull))
		Expect(svc.ReportsMode(permission.RoleManager)).To(Equal(permission.ReportsViewOnly))

		publishMatrix(hub, permission.Matrix{permission.RoleAdmin: {AllowReportViewing: true}})
		Expect(svc.ReportsMode(permission.RoleAdmin)).To(Equal(permission.ReportsViewOnly))
		Expect(svc.ReportsMode(permission.RoleManager)).To(Equal(permission.ReportsDenied))
	})

	It("combines mode and availability per report card", func() {
		publishMatrix(hub, permission.DefaultMatrix())
		publishAvailability(hub, permission.ReportAvailability{permission.ReportValuation: false})

		Expect(svc.CanGenerateReport(permission.RoleAdmin, permission.ReportStock)).To(BeTrue())
		Expect(svc.CanGenerateReport(permission.RoleAdmin, permission.ReportValuation)).To(BeFalse())
		Expect(svc.CanGenerateReport(permission.RoleManager, permission.ReportStock)).To(BeFalse())
	})

	It("ignores malformed documents", func() {
		publishMatrix(hub, permission.DefaultMatrix())
		Expect(hub.Publish(context.Background(), store.KeyUserRules, json.RawMessage(`not json`))).To(Succeed())
		Expect(svc.ReportsMode(permission.RoleAdmin)).To(Equal(permission.ReportsFull))
	})

	It("stops following updates after Stop", func() {
		svc.Stop()
		Expect(hub.Subscribers(store.KeyUserRules)).To(Equal(0))
		Expect(hub.Subscribers(store.KeyReports)).To(Equal(0))

		publishMatrix(hub, permission.DefaultMatrix())
		Expect(svc.ReportsMode(permission.RoleAdmin)).To(Equal(permission.ReportsDenied))
	})

	It("reads single capabilities", func() {
		publishMatrix(hub, permission.DefaultMatrix())
		Expect(svc.HasCapability(permission.RoleAdmin, permission.AllowUserDeletion)).To(BeTrue())
		Expect(svc.HasCapability(permission.RoleManager, permission.AllowUserDeletion)).To(BeFalse())
		Expect(svc.HasCapability(permission.RoleManager, permission.Capability("bogus"))).To(BeFalse())
	})
})

var _ = Describe("Guard", func() {
	var (
		hub   *store.Hub
		guard *access.Guard
	)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	run := func(mw func(http.Handler) http.Handler, role string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if role != "" {
			req = req.WithContext(internal.ContextWithUser(req.Context(), &internal.CurrentUser{ID: 7, Email: "u@example.com", Role: role}))
		}
		rec := httptest.NewRecorder()
		mw(ok).ServeHTTP(rec, req)
		return rec.Code
	}

	BeforeEach(func() {
		hub = store.NewHub(testLogger)
		svc := access.NewService(hub, testLogger)
		Expect(svc.Start(context.Background())).To(Succeed())
		DeferCleanup(svc.Stop)
		publishMatrix(hub, permission.DefaultMatrix())
		guard = access.NewGuard(svc, testLogger)
	})

	It("requires an authenticated user", func() {
		Expect(run(guard.RequireAdminSection(), "")).To(Equal(http.StatusUnauthorized))
	})

	It("limits the admin section and audit logs to Admin and Manager", func() {
		Expect(run(guard.RequireAdminSection(), "Admin")).To(Equal(http.StatusNoContent))
		Expect(run(guard.RequireAuditLogs(), "Manager")).To(Equal(http.StatusNoContent))
		Expect(run(guard.RequireAdminSection(), "Staff")).To(Equal(http.StatusForbidden))
		Expect(run(guard.RequireAuditLogs(), "Viewer")).To(Equal(http.StatusForbidden))
	})

	It("gates reports by derived mode", func() {
		Expect(run(guard.RequireReportsAccess(), "Manager")).To(Equal(http.StatusNoContent))
		Expect(run(guard.RequireReportGeneration(), "Manager")).To(Equal(http.StatusForbidden))
		Expect(run(guard.RequireReportGeneration(), "Staff")).To(Equal(http.StatusNoContent))

		publishMatrix(hub, permission.Matrix{})
		Expect(run(guard.RequireReportsAccess(), "Viewer")).To(Equal(http.StatusForbidden))
	})

	It("checks single capabilities", func() {
		Expect(run(guard.RequireCapability(permission.AllowUserDeletion), "Admin")).To(Equal(http.StatusNoContent))
		Expect(run(guard.RequireCapability(permission.AllowUserDeletion), "Manager")).To(Equal(http.StatusForbidden))
	})

	It("denies unknown roles", func() {
		Expect(run(guard.RequireReportsAccess(), "Intern")).To(Equal(http.StatusForbidden))
		Expect(run(guard.RequireAdminSection(), "admin")).To(Equal(http.StatusForbidden))
	})

	It("refuses every role while a report type is disabled", func() {
		Expect(run(guard.RequireReportType(permission.ReportAudit), "Admin")).To(Equal(http.StatusNoContent))

		availability := permission.DefaultReportAvailability()
		availability[permission.ReportAudit] = false
		publishAvailability(hub, availability)

		Expect(run(guard.RequireReportType(permission.ReportAudit), "Admin")).To(Equal(http.StatusForbidden))
		Expect(run(guard.RequireReportType(permission.ReportAudit), "Manager")).To(Equal(http.StatusForbidden))
		Expect(run(guard.RequireReportType(permission.ReportStock), "Admin")).To(Equal(http.StatusNoContent))
	})
})

var _ = Describe("Handler", func() {
	It("returns derived access and navigation for the caller", func() {
		hub := store.NewHub(testLogger)
		svc := access.NewService(hub, testLogger)
		Expect(svc.Start(context.Background())).To(Succeed())
		defer svc.Stop()
		publishMatrix(hub, permission.DefaultMatrix())

		handler := access.NewHandler(&transport.BaseHandler{Logger: testLogger}, svc)
		req := httptest.NewRequest(http.MethodGet, "/me/access", nil)
		req = req.WithContext(internal.ContextWithUser(req.Context(), &internal.CurrentUser{ID: 3, Role: "Staff"}))
		rec := httptest.NewRecorder()
		handler.GetMyAccess(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body struct {
			Role         string               `json:"role"`
			ReportsMode  string               `json:"reportsMode"`
			CanViewAudit bool                 `json:"canViewAuditLogs"`
			Navigation   []permission.NavItem `json:"navigation"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Role).To(Equal("Staff"))
		Expect(body.ReportsMode).To(Equal("full"))
		Expect(body.CanViewAudit).To(BeFalse())
		Expect(body.Navigation).To(ContainElement(permission.NavItem{Label: "Reports", Path: "/reports"}))
	})
})
