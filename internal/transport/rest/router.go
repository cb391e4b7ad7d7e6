package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/AtirathTechnologies/warehouse-hub/internal/access"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auth"
	"github.com/AtirathTechnologies/warehouse-hub/internal/catalog"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/report"
	"github.com/AtirathTechnologies/warehouse-hub/internal/settings"
	"github.com/AtirathTechnologies/warehouse-hub/internal/stock"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport/middleware"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport/swagger"
	"github.com/AtirathTechnologies/warehouse-hub/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles everything the router mounts. Nil handlers are skipped.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Access   *access.Handler
	Guard    *access.Guard
	Settings *settings.Handler
	AuditLog *auditlog.Handler
	Report   *report.Handler
	Stock    *stock.Handler
	Catalog  *catalog.Handler
}

type Options struct {
	AllowedOrigins []string
	SpecPath       string
	HealthChecks   map[string]Check
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, opts.HealthChecks)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TraceIDHeader},
		ExposedHeaders:   []string{middleware.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", swagger.SpecHandler(opts.SpecPath))
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}
			if h.Access != nil {
				pr.Get("/me/access", h.Access.GetMyAccess)
			}

			if h.Catalog != nil {
				pr.Get("/products", h.Catalog.ListProducts)
				pr.Get("/products/categories", h.Catalog.ListCategories)
				pr.Get("/warehouses", h.Catalog.ListWarehouses)
			}

			if h.Stock != nil {
				pr.Route("/stock", func(sr chi.Router) {
					sr.Post("/in", h.Stock.StockIn)
					sr.Post("/out", h.Stock.StockOut)
					sr.Get("/movements", h.Stock.ListMovements)
					sr.Get("/levels", h.Stock.ListLevels)
				})
			}

			if h.Guard == nil {
				return
			}
			guard := h.Guard

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Use(guard.RequireReportsAccess())
					rr.Get("/catalog", h.Report.GetCatalog)
					rr.Get("/", h.Report.ListReports)
					rr.With(guard.RequireReportGeneration()).Post("/", h.Report.GenerateReport)
				})
			}

			// Audit Logs, Users and Settings form the admin section; catalog writes live there too.
			pr.Group(func(ar chi.Router) {
				ar.Use(guard.RequireAdminSection())

				if h.AuditLog != nil {
					ar.Route("/audit-logs", func(lr chi.Router) {
						lr.Use(guard.RequireAuditLogs())
						lr.Use(guard.RequireReportType(permission.ReportAudit))
						lr.Get("/", h.AuditLog.ListAuditLogs)
						lr.Get("/facets", h.AuditLog.GetFacets)
					})
				}

				if h.User != nil {
					ar.Get("/users", h.User.ListUsers)
					ar.With(guard.RequireCapability(permission.AllowUserCreation)).Post("/users", h.User.CreateUser)
					ar.With(guard.RequireCapability(permission.AllowUserDeletion)).Delete("/users/{id}", h.User.DeleteUser)
				}

				if h.Catalog != nil {
					ar.Post("/products", h.Catalog.CreateProduct)
					ar.Post("/warehouses", h.Catalog.CreateWarehouse)
				}

				if h.Settings != nil {
					ar.Route("/settings", func(sr chi.Router) {
						sr.Get("/user-rules", h.Settings.GetUserRules)
						sr.Post("/user-rules/{role}/{capability}/toggle", h.Settings.ToggleUserRule)
						sr.Get("/reports", h.Settings.GetReportSettings)
						sr.Post("/reports/{reportType}/toggle", h.Settings.ToggleReport)
					})
				}
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	})
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":{"type":"NOT_FOUND","code":"ROUTE_NOT_FOUND","message":"route not found"}}`))
}
