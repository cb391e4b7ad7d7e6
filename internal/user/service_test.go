package user_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	auditMocks "github.com/AtirathTechnologies/warehouse-hub/internal/auditlog/mocks"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auth"
	userDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/user"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
	"github.com/AtirathTechnologies/warehouse-hub/internal/user"
	userPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func openDB() *sqlx.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	Expect(db.AutoMigrate(&userDatamodel.User{})).To(Succeed())
	return sqlx.NewDb(sqlDB, "sqlite3")
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		ctrl    *gomock.Controller
		sink    *auditMocks.MockSink
		db      *sqlx.DB
		service *user.Service
		admin   *internal.CurrentUser
		entries []auditlog.Entry
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		sink = auditMocks.NewMockSink(ctrl)
		entries = nil
		sink.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e auditlog.Entry) error {
			entries = append(entries, e)
			return nil
		}).AnyTimes()
		db = openDB()
		service = user.NewService(userPostgres.NewRepository(db), sink, testLogger, bcrypt.MinCost)
		admin = &internal.CurrentUser{ID: 999, Email: "admin@warehouse.test", Role: "Admin"}
	})

	create := func(email, role string) (*user.User, error) {
		return service.Create(ctx, admin, user.CreateUserDTO{Email: email, Name: "Someone", Password: "s3cret-pass", Role: role})
	}

	Describe("Create", func() {
		It("stores a hashed password and the role", func() {
			u, err := create("  Staff@Warehouse.test ", "Staff")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(BeNumerically(">", 0))
			Expect(u.Email).To(Equal("staff@warehouse.test"))
			Expect(u.Role).To(Equal(permission.RoleStaff))
			Expect(u.IsActive).To(BeTrue())

			var hash string
			Expect(db.Get(&hash, db.Rebind("SELECT password_hash FROM users WHERE id = ?"), u.ID)).To(Succeed())
			Expect(auth.VerifyPassword(hash, "s3cret-pass")).To(Succeed())

			loaded, err := service.GetByID(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Email).To(Equal("staff@warehouse.test"))
		})

		It("audits the creation under USERS", func() {
			_, err := create("viewer@warehouse.test", "Viewer")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(ConsistOf(auditlog.Entry{
				User:        "admin@warehouse.test",
				Action:      auditlog.ActionCreate,
				Module:      auditlog.ModuleUsers,
				Description: "Created user: viewer@warehouse.test (Viewer)",
			}))
		})

		It("accepts only the four roles", func() {
			_, err := create("x@warehouse.test", "Superuser")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("role must be one of Admin, Manager, Staff, Viewer"))
		})

		It("rejects a duplicate email", func() {
			_, err := create("dup@warehouse.test", "Staff")
			Expect(err).NotTo(HaveOccurred())
			_, err = create("DUP@warehouse.test", "Manager")
			Expect(errors.Is(err, internal.ErrUserExists)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("deactivates the user and audits it", func() {
			u, err := create("leaving@warehouse.test", "Staff")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, admin, u.ID)).To(Succeed())
			loaded, err := service.GetByID(ctx, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.IsActive).To(BeFalse())
			Expect(entries[len(entries)-1].Action).To(Equal(auditlog.ActionDelete))
			Expect(entries[len(entries)-1].Description).To(Equal("Deleted user: leaving@warehouse.test (Staff)"))

			err = service.Delete(ctx, admin, u.ID)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})

		It("refuses to delete the caller", func() {
			err := service.Delete(ctx, admin, admin.ID)
			Expect(err).To(HaveOccurred())
		})

		It("returns not found for an unknown id", func() {
			err := service.Delete(ctx, admin, 4242)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			h := user.NewHandler(transport.NewBaseHandler(testLogger), service)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), admin)))
				})
			})
			router.Get("/users", h.ListUsers)
			router.Post("/users", h.CreateUser)
			router.Delete("/users/{id}", h.DeleteUser)
		})

		It("creates and lists users without exposing password hashes", func() {
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"m@warehouse.test","name":"M","password":"longenough","role":"Manager"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("m@warehouse.test"))
			Expect(rec.Body.String()).NotTo(ContainSubstring("password"))
		})

		It("rejects a non-numeric id", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/abc", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
