package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auth"
	authPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/auth/postgres"
	userDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/user"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	accessSecret  = "test-access-secret-0123456789abcdef"
	refreshSecret = "test-refresh-secret-0123456789abcdef"
)

func openDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	sqlDB, err := db.DB()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	gomega.Expect(db.AutoMigrate(&userDatamodel.User{})).To(gomega.Succeed())
	return db
}

func seedUser(db *gorm.DB, email, role string, active bool) *userDatamodel.User {
	hash, err := auth.HashPassword("correct_password", bcrypt.MinCost)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	u := &userDatamodel.User{Email: email, Name: role + " user", PasswordHash: hash, Role: role, IsActive: true}
	gomega.Expect(db.Create(u).Error).To(gomega.Succeed())
	if !active {
		gomega.Expect(db.Model(u).Update("is_active", false).Error).To(gomega.Succeed())
	}
	return u
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		service  *auth.Service
		tokenGen *auth.JWTTokenGenerator
		admin    *userDatamodel.User
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		db = openDB()
		tokenGen = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		service = auth.NewService(authPostgres.NewRepository(db), tokenGen, testLogger)
		admin = seedUser(db, "admin@warehouse.test", "Admin", true)
		seedUser(db, "gone@warehouse.test", "Staff", false)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("returns distinct access and refresh tokens carrying id, email and role", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{Email: "admin@warehouse.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
			gomega.Expect(tokens.ExpiresIn).To(gomega.Equal(int64(900)))

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Email).To(gomega.Equal("admin@warehouse.test"))
			gomega.Expect(claims.Role).To(gomega.Equal("Admin"))
			id, err := claims.ParsedUserID()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(id).To(gomega.Equal(admin.ID))
		})

		ginkgo.It("rejects an unknown email and a wrong password the same way", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "nobody@warehouse.test", Password: "correct_password"})
			gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())

			_, err = service.Authenticate(ctx, auth.LoginDTO{Email: "admin@warehouse.test", Password: "wrong"})
			gomega.Expect(errors.Is(err, internal.ErrInvalidCredentials)).To(gomega.BeTrue())
		})

		ginkgo.It("rejects an inactive user", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "gone@warehouse.test", Password: "correct_password"})
			gomega.Expect(errors.Is(err, internal.ErrUserInactive)).To(gomega.BeTrue())
		})

		ginkgo.It("validates input", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Password: "x"})
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))

			_, err = service.Authenticate(ctx, auth.LoginDTO{Email: "admin@warehouse.test"})
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
		})
	})

	ginkgo.Describe("tokens", func() {
		var tokens auth.AuthTokens

		ginkgo.BeforeEach(func() {
			var err error
			tokens, err = service.Authenticate(ctx, auth.LoginDTO{Email: "admin@warehouse.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("does not accept a refresh token as an access token", func() {
			_, err := service.ValidateAccessToken(tokens.RefreshToken)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("refreshes with the current role of the user", func() {
			gomega.Expect(db.Model(admin).Update("role", "Manager").Error).To(gomega.Succeed())

			refreshed, err := service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Role).To(gomega.Equal("Manager"))
		})

		ginkgo.It("refuses to refresh with an access token", func() {
			_, err := service.RefreshTokens(ctx, tokens.AccessToken)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})

		ginkgo.It("reports expired tokens", func() {
			expired := auth.NewJWTTokenGenerator(accessSecret, refreshSecret, -time.Minute, time.Hour)
			token, err := expired.GenerateAccessToken(auth.Principal{ID: admin.ID, Email: admin.Email, Role: admin.Role})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(errors.Is(err, internal.ErrTokenExpired)).To(gomega.BeTrue())
		})

		ginkgo.It("rejects tokens signed with another secret", func() {
			other := auth.NewJWTTokenGenerator("another-access-secret-0123456789abc", refreshSecret, time.Minute, time.Hour)
			token, err := other.GenerateAccessToken(auth.Principal{ID: admin.ID})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(errors.Is(err, internal.ErrInvalidToken)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var (
			handler *auth.Handler
			seen    *internal.CurrentUser
			next    http.Handler
		)

		ginkgo.BeforeEach(func() {
			handler = auth.NewHandler(transport.NewBaseHandler(testLogger), service)
			seen = nil
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = internal.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
		})

		serve := func(header string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me/access", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(rec, req)
			return rec
		}

		ginkgo.It("loads the user into the request context", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{Email: "admin@warehouse.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rec := serve("Bearer " + tokens.AccessToken)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen).To(gomega.Equal(&internal.CurrentUser{ID: admin.ID, Email: admin.Email, Name: admin.Name, Role: "Admin"}))
		})

		ginkgo.It("rejects missing and malformed tokens with 401", func() {
			gomega.Expect(serve("").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(serve("Bearer not-a-token").Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(seen).To(gomega.BeNil())
		})

		ginkgo.It("rejects a deactivated user holding a valid token", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{Email: "admin@warehouse.test", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(db.Model(admin).Update("is_active", false).Error).To(gomega.Succeed())

			rec := serve("Bearer " + tokens.AccessToken)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("Login handler", func() {
		ginkgo.It("returns 401 with a structured error for bad credentials", func() {
			handler := auth.NewHandler(transport.NewBaseHandler(testLogger), service)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"admin@warehouse.test","password":"nope"}`))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("INVALID_CREDENTIALS"))
		})
	})
})
