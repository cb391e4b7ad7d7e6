package catalog_test

import (
	"context"
	"encoding/json"
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
	"github.com/AtirathTechnologies/warehouse-hub/internal/catalog"
	catalogPostgres "github.com/AtirathTechnologies/warehouse-hub/internal/catalog/postgres"
	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
	"github.com/AtirathTechnologies/warehouse-hub/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func openDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	Expect(db.AutoMigrate(&stockDatamodel.Product{}, &stockDatamodel.Warehouse{})).To(Succeed())

	products := []stockDatamodel.Product{
		{SKU: "RICE-25", Name: "Basmati Rice 25kg", Category: "Grains", Unit: "bags"},
		{SKU: "DAL-10", Name: "Toor Dal 10kg", Category: "Pulses", Unit: "bags"},
		{SKU: "WHEAT-50", Name: "Wheat 50kg", Category: "Grains", Unit: "bags"},
	}
	Expect(db.Create(&products).Error).To(Succeed())
	Expect(db.Create(&stockDatamodel.Warehouse{Code: "Main", Name: "Main Warehouse", IsActive: true}).Error).To(Succeed())
	return db
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		ctrl    *gomock.Controller
		db      *gorm.DB
		service *catalog.Service
		actor   *internal.CurrentUser
		entries []auditlog.Entry
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		db = openDB()
		entries = nil
		sink := auditMocks.NewMockSink(ctrl)
		sink.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e auditlog.Entry) error {
			entries = append(entries, e)
			return nil
		}).AnyTimes()
		service = catalog.NewService(catalogPostgres.NewCatalogRepository(db), sink, testLogger)
		actor = &internal.CurrentUser{ID: 1, Email: "admin@warehouse.test", Role: "Admin"}
	})

	Describe("ListProducts", func() {
		It("orders by name", func() {
			products, err := service.ListProducts(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(3))
			Expect(products[0].Name).To(Equal("Basmati Rice 25kg"))
			Expect(products[2].Name).To(Equal("Wheat 50kg"))
		})

		It("filters by category and treats all as no filter", func() {
			grains, err := service.ListProducts(ctx, "Grains")
			Expect(err).NotTo(HaveOccurred())
			Expect(grains).To(HaveLen(2))

			all, err := service.ListProducts(ctx, "all")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
		})
	})

	It("lists distinct categories", func() {
		categories, err := service.Categories(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(categories).To(Equal([]string{"Grains", "Pulses"}))
	})

	Describe("CreateProduct", func() {
		It("normalizes the sku and audits under CATALOG", func() {
			product, err := service.CreateProduct(ctx, actor, catalog.CreateProductDTO{
				SKU: " oil-15 ", Name: "Sunflower Oil 15L", Category: "Oils", Unit: "tins",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(product.SKU).To(Equal("OIL-15"))
			Expect(product.ID).NotTo(BeZero())

			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Module).To(Equal(auditlog.ModuleCatalog))
			Expect(entries[0].Description).To(Equal("Created product: Sunflower Oil 15L (OIL-15)"))
		})

		It("rejects a duplicate sku", func() {
			_, err := service.CreateProduct(ctx, actor, catalog.CreateProductDTO{
				SKU: "rice-25", Name: "Another Rice", Unit: "bags",
			})
			Expect(errors.Is(err, internal.ErrProductExists)).To(BeTrue())
			Expect(entries).To(BeEmpty())
		})

		It("rejects a sku containing the inventory key separator", func() {
			_, err := service.CreateProduct(ctx, actor, catalog.CreateProductDTO{
				SKU: "RICE_5", Name: "Rice 5kg", Unit: "bags",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("requires name and unit", func() {
			_, err := service.CreateProduct(ctx, actor, catalog.CreateProductDTO{SKU: "SALT-1"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(2))
		})
	})

	Describe("warehouses", func() {
		It("creates and lists active warehouses", func() {
			created, err := service.CreateWarehouse(ctx, actor, catalog.CreateWarehouseDTO{
				Code: "North", Name: "North Depot", Location: "Secunderabad",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.IsActive).To(BeTrue())
			Expect(entries[0].Description).To(Equal("Created warehouse: North Depot (North)"))

			Expect(db.Create(&stockDatamodel.Warehouse{Code: "Old", Name: "Closed Site", IsActive: true}).Error).To(Succeed())
			Expect(db.Model(&stockDatamodel.Warehouse{}).Where("code = ?", "Old").Update("is_active", false).Error).To(Succeed())

			warehouses, err := service.ListWarehouses(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(warehouses).To(HaveLen(2))
			Expect(warehouses[0].Code).To(Equal("Main"))
			Expect(warehouses[1].Code).To(Equal("North"))
		})

		It("rejects a duplicate code", func() {
			_, err := service.CreateWarehouse(ctx, actor, catalog.CreateWarehouseDTO{Code: "Main", Name: "Main Again"})
			Expect(errors.Is(err, internal.ErrWarehouseExists)).To(BeTrue())
		})
	})
})

var _ = Describe("Handler", func() {
	var (
		handler *catalog.Handler
		actor   *internal.CurrentUser
	)

	BeforeEach(func() {
		ctrl := gomock.NewController(GinkgoT())
		sink := auditMocks.NewMockSink(ctrl)
		sink.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
		service := catalog.NewService(catalogPostgres.NewCatalogRepository(openDB()), sink, testLogger)
		handler = catalog.NewHandler(transport.NewBaseHandler(testLogger), service)
		actor = &internal.CurrentUser{ID: 1, Email: "admin@warehouse.test", Role: "Admin"}
	})

	It("lists products for a category", func() {
		req := httptest.NewRequest(http.MethodGet, "/products?category=Pulses", nil)
		w := httptest.NewRecorder()

		handler.ListProducts(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var body struct {
			Products []catalog.Product `json:"products"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Products).To(HaveLen(1))
		Expect(body.Products[0].SKU).To(Equal("DAL-10"))
	})

	It("creates a product for an authenticated user", func() {
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"sku":"SUGAR-50","name":"Sugar 50kg","category":"Grocery","unit":"bags"}`))
		req = req.WithContext(internal.ContextWithUser(req.Context(), actor))
		w := httptest.NewRecorder()

		handler.CreateProduct(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	It("returns 409 for a duplicate warehouse", func() {
		req := httptest.NewRequest(http.MethodPost, "/warehouses", strings.NewReader(`{"code":"Main","name":"Main"}`))
		req = req.WithContext(internal.ContextWithUser(req.Context(), actor))
		w := httptest.NewRecorder()

		handler.CreateWarehouse(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("WAREHOUSE_EXISTS"))
	})

	It("rejects creation without a user", func() {
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.CreateProduct(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
