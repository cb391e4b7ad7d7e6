package postgres

import (
	"context"
	"errors"

	"github.com/AtirathTechnologies/warehouse-hub/internal/catalog"
	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListProducts(ctx context.Context, category string) ([]*stockDatamodel.Product, error) {
	var products []*stockDatamodel.Product
	q := r.db.WithContext(ctx).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&stockDatamodel.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *CatalogRepository) GetProductBySKU(ctx context.Context, sku string) (*stockDatamodel.Product, error) {
	var p stockDatamodel.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *stockDatamodel.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *CatalogRepository) ListWarehouses(ctx context.Context) ([]*stockDatamodel.Warehouse, error) {
	var warehouses []*stockDatamodel.Warehouse
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&warehouses).Error
	return warehouses, err
}

func (r *CatalogRepository) GetWarehouseByCode(ctx context.Context, code string) (*stockDatamodel.Warehouse, error) {
	var w stockDatamodel.Warehouse
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *CatalogRepository) CreateWarehouse(ctx context.Context, w *stockDatamodel.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}
