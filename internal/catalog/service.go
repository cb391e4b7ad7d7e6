package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
)

// RepositoryAPI lookups return nil, nil when the row does not exist.
type RepositoryAPI interface {
	ListProducts(ctx context.Context, category string) ([]*stockDatamodel.Product, error)
	Categories(ctx context.Context) ([]string, error)
	GetProductBySKU(ctx context.Context, sku string) (*stockDatamodel.Product, error)
	CreateProduct(ctx context.Context, p *stockDatamodel.Product) error
	ListWarehouses(ctx context.Context) ([]*stockDatamodel.Warehouse, error)
	GetWarehouseByCode(ctx context.Context, code string) (*stockDatamodel.Warehouse, error)
	CreateWarehouse(ctx context.Context, w *stockDatamodel.Warehouse) error
}

type Service struct {
	repo   RepositoryAPI
	sink   auditlog.Sink
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, sink auditlog.Sink, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		sink:   sink,
		logger: logger,
	}
}

// ListProducts returns products ordered by name. An empty or "all" category matches everything.
func (s *Service) ListProducts(ctx context.Context, category string) ([]*Product, error) {
	if category == "all" {
		category = ""
	}
	rows, err := s.repo.ListProducts(ctx, category)
	if err != nil {
		s.logger.Error("failed to list products", "error", err, "category", category)
		return nil, internal.NewInternalError("failed to list products", err)
	}

	products := make([]*Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, ProductFromDataModel(row))
	}
	return products, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		return nil, internal.NewInternalError("failed to list categories", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *Service) CreateProduct(ctx context.Context, actor *internal.CurrentUser, dto CreateProductDTO) (*Product, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetProductBySKU(ctx, dto.SKU)
	if err != nil {
		s.logger.Error("failed to check product", "error", err, "sku", dto.SKU)
		return nil, internal.NewInternalError("failed to create product", err)
	}
	if existing != nil {
		return nil, internal.ErrProductExists
	}

	row := &stockDatamodel.Product{
		SKU:      dto.SKU,
		Name:     dto.Name,
		Category: dto.Category,
		Unit:     dto.Unit,
	}
	if err := s.repo.CreateProduct(ctx, row); err != nil {
		// lost a race with a concurrent create of the same sku
		if again, _ := s.repo.GetProductBySKU(ctx, dto.SKU); again != nil {
			return nil, internal.ErrProductExists
		}
		s.logger.Error("failed to create product", "error", err, "sku", dto.SKU)
		return nil, internal.NewInternalError("failed to create product", err)
	}

	s.audit(ctx, actor, fmt.Sprintf("Created product: %s (%s)", row.Name, row.SKU))
	s.logger.Info("product created", "sku", row.SKU, "product_id", row.ID)
	return ProductFromDataModel(row), nil
}

// ListWarehouses returns active warehouses ordered by name.
func (s *Service) ListWarehouses(ctx context.Context) ([]*Warehouse, error) {
	rows, err := s.repo.ListWarehouses(ctx)
	if err != nil {
		s.logger.Error("failed to list warehouses", "error", err)
		return nil, internal.NewInternalError("failed to list warehouses", err)
	}

	warehouses := make([]*Warehouse, 0, len(rows))
	for _, row := range rows {
		warehouses = append(warehouses, WarehouseFromDataModel(row))
	}
	return warehouses, nil
}

func (s *Service) CreateWarehouse(ctx context.Context, actor *internal.CurrentUser, dto CreateWarehouseDTO) (*Warehouse, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetWarehouseByCode(ctx, dto.Code)
	if err != nil {
		s.logger.Error("failed to check warehouse", "error", err, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create warehouse", err)
	}
	if existing != nil {
		return nil, internal.ErrWarehouseExists
	}

	row := &stockDatamodel.Warehouse{
		Code:     dto.Code,
		Name:     dto.Name,
		Location: dto.Location,
		IsActive: true,
	}
	if err := s.repo.CreateWarehouse(ctx, row); err != nil {
		if again, _ := s.repo.GetWarehouseByCode(ctx, dto.Code); again != nil {
			return nil, internal.ErrWarehouseExists
		}
		s.logger.Error("failed to create warehouse", "error", err, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create warehouse", err)
	}

	s.audit(ctx, actor, fmt.Sprintf("Created warehouse: %s (%s)", row.Name, row.Code))
	s.logger.Info("warehouse created", "code", row.Code, "warehouse_id", row.ID)
	return WarehouseFromDataModel(row), nil
}

func (s *Service) audit(ctx context.Context, actor *internal.CurrentUser, description string) {
	if err := s.sink.Append(ctx, auditlog.Entry{
		User:        actor.AuditName(),
		Action:      auditlog.ActionCreate,
		Module:      auditlog.ModuleCatalog,
		Description: description,
	}); err != nil {
		s.logger.Warn("audit append failed", "error", err, "description", description)
	}
}
