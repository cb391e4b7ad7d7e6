package stock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/auditlog"
	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
)

const defaultListLimit = 100

var errUnknownProduct = internal.NewNotFoundError("product not found", internal.ErrCodeProductNotFound)

type RepositoryAPI interface {
	GetProductBySKU(ctx context.Context, sku string) (*stockDatamodel.Product, error)
	// ApplyMovement records m and adjusts the inventory row in one transaction.
	// Outbound movements fail with ErrProductNotFound or ErrInsufficientStock.
	ApplyMovement(ctx context.Context, m *stockDatamodel.StockMovement) (*stockDatamodel.Inventory, error)
	ListMovements(ctx context.Context, direction string, limit int) ([]*stockDatamodel.StockMovement, error)
	ListLevels(ctx context.Context, warehouse string) ([]*stockDatamodel.Inventory, error)
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

type MovementResult struct {
	Movement *Movement `json:"movement"`
	Level    Level     `json:"level"`
}

func (s *Service) StockIn(ctx context.Context, actor *internal.CurrentUser, dto MovementDTO) (*MovementResult, error) {
	return s.move(ctx, actor, DirectionIn, dto)
}

func (s *Service) StockOut(ctx context.Context, actor *internal.CurrentUser, dto MovementDTO) (*MovementResult, error) {
	return s.move(ctx, actor, DirectionOut, dto)
}

func (s *Service) move(ctx context.Context, actor *internal.CurrentUser, direction Direction, dto MovementDTO) (*MovementResult, error) {
	if err := dto.Validate(direction); err != nil {
		return nil, err
	}

	product, err := s.repo.GetProductBySKU(ctx, dto.SKU)
	if err != nil {
		s.logger.Error("failed to load product", "error", err, "sku", dto.SKU)
		return nil, internal.NewInternalError("failed to load product", err)
	}
	if product == nil {
		return nil, errUnknownProduct.WithDetails(map[string]string{"sku": dto.SKU})
	}

	unit := dto.Unit
	if unit == "" {
		unit = product.Unit
	}
	row := &stockDatamodel.StockMovement{
		Direction:   string(direction),
		SKU:         product.SKU,
		ProductName: product.Name,
		Category:    product.Category,
		Warehouse:   dto.Warehouse,
		Quantity:    dto.Quantity,
		Unit:        unit,
		Reason:      dto.Reason,
		Reference:   dto.Reference,
		Remarks:     dto.Remarks,
		CreatedBy:   actor.AuditName(),
	}

	inv, err := s.repo.ApplyMovement(ctx, row)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			s.logger.Warn("stock movement rejected", "error", err, "sku", dto.SKU, "warehouse", dto.Warehouse, "direction", direction)
			return nil, err
		}
		s.logger.Error("failed to apply stock movement", "error", err, "sku", dto.SKU, "warehouse", dto.Warehouse)
		return nil, internal.NewInternalError("failed to apply stock movement", err)
	}

	verb := "Stock in"
	if direction == DirectionOut {
		verb = "Stock out"
	}
	if err := s.sink.Append(ctx, auditlog.Entry{
		User:        actor.AuditName(),
		Action:      auditlog.ActionCreate,
		Module:      auditlog.ModuleStock,
		Description: fmt.Sprintf("%s: %d %s of %s (%s) at %s", verb, row.Quantity, row.Unit, row.ProductName, row.SKU, row.Warehouse),
	}); err != nil {
		s.logger.Warn("audit append failed", "error", err, "movement_id", row.ID)
	}

	s.logger.Info("stock movement recorded",
		"movement_id", row.ID,
		"direction", direction,
		"sku", row.SKU,
		"warehouse", row.Warehouse,
		"quantity", row.Quantity,
		"on_hand", inv.Quantity,
	)
	return &MovementResult{
		Movement: FromDataModel(row),
		Level:    Level{SKU: inv.SKU, Warehouse: inv.Warehouse, Quantity: inv.Quantity},
	}, nil
}

// ListMovements returns movements newest first. An empty direction lists both.
func (s *Service) ListMovements(ctx context.Context, direction string, limit int) ([]*Movement, error) {
	if direction != "" && direction != string(DirectionIn) && direction != string(DirectionOut) {
		return nil, internal.NewValidationFieldError("direction", "direction must be one of: in, out", internal.ErrCodeValidationFailed)
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	rows, err := s.repo.ListMovements(ctx, direction, limit)
	if err != nil {
		s.logger.Error("failed to list stock movements", "error", err)
		return nil, internal.NewInternalError("failed to list stock movements", err)
	}

	movements := make([]*Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, FromDataModel(row))
	}
	return movements, nil
}

// Levels returns on-hand quantities, optionally for one warehouse.
func (s *Service) Levels(ctx context.Context, warehouse string) ([]Level, error) {
	rows, err := s.repo.ListLevels(ctx, warehouse)
	if err != nil {
		s.logger.Error("failed to list stock levels", "error", err, "warehouse", warehouse)
		return nil, internal.NewInternalError("failed to list stock levels", err)
	}

	levels := make([]Level, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, Level{SKU: row.SKU, Warehouse: row.Warehouse, Quantity: row.Quantity})
	}
	return levels, nil
}
