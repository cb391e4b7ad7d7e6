package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
	"github.com/AtirathTechnologies/warehouse-hub/internal/stock"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) stock.RepositoryAPI {
	return &StockRepository{db: db}
}

func (r *StockRepository) GetProductBySKU(ctx context.Context, sku string) (*stockDatamodel.Product, error) {
	var product stockDatamodel.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *StockRepository) ApplyMovement(ctx context.Context, m *stockDatamodel.StockMovement) (*stockDatamodel.Inventory, error) {
	id := stock.InventoryID(m.SKU, m.Warehouse)
	var inv stockDatamodel.Inventory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&inv).Error
		missing := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !missing {
			return err
		}

		now := time.Now().UTC()
		switch stock.Direction(m.Direction) {
		case stock.DirectionIn:
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			if missing {
				inv = stockDatamodel.Inventory{
					ID:        id,
					SKU:       m.SKU,
					Warehouse: m.Warehouse,
					Quantity:  m.Quantity,
					UpdatedAt: now,
				}
				return tx.Create(&inv).Error
			}
			if err := tx.Model(&stockDatamodel.Inventory{}).Where("id = ?", id).Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", m.Quantity),
				"updated_at": now,
			}).Error; err != nil {
				return err
			}

		case stock.DirectionOut:
			if missing {
				return internal.ErrProductNotFound.WithDetails(map[string]string{"sku": m.SKU, "warehouse": m.Warehouse})
			}
			if inv.Quantity < m.Quantity {
				return internal.ErrInsufficientStock.WithDetails(map[string]int64{"available": inv.Quantity})
			}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
			res := tx.Model(&stockDatamodel.Inventory{}).
				Where("id = ? AND quantity >= ?", id, m.Quantity).
				Updates(map[string]interface{}{
					"quantity":   gorm.Expr("quantity - ?", m.Quantity),
					"updated_at": now,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return internal.ErrInsufficientStock
			}

		default:
			return internal.NewValidationError("unknown stock direction", internal.ErrCodeValidationFailed)
		}

		return tx.Where("id = ?", id).First(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *StockRepository) ListMovements(ctx context.Context, direction string, limit int) ([]*stockDatamodel.StockMovement, error) {
	query := r.db.WithContext(ctx).Model(&stockDatamodel.StockMovement{})
	if direction != "" {
		query = query.Where("direction = ?", direction)
	}

	var movements []*stockDatamodel.StockMovement
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&movements).Error
	return movements, err
}

func (r *StockRepository) ListLevels(ctx context.Context, warehouse string) ([]*stockDatamodel.Inventory, error) {
	query := r.db.WithContext(ctx).Model(&stockDatamodel.Inventory{})
	if warehouse != "" {
		query = query.Where("warehouse = ?", warehouse)
	}

	var levels []*stockDatamodel.Inventory
	err := query.Order("warehouse ASC").Order("sku ASC").Find(&levels).Error
	return levels, err
}
