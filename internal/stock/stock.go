package stock

import (
	"fmt"
	"time"

	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// InventoryID is the key of the inventory row for sku in warehouse.
func InventoryID(sku, warehouse string) string {
	return fmt.Sprintf("%s_%s", sku, warehouse)
}

type Movement struct {
	ID          int64     `json:"id"`
	Direction   Direction `json:"direction"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"productName"`
	Category    string    `json:"category,omitempty"`
	Warehouse   string    `json:"warehouse"`
	Quantity    int64     `json:"quantity"`
	Unit        string    `json:"unit,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	Remarks     string    `json:"remarks,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Level struct {
	SKU       string `json:"sku"`
	Warehouse string `json:"warehouse"`
	Quantity  int64  `json:"quantity"`
}

func FromDataModel(m *stockDatamodel.StockMovement) *Movement {
	return &Movement{
		ID:          m.ID,
		Direction:   Direction(m.Direction),
		SKU:         m.SKU,
		ProductName: m.ProductName,
		Category:    m.Category,
		Warehouse:   m.Warehouse,
		Quantity:    m.Quantity,
		Unit:        m.Unit,
		Reason:      m.Reason,
		Reference:   m.Reference,
		Remarks:     m.Remarks,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}
