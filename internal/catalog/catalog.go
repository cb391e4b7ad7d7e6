package catalog

import (
	"time"

	stockDatamodel "github.com/AtirathTechnologies/warehouse-hub/internal/core/datamodel/stock"
)

type Product struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}

type Warehouse struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func ProductFromDataModel(p *stockDatamodel.Product) *Product {
	return &Product{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		CreatedAt: p.CreatedAt,
	}
}

func WarehouseFromDataModel(w *stockDatamodel.Warehouse) *Warehouse {
	return &Warehouse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Location:  w.Location,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
	}
}
