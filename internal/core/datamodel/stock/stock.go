package stock

import "time"

type Product struct {
	ID        int64     `gorm:"primaryKey"`
	SKU       string    `gorm:"column:sku;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	Category  string    `gorm:"column:category"`
	Unit      string    `gorm:"column:unit"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Product) TableName() string {
	return "products"
}

// Inventory is keyed by "{sku}_{warehouse}".
type Inventory struct {
	ID        string    `gorm:"column:id;primaryKey"`
	SKU       string    `gorm:"column:sku;index;not null"`
	Warehouse string    `gorm:"column:warehouse;index;not null"`
	Quantity  int64     `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Inventory) TableName() string {
	return "inventory"
}

type StockMovement struct {
	ID          int64     `gorm:"primaryKey"`
	Direction   string    `gorm:"column:direction;index;not null"`
	SKU         string    `gorm:"column:sku;index;not null"`
	ProductName string    `gorm:"column:product_name"`
	Category    string    `gorm:"column:category"`
	Warehouse   string    `gorm:"column:warehouse;not null"`
	Quantity    int64     `gorm:"column:quantity;not null"`
	Unit        string    `gorm:"column:unit"`
	Reason      string    `gorm:"column:reason"`
	Reference   string    `gorm:"column:reference"`
	Remarks     string    `gorm:"column:remarks"`
	CreatedBy   string    `gorm:"column:created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;index;autoCreateTime"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

type Warehouse struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	Location  string    `gorm:"column:location"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}
