package stock

import (
	"github.com/AtirathTechnologies/warehouse-hub/internal/core/common/validation"
)

type MovementDTO struct {
	SKU       string `json:"sku"`
	Warehouse string `json:"warehouse"`
	Quantity  int64  `json:"quantity"`
	Unit      string `json:"unit"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
	Remarks   string `json:"remarks"`
}

// Validate checks the fields shared by both directions. Stock out also needs a reason.
func (dto MovementDTO) Validate(direction Direction) error {
	v := validation.NewValidator()
	v.Field("sku", dto.SKU).Required().MaxLength(64)
	v.Field("warehouse", dto.Warehouse).Required().MaxLength(64)
	v.Field("unit", dto.Unit).MaxLength(32)
	v.Field("reference", dto.Reference).MaxLength(128)
	v.Field("remarks", dto.Remarks).MaxLength(500)
	if direction == DirectionOut {
		v.Field("reason", dto.Reason).Required().MaxLength(128)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateQuantity(dto.Quantity); err != nil {
		return err
	}
	return nil
}
