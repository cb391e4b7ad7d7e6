package catalog

import (
	"strings"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/core/common/validation"
)

type CreateProductDTO struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

// Normalize trims input and upper-cases the SKU, which is also the inventory key prefix.
func (dto *CreateProductDTO) Normalize() {
	dto.SKU = strings.ToUpper(strings.TrimSpace(dto.SKU))
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Category = strings.TrimSpace(dto.Category)
	dto.Unit = strings.TrimSpace(dto.Unit)
}

func (dto CreateProductDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("sku", dto.SKU).Required().MaxLength(64).Custom(noUnderscore("sku"))
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("category", dto.Category).MaxLength(64)
	v.Field("unit", dto.Unit).Required().MaxLength(32)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// inventory rows are keyed "{sku}_{warehouse}", so neither part may hold the separator.
func noUnderscore(field string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		if s, ok := value.(string); ok && strings.Contains(s, "_") {
			return internal.NewValidationFieldError(field, field+" must not contain an underscore", internal.ErrCodeValidationFailed)
		}
		return nil
	}
}

type CreateWarehouseDTO struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (dto *CreateWarehouseDTO) Normalize() {
	dto.Code = strings.TrimSpace(dto.Code)
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Location = strings.TrimSpace(dto.Location)
}

func (dto CreateWarehouseDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("code", dto.Code).Required().MaxLength(64).Custom(noUnderscore("code"))
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("location", dto.Location).MaxLength(255)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
