package report

import (
	"strings"

	"github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/core/common/validation"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
)

type GenerateReportDTO struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params"`
}

func (dto GenerateReportDTO) Validate() error {
	types := make([]string, 0, len(permission.ReportTypes))
	for _, t := range permission.ReportTypes {
		types = append(types, string(t))
	}

	v := validation.NewValidator()
	v.Field("type", dto.Type).Required().OneOf(types...)
	for key, value := range dto.Params {
		v.Field("params."+key, value).MaxLength(256)
		if strings.TrimSpace(key) == "" {
			return internal.NewValidationFieldError("params", "parameter names must not be empty", internal.ErrCodeValidationFailed)
		}
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
