package user

import (
	"strings"

	"github.com/AtirathTechnologies/warehouse-hub/internal/core/common/validation"
	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
)

type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func roleNames() []string {
	names := make([]string, 0, len(permission.Roles))
	for _, r := range permission.Roles {
		names = append(names, string(r))
	}
	return names
}

func (d CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email().MaxLength(255)
	v.Field("name", d.Name).Required().MaxLength(128)
	v.Field("password", d.Password).Required().MinLength(8).MaxLength(72)
	v.Field("role", d.Role).Required().OneOf(roleNames()...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d CreateUserDTO) normalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(d.Email))
}
