package validation_test

import (
	"testing"
	"time"

	errors "github.com/AtirathTechnologies/warehouse-hub/internal"
	"github.com/AtirathTechnologies/warehouse-hub/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

var _ = Describe("ValidationBuilder", func() {
	It("collects every failing field", func() {
		v := validation.NewValidator()
		v.Field("sku", "").Required()
		v.Field("email", "not-an-email").Email()
		v.Field("role", "Root").OneOf("Admin", "Manager")

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		details, ok := err.Details.(errors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(3))
		Expect(details.Errors[0].Field).To(Equal("sku"))
	})

	It("passes valid input", func() {
		v := validation.NewValidator()
		v.Field("sku", "SKU-1").Required().MaxLength(64)
		v.Field("email", "ops@example.com").Email()
		Expect(v.Validate()).To(BeNil())
	})

	It("bounds quantities", func() {
		Expect(validation.ValidateQuantity(0)).NotTo(BeNil())
		Expect(validation.ValidateQuantity(5)).To(BeNil())
		Expect(validation.ValidateQuantity(2_000_000)).NotTo(BeNil())
	})

	It("rejects inverted date ranges", func() {
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, -1)
		Expect(validation.ValidateDateRange(&from, &to)).NotTo(BeNil())
		Expect(validation.ValidateDateRange(&from, nil)).To(BeNil())
	})
})
