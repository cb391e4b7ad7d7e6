package permission_test

import (
	"fmt"

	"github.com/AtirathTechnologies/warehouse-hub/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ReportsAccessMode", func() {
	var entries []TableEntry
	for _, role := range permission.Roles {
		for _, generate := range []bool{false, true} {
			for _, view := range []bool{false, true} {
				want := permission.ReportsDenied
				switch {
				case generate:
					want = permission.ReportsFull
				case view:
					want = permission.ReportsViewOnly
				}
				entries = append(entries, Entry(fmt.Sprintf("%s gen=%v view=%v", role, generate, view), role, generate, view, want))
			}
		}
	}

	DescribeTable("covers every role and flag combination",
		func(role permission.Role, generate, view bool, want permission.ReportsMode) {
			m := permission.Matrix{role: {AllowReportGeneration: generate, AllowReportViewing: view}}
			mode := permission.ReportsAccessMode(role, m)
			Expect(mode).To(Equal(want))

			access := permission.Derive(role, m)
			Expect(access.ReportsMode).To(Equal(mode))
			Expect(access.CanGenerate).To(Equal(mode == permission.ReportsFull))
			Expect(access.CanView).To(Equal(mode != permission.ReportsDenied))
		},
		entries,
	)
})

var _ = DescribeTable("ToggleCapability",
	func(role permission.Role, in permission.RoleCapabilities, key permission.Capability, want permission.RoleCapabilities) {
		got, err := permission.ToggleCapability(role, in, key)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	},
	Entry("staff view lock",
		permission.RoleStaff,
		permission.RoleCapabilities{AllowReportGeneration: true},
		permission.AllowReportViewing,
		permission.RoleCapabilities{AllowReportGeneration: true}),
	Entry("admin generate clears view",
		permission.RoleAdmin,
		permission.RoleCapabilities{AllowReportViewing: true},
		permission.AllowReportGeneration,
		permission.RoleCapabilities{AllowReportGeneration: true}),
	Entry("manager view clears generate",
		permission.RoleManager,
		permission.RoleCapabilities{AllowReportGeneration: true},
		permission.AllowReportViewing,
		permission.RoleCapabilities{AllowReportViewing: true}),
	Entry("manager view off",
		permission.RoleManager,
		permission.RoleCapabilities{AllowReportViewing: true, AllowUserCreation: true},
		permission.AllowReportViewing,
		permission.RoleCapabilities{AllowUserCreation: true}),
	Entry("viewer flips independently",
		permission.RoleViewer,
		permission.RoleCapabilities{AllowReportViewing: true},
		permission.AllowReportGeneration,
		permission.RoleCapabilities{AllowReportViewing: true, AllowReportGeneration: true}),
	Entry("staff deletion flips",
		permission.RoleStaff,
		permission.RoleCapabilities{},
		permission.AllowUserDeletion,
		permission.RoleCapabilities{AllowUserDeletion: true}),
)
