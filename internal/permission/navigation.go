package permission

type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

var (
	generalNav = []NavItem{
		{Label: "Products", Path: "/products"},
		{Label: "Warehouses", Path: "/warehouses"},
		{Label: "Stock In", Path: "/stock-in"},
		{Label: "Stock Out", Path: "/stock-out"},
		{Label: "Low Stock", Path: "/low-stock"},
		{Label: "Expiry Alerts", Path: "/expiry-alerts"},
	}
	reportsNav = NavItem{Label: "Reports", Path: "/reports"}
	ordersNav  = NavItem{Label: "Order Management", Path: "/orders"}

	adminSectionNav = []NavItem{
		{Label: "Audit Logs", Path: "/audit-logs"},
		{Label: "Users", Path: "/users"},
		{Label: "Settings", Path: "/settings"},
	}
)

// Navigation returns the sidebar entries visible to role, in display order.
func Navigation(role Role, m Matrix) []NavItem {
	items := make([]NavItem, 0, len(generalNav)+2+len(adminSectionNav))
	items = append(items, generalNav...)
	if CanSeeReportsNavItem(role, m) {
		items = append(items, reportsNav)
	}
	items = append(items, ordersNav)
	if CanAccessAdminSection(role) {
		items = append(items, adminSectionNav...)
	}
	return items
}
