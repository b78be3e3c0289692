package permissions

// Key names a single grantable capability in the form module:action.
type Key string

const (
	DashboardView Key = "dashboard:view"

	POSView   Key = "pos:view"
	POSRefund Key = "pos:refund"

	InventoryView   Key = "inventory:view"
	InventoryManage Key = "inventory:manage"

	CustomersView   Key = "customers:view"
	CustomersManage Key = "customers:manage"

	StaffView              Key = "staff:view"
	StaffManage            Key = "staff:manage"
	StaffManagePermissions Key = "staff:manage_permissions"

	BillingView   Key = "billing:view"
	BillingManage Key = "billing:manage"

	ReturnsView    Key = "returns:view"
	ReturnsProcess Key = "returns:process"

	ReportsView   Key = "reports:view"
	ReportsExport Key = "reports:export"

	SettingsManage Key = "settings:manage"
)

// Definition describes a key for the permission management page.
type Definition struct {
	Key         Key    `json:"key"`
	Description string `json:"description"`
}

type Group struct {
	Name        string       `json:"name"`
	Permissions []Definition `json:"permissions"`
}

// Groups is the static permission catalog, grouped by console module.
var Groups = []Group{
	{Name: "Dashboard", Permissions: []Definition{
		{DashboardView, "View the dashboard summary"},
	}},
	{Name: "Point of Sale", Permissions: []Definition{
		{POSView, "Open the point of sale"},
		{POSRefund, "Refund sales at the register"},
	}},
	{Name: "Inventory", Permissions: []Definition{
		{InventoryView, "View products and stock levels"},
		{InventoryManage, "Create, edit and adjust products"},
	}},
	{Name: "Customers", Permissions: []Definition{
		{CustomersView, "View customer records"},
		{CustomersManage, "Create and edit customers"},
	}},
	{Name: "Staff", Permissions: []Definition{
		{StaffView, "View staff members"},
		{StaffManage, "Invite, edit and remove staff"},
		{StaffManagePermissions, "Grant and revoke staff permissions"},
	}},
	{Name: "Billing", Permissions: []Definition{
		{BillingView, "View invoices and the subscription"},
		{BillingManage, "Change the plan and payment details"},
	}},
	{Name: "Returns", Permissions: []Definition{
		{ReturnsView, "View returns"},
		{ReturnsProcess, "Process returns and restock items"},
	}},
	{Name: "Reports", Permissions: []Definition{
		{ReportsView, "View sales and inventory reports"},
		{ReportsExport, "Export reports"},
	}},
	{Name: "Settings", Permissions: []Definition{
		{SettingsManage, "Change tenant settings"},
	}},
}

// Bindings maps a route path to the permission it requires by default.
type Bindings map[string]Key

// PageBindings is the default page table. Paths without an entry only
// require an authenticated user.
var PageBindings = Bindings{
	"/pos":             POSView,
	"/inventory":       InventoryView,
	"/customers":       CustomersView,
	"/staff":           StaffView,
	"/permissions":     StaffManagePermissions,
	"/billing":         BillingView,
	"/returns":         ReturnsView,
	"/returns/process": ReturnsView,
	"/reports":         ReportsView,
	"/settings":        SettingsManage,
}

var catalog = func() map[Key]Definition {
	m := make(map[Key]Definition)
	for _, g := range Groups {
		for _, d := range g.Permissions {
			m[d.Key] = d
		}
	}
	return m
}()

// Lookup returns the catalog definition for key.
func Lookup(key Key) (Definition, bool) {
	d, ok := catalog[key]
	return d, ok
}

// All lists every catalog key in group order.
func All() []Key {
	keys := make([]Key, 0, len(catalog))
	for _, g := range Groups {
		for _, d := range g.Permissions {
			keys = append(keys, d.Key)
		}
	}
	return keys
}
