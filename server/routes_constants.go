package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteLogin              = "/login"
	RouteAuthLogin          = "/auth/login"
	RouteAuthRegister       = "/auth/register"
	RouteAuthForgotPassword = "/auth/forgot-password"
	RouteAuthLogout         = "/auth/logout"

	// Session API Routes
	RouteAPISession              = "/api/session"
	RouteAPISessionTenantRefresh = "/api/session/tenant/refresh"
	RouteAPISessionIdle          = "/api/session/idle"
	RouteAPISessionActivity      = "/api/session/activity"
	RouteAPISessionStay          = "/api/session/stay"
	RouteAPISessionLogoutNow     = "/api/session/logout-now"

	// Permission API Routes
	RouteAPIPermissionsEvaluate = "/api/permissions/evaluate"
	RouteAPIPermissionsCatalog  = "/api/permissions/catalog"

	// Console pages
	RouteDashboard      = "/dashboard"
	RoutePOS            = "/pos"
	RouteInventory      = "/inventory"
	RouteCustomers      = "/customers"
	RouteStaff          = "/staff"
	RoutePermissions    = "/permissions"
	RouteBilling        = "/billing"
	RouteReturns        = "/returns"
	RouteReturnsProcess = "/returns/process"
	RouteReports        = "/reports"
	RouteSettings       = "/settings"

	RouteMetrics = "/metrics"
)
