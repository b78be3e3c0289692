package server

import (
	"net/http"

	"github.com/jrsteele09/go-retail-auth/guard"
	"github.com/jrsteele09/go-retail-auth/permissions"
)

// consolePage is a guarded page of the retail console
type consolePage struct {
	path     string
	title    string
	override permissions.Key
}

var consolePages = []consolePage{
	{path: RouteDashboard, title: "Dashboard"},
	{path: RoutePOS, title: "Point of Sale"},
	{path: RouteInventory, title: "Inventory"},
	{path: RouteCustomers, title: "Customers"},
	{path: RouteStaff, title: "Staff"},
	{path: RoutePermissions, title: "Permissions"},
	{path: RouteBilling, title: "Billing"},
	{path: RouteReturns, title: "Returns"},
	{path: RouteReturnsProcess, title: "Process Return", override: permissions.ReturnsProcess},
	{path: RouteReports, title: "Reports"},
	{path: RouteSettings, title: "Settings"},
}

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// Session API routes
	s.RegisterRouteFunc("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAPISessionTenantRefresh, ChainMiddleware(s.RefreshTenantHandler(), s.APIMiddleware(s.RequireAuthenticated)...))
	s.RegisterRouteFunc("GET "+RouteAPISessionIdle, ChainMiddleware(s.IdleStatusHandler(), s.APIMiddleware(s.RequireAuthenticated)...))
	s.RegisterRouteFunc("POST "+RouteAPISessionActivity, ChainMiddleware(s.ActivityHandler(), s.APIMiddleware(s.RequireAuthenticated)...))
	s.RegisterRouteFunc("POST "+RouteAPISessionStay, ChainMiddleware(s.StayLoggedInHandler(), s.APIMiddleware(s.RequireAuthenticated)...))
	s.RegisterRouteFunc("POST "+RouteAPISessionLogoutNow, ChainMiddleware(s.LogoutNowHandler(), s.APIMiddleware()...))

	// Permission API routes
	s.RegisterRouteFunc("GET "+RouteAPIPermissionsEvaluate, ChainMiddleware(s.EvaluateHandler(), s.APIMiddleware(s.RequireAuthenticated)...))
	s.RegisterRouteFunc("GET "+RouteAPIPermissionsCatalog, ChainMiddleware(s.CatalogHandler(), s.APIMiddleware(
		s.RequireAuthenticated,
		s.RequirePage(guard.Request{Path: RoutePermissions, Required: permissions.StaffManagePermissions}))...))

	// Console pages
	for _, page := range consolePages {
		s.RegisterRouteFunc("GET "+page.path, ChainMiddleware(s.PageHandler(page), s.HTMLMiddleWare(s.RequirePage(guardRequest(page)))...))
	}

	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	s.RegisterRouteFunc("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware))

	s.metrics.trackSessions(s.loginSessions.Len)
}

func guardRequest(page consolePage) guard.Request {
	return guard.Request{Path: page.path, Required: page.override}
}
