package flows

import "github.com/MrEthical07/goSession/identity"

// Routes names every post-authentication landing page.
type Routes struct {
	Login                   string
	RoleSelection           string
	ProfileSetup            string
	Dashboard               string
	AgentDashboard          string
	OwnerDashboard          string
	ManagerDashboard        string
	TenantDashboard         string
	ExternalTenantDashboard string
}

// DefaultRoutes returns the platform's route layout.
func DefaultRoutes() Routes {
	return Routes{
		Login:                   "/login",
		RoleSelection:           "/select-role",
		ProfileSetup:            "/profile-setup",
		Dashboard:               "/dashboard",
		AgentDashboard:          "/agent/dashboard",
		OwnerDashboard:          "/owner/dashboard",
		ManagerDashboard:        "/manager/dashboard",
		TenantDashboard:         "/tenant/dashboard",
		ExternalTenantDashboard: "/external-tenant/dashboard",
	}
}

// RouteFor is the static redirect table for roles that skip the
// verification cascade. Tenants land on the tenant dashboard here; the
// cascade refines that.
func RouteFor(id identity.Identity, routes Routes) string {
	complete := identity.BoolValue(id.ProfileComplete)
	switch id.Role {
	case "":
		return routes.RoleSelection
	case identity.RoleAgent:
		return profileGate(complete, routes.AgentDashboard, routes)
	case identity.RoleOwner:
		return profileGate(complete, routes.OwnerDashboard, routes)
	case identity.RoleManager:
		return profileGate(complete, routes.ManagerDashboard, routes)
	case identity.RoleTenant:
		return routes.TenantDashboard
	default:
		return routes.Dashboard
	}
}

func profileGate(complete bool, dashboard string, routes Routes) string {
	if complete {
		return dashboard
	}
	return routes.ProfileSetup
}
