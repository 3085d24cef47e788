package gateway

import (
	"encoding/json"

	"github.com/MrEthical07/goSession/identity"
)

// envelope is the response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// UserPayload is the backend representation of a user.
type UserPayload struct {
	ID                       string `json:"id"`
	Email                    string `json:"email"`
	FirstName                string `json:"first_name,omitempty"`
	LastName                 string `json:"last_name,omitempty"`
	Name                     string `json:"name,omitempty"`
	Role                     string `json:"role,omitempty"`
	Phone                    string `json:"phone,omitempty"`
	IsActive                 *bool  `json:"is_active,omitempty"`
	IsVerified               *bool  `json:"is_verified,omitempty"`
	ProfileComplete          *bool  `json:"profile_complete,omitempty"`
	TenantVerified           *bool  `json:"tenant_verified,omitempty"`
	IsPlatformTenant         *bool  `json:"is_platform_tenant,omitempty"`
	ManualVerificationStatus string `json:"manual_verification_status,omitempty"`
}

// ToIdentity converts the payload to the client model. Unknown roles and
// statuses are dropped rather than carried as free text.
func (u UserPayload) ToIdentity() identity.Identity {
	out := identity.Identity{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		DisplayName:      u.Name,
		Phone:            u.Phone,
		IsActive:         u.IsActive,
		IsVerified:       u.IsVerified,
		ProfileComplete:  u.ProfileComplete,
		TenantVerified:   u.TenantVerified,
		IsPlatformTenant: u.IsPlatformTenant,
	}
	if role, ok := identity.ParseRole(u.Role); ok {
		out.Role = role
	}
	if s := identity.ManualVerificationStatus(u.ManualVerificationStatus); s.Valid() {
		out.ManualVerificationStatus = s
	}
	return out.WithDisplayName().Clone()
}

// FromIdentity converts a client identity to the backend payload.
func FromIdentity(i identity.Identity) UserPayload {
	return UserPayload{
		ID:                       i.ID,
		Email:                    i.Email,
		FirstName:                i.FirstName,
		LastName:                 i.LastName,
		Name:                     i.DisplayName,
		Role:                     string(i.Role),
		Phone:                    i.Phone,
		IsActive:                 i.IsActive,
		IsVerified:               i.IsVerified,
		ProfileComplete:          i.ProfileComplete,
		TenantVerified:           i.TenantVerified,
		IsPlatformTenant:         i.IsPlatformTenant,
		ManualVerificationStatus: string(i.ManualVerificationStatus),
	}
}

// AuthResponse is the normalized result of login, register, and SSO.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         UserPayload `json:"user"`
	// Token is the legacy name of AccessToken still sent by some endpoints.
	Token string `json:"token,omitempty"`
}

func (a *AuthResponse) normalize() {
	if a.AccessToken == "" {
		a.AccessToken = a.Token
	}
	a.Token = ""
}

// TokenPair is the result of a refresh. RefreshToken is empty when the backend
// does not rotate refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ExternalProfile is the result of the external tenant profile check.
type ExternalProfile struct {
	HasExternalProfile bool `json:"has_external_profile"`
	ProfileComplete    bool `json:"profile_complete"`
}

// PlatformDashboard is the subset of the platform tenant dashboard the client
// needs to classify verification.
type PlatformDashboard struct {
	Status     string `json:"status"`
	TenancyID  string `json:"tenancy_id,omitempty"`
	PropertyID string `json:"property_id,omitempty"`
}

// PlatformStatusActive is the dashboard status of a verified platform tenant.
const PlatformStatusActive = "active"

// Active reports whether the tenancy is verified.
func (p PlatformDashboard) Active() bool {
	return p.Status == PlatformStatusActive
}

// RegisterRequest is the input of Register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
