package identity

import (
	"strings"
	"time"
)

// Role is the platform role attached to an identity. The zero value means the
// user has not picked a role yet.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleAgent       Role = "agent"
	RoleTenant      Role = "tenant"
	RoleManager     Role = "manager"
	RoleBuyer       Role = "buyer"
	RoleAgencyAdmin Role = "agency_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAgent, RoleTenant, RoleManager, RoleBuyer, RoleAgencyAdmin:
		return true
	}
	return false
}

// ParseRole normalizes s and returns the matching role. Unknown values return
// the zero role and false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// ManualVerificationStatus tracks the manual tenant verification workflow.
type ManualVerificationStatus string

const (
	ManualNotStarted ManualVerificationStatus = "not_started"
	ManualPending    ManualVerificationStatus = "pending"
	ManualVerified   ManualVerificationStatus = "verified"
)

// Valid reports whether s is a known status.
func (s ManualVerificationStatus) Valid() bool {
	switch s {
	case ManualNotStarted, ManualPending, ManualVerified:
		return true
	}
	return false
}

// Identity is the authenticated user as the client knows it. Optional flags are
// pointers so "unknown" stays distinguishable from false.
type Identity struct {
	ID                       string                   `json:"id"`
	Email                    string                   `json:"email"`
	FirstName                string                   `json:"firstName,omitempty"`
	LastName                 string                   `json:"lastName,omitempty"`
	DisplayName              string                   `json:"displayName,omitempty"`
	Role                     Role                     `json:"role,omitempty"`
	Phone                    string                   `json:"phone,omitempty"`
	IsActive                 *bool                    `json:"isActive,omitempty"`
	IsVerified               *bool                    `json:"isVerified,omitempty"`
	ProfileComplete          *bool                    `json:"profileComplete,omitempty"`
	TenantVerified           *bool                    `json:"tenantVerified,omitempty"`
	IsPlatformTenant         *bool                    `json:"isPlatformTenant,omitempty"`
	ManualVerificationStatus ManualVerificationStatus `json:"manualVerificationStatus,omitempty"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// BoolValue dereferences p, treating nil as false.
func BoolValue(p *bool) bool {
	return p != nil && *p
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy of i.
func (i Identity) Clone() Identity {
	out := i
	out.IsActive = cloneBool(i.IsActive)
	out.IsVerified = cloneBool(i.IsVerified)
	out.ProfileComplete = cloneBool(i.ProfileComplete)
	out.TenantVerified = cloneBool(i.TenantVerified)
	out.IsPlatformTenant = cloneBool(i.IsPlatformTenant)
	return out
}

// IsTenant reports whether the identity carries the tenant role.
func (i Identity) IsTenant() bool {
	return i.Role == RoleTenant
}

// Empty reports whether the identity carries no user reference at all.
func (i Identity) Empty() bool {
	return i.ID == "" && i.Email == ""
}

// Name returns DisplayName, falling back to the full name and then the email.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	full := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if full != "" {
		return full
	}
	return i.Email
}

// WithDisplayName fills DisplayName from Name when it is empty.
func (i Identity) WithDisplayName() Identity {
	if i.DisplayName == "" {
		i.DisplayName = i.Name()
	}
	return i
}

// Session is the token set held by the client. It is replaced wholesale on every
// login and refresh. A zero ExpiresAt means the expiry is unknown and nothing
// should be scheduled for it.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// HasExpiry reports whether the access token expiry is known.
func (s Session) HasExpiry() bool {
	return !s.ExpiresAt.IsZero()
}

// HasRefreshToken reports whether a refresh token is held.
func (s Session) HasRefreshToken() bool {
	return s.RefreshToken != ""
}

// Expired reports whether the access token is past its known expiry at now.
// Unknown expiry never counts as expired.
func (s Session) Expired(now time.Time) bool {
	return s.HasExpiry() && !now.Before(s.ExpiresAt)
}

// Remaining returns the validity left at now. The second result is false when
// the expiry is unknown.
func (s Session) Remaining(now time.Time) (time.Duration, bool) {
	if !s.HasExpiry() {
		return 0, false
	}
	return s.ExpiresAt.Sub(now), true
}
