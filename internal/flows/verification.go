package flows

import (
	"context"

	"github.com/MrEthical07/goSession/gateway"
	"github.com/MrEthical07/goSession/identity"
)

// Outcome is the classification produced by the tenant verification cascade.
type Outcome uint8

const (
	// OutcomeNone means the cascade did not run (non-tenant role).
	OutcomeNone Outcome = iota
	OutcomeExternalVerified
	OutcomeExternalIncomplete
	OutcomePlatformVerified
	OutcomePlatformUnverified
	// OutcomeCheckFailed is a platform check that failed for a reason other
	// than an auth rejection. It grants the same access as
	// OutcomePlatformUnverified.
	OutcomeCheckFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExternalVerified:
		return "external_verified"
	case OutcomeExternalIncomplete:
		return "external_incomplete"
	case OutcomePlatformVerified:
		return "platform_verified"
	case OutcomePlatformUnverified:
		return "platform_unverified"
	case OutcomeCheckFailed:
		return "check_failed"
	default:
		return "none"
	}
}

// Resolution is the deterministic mapping of an Outcome to identity fields
// and a landing route. Nil flags and an empty status are left untouched by
// Apply unless ClearVerification is set.
type Resolution struct {
	Outcome                  Outcome
	TenantVerified           *bool
	IsPlatformTenant         *bool
	ManualVerificationStatus identity.ManualVerificationStatus
	// ClearVerification drops any tenantVerified flag and manual status
	// carried over from the cache or the server payload.
	ClearVerification bool
	Redirect          string
}

// Apply writes the resolved flags onto id. Resolved values replace cached
// ones, including false.
func (r Resolution) Apply(id identity.Identity) identity.Identity {
	out := id.Clone()
	if r.ClearVerification {
		out.TenantVerified = nil
		out.ManualVerificationStatus = ""
	}
	if r.TenantVerified != nil {
		out.TenantVerified = identity.Bool(*r.TenantVerified)
	}
	if r.IsPlatformTenant != nil {
		out.IsPlatformTenant = identity.Bool(*r.IsPlatformTenant)
	}
	if r.ManualVerificationStatus != "" {
		out.ManualVerificationStatus = r.ManualVerificationStatus
	}
	return out
}

// ResolutionFor maps outcome to its fields and route.
func ResolutionFor(outcome Outcome, routes Routes) Resolution {
	switch outcome {
	case OutcomeExternalVerified:
		return Resolution{
			Outcome:                  outcome,
			TenantVerified:           identity.Bool(true),
			IsPlatformTenant:         identity.Bool(false),
			ManualVerificationStatus: identity.ManualVerified,
			Redirect:                 routes.ExternalTenantDashboard,
		}
	case OutcomeExternalIncomplete:
		// The user must finish external setup first; only the tenant kind
		// is known and no earlier verification survives.
		return Resolution{
			Outcome:           outcome,
			IsPlatformTenant:  identity.Bool(false),
			ClearVerification: true,
			Redirect:          routes.RoleSelection,
		}
	case OutcomePlatformVerified:
		return Resolution{
			Outcome:                  outcome,
			TenantVerified:           identity.Bool(true),
			IsPlatformTenant:         identity.Bool(true),
			ManualVerificationStatus: identity.ManualVerified,
			Redirect:                 routes.TenantDashboard,
		}
	case OutcomePlatformUnverified, OutcomeCheckFailed:
		return Resolution{
			Outcome:                  outcome,
			TenantVerified:           identity.Bool(false),
			IsPlatformTenant:         identity.Bool(true),
			ManualVerificationStatus: identity.ManualNotStarted,
			Redirect:                 routes.TenantDashboard,
		}
	default:
		return Resolution{Outcome: OutcomeNone}
	}
}

// ExternalCheck is the result of the external tenant profile call. Err is
// set when the call failed.
type ExternalCheck struct {
	Profile gateway.ExternalProfile
	Err     error
}

// PlatformCheck is the result of the platform tenant dashboard call.
type PlatformCheck struct {
	Dashboard gateway.PlatformDashboard
	Err       error
}

// DecideExternal classifies the external check. It reports false when the
// cascade must fall through to the platform check: no external profile, or
// the check itself failed.
func DecideExternal(c ExternalCheck) (Outcome, bool) {
	if c.Err != nil || !c.Profile.HasExternalProfile {
		return OutcomeNone, false
	}
	if c.Profile.ProfileComplete {
		return OutcomeExternalVerified, true
	}
	return OutcomeExternalIncomplete, true
}

// DecidePlatform classifies the platform check. Every branch yields a
// usable outcome.
func DecidePlatform(c PlatformCheck) Outcome {
	switch {
	case c.Err == nil && c.Dashboard.Active():
		return OutcomePlatformVerified
	case c.Err == nil:
		return OutcomePlatformUnverified
	case gateway.IsUnauthorized(c.Err):
		return OutcomePlatformUnverified
	default:
		return OutcomeCheckFailed
	}
}

// Checks holds both cascade inputs for Resolve. Platform is consulted only
// when the external check does not decide.
type Checks struct {
	External ExternalCheck
	Platform PlatformCheck
}

// Resolve is the cascade over precomputed check results. Non-tenant roles
// bypass the cascade and take the static redirect table.
func Resolve(id identity.Identity, checks Checks, routes Routes) Resolution {
	if !id.IsTenant() {
		return Resolution{Outcome: OutcomeNone, Redirect: RouteFor(id, routes)}
	}
	if outcome, ok := DecideExternal(checks.External); ok {
		return ResolutionFor(outcome, routes)
	}
	return ResolutionFor(DecidePlatform(checks.Platform), routes)
}

// VerificationDeps captures the two network checks of the cascade.
type VerificationDeps struct {
	CheckExternal func(ctx context.Context, accessToken string) (*gateway.ExternalProfile, error)
	FetchPlatform func(ctx context.Context, accessToken string) (*gateway.PlatformDashboard, error)
	Routes        Routes
	Warn          func(string, ...any)
}

// RunVerification walks the cascade against the network, short-circuiting
// after a deciding external check. Failures are absorbed into the fail-open
// outcomes and only logged.
func RunVerification(ctx context.Context, id identity.Identity, accessToken string, deps VerificationDeps) Resolution {
	if !id.IsTenant() {
		return Resolution{Outcome: OutcomeNone, Redirect: RouteFor(id, deps.Routes)}
	}

	var ext ExternalCheck
	if deps.CheckExternal != nil {
		profile, err := deps.CheckExternal(ctx, accessToken)
		ext.Err = err
		if profile != nil {
			ext.Profile = *profile
		}
		if err != nil && deps.Warn != nil {
			deps.Warn("goSession: external tenant check failed", "error", err)
		}
	}
	if outcome, ok := DecideExternal(ext); ok {
		return ResolutionFor(outcome, deps.Routes)
	}

	var plat PlatformCheck
	if deps.FetchPlatform == nil {
		plat.Err = &gateway.Error{Op: "tenant_dashboard", Kind: gateway.KindServer, Message: "platform check unavailable"}
	} else {
		dash, err := deps.FetchPlatform(ctx, accessToken)
		plat.Err = err
		if dash != nil {
			plat.Dashboard = *dash
		}
		if err != nil && !gateway.IsUnauthorized(err) && deps.Warn != nil {
			deps.Warn("goSession: platform tenant check failed", "error", err)
		}
	}
	return ResolutionFor(DecidePlatform(plat), deps.Routes)
}
