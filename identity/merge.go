package identity

// Strengthen applies patch over base and returns the result. Empty strings, nil
// pointers, false flags, and unknown enum values in patch are ignored, so an
// update can add or change information but never erase it.
func Strengthen(base, patch Identity) Identity {
	out := base.Clone()

	out.ID = pickString(out.ID, patch.ID)
	out.Email = pickString(out.Email, patch.Email)
	out.FirstName = pickString(out.FirstName, patch.FirstName)
	out.LastName = pickString(out.LastName, patch.LastName)
	out.DisplayName = pickString(out.DisplayName, patch.DisplayName)
	out.Phone = pickString(out.Phone, patch.Phone)

	if patch.Role.Valid() {
		out.Role = patch.Role
	}
	if patch.ManualVerificationStatus.Valid() {
		out.ManualVerificationStatus = patch.ManualVerificationStatus
	}

	out.IsActive = pickTrue(out.IsActive, patch.IsActive)
	out.IsVerified = pickTrue(out.IsVerified, patch.IsVerified)
	out.ProfileComplete = pickTrue(out.ProfileComplete, patch.ProfileComplete)
	out.TenantVerified = pickTrue(out.TenantVerified, patch.TenantVerified)
	out.IsPlatformTenant = pickTrue(out.IsPlatformTenant, patch.IsPlatformTenant)

	return out
}

// Overlay applies server fields over a cached snapshot. Unlike [Strengthen],
// explicit false values from the server replace cached ones; only absent fields
// keep the cached value.
func Overlay(cached, server Identity) Identity {
	out := cached.Clone()

	out.ID = pickString(out.ID, server.ID)
	out.Email = pickString(out.Email, server.Email)
	out.FirstName = pickString(out.FirstName, server.FirstName)
	out.LastName = pickString(out.LastName, server.LastName)
	out.DisplayName = pickString(out.DisplayName, server.DisplayName)
	out.Phone = pickString(out.Phone, server.Phone)

	if server.Role.Valid() {
		out.Role = server.Role
	}
	if server.ManualVerificationStatus.Valid() {
		out.ManualVerificationStatus = server.ManualVerificationStatus
	}

	out.IsActive = pickSet(out.IsActive, server.IsActive)
	out.IsVerified = pickSet(out.IsVerified, server.IsVerified)
	out.ProfileComplete = pickSet(out.ProfileComplete, server.ProfileComplete)
	out.TenantVerified = pickSet(out.TenantVerified, server.TenantVerified)
	out.IsPlatformTenant = pickSet(out.IsPlatformTenant, server.IsPlatformTenant)

	return out
}

func pickString(current, next string) string {
	if next == "" {
		return current
	}
	return next
}

func pickTrue(current, next *bool) *bool {
	if next == nil || !*next {
		return current
	}
	return Bool(true)
}

func pickSet(current, next *bool) *bool {
	if next == nil {
		return current
	}
	return Bool(*next)
}
