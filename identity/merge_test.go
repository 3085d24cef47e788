package identity

import "testing"

func baseIdentity() Identity {
	return Identity{
		ID:              "u-1",
		Email:           "tina@example.com",
		FirstName:       "Tina",
		LastName:        "Tenant",
		Role:            RoleTenant,
		IsActive:        Bool(true),
		ProfileComplete: Bool(true),
	}
}

func TestStrengthenIgnoresEmptyAndUndefined(t *testing.T) {
	base := baseIdentity()

	got := Strengthen(base, Identity{Role: "", Email: ""})

	if got.Role != RoleTenant {
		t.Fatalf("expected role to stay tenant, got %q", got.Role)
	}
	if got.Email != "tina@example.com" {
		t.Fatalf("expected email unchanged, got %q", got.Email)
	}
}

func TestStrengthenIgnoresFalseFlags(t *testing.T) {
	base := baseIdentity()

	got := Strengthen(base, Identity{IsActive: Bool(false), ProfileComplete: Bool(false)})

	if !BoolValue(got.IsActive) {
		t.Fatal("expected isActive to remain true")
	}
	if !BoolValue(got.ProfileComplete) {
		t.Fatal("expected profileComplete to remain true")
	}
}

func TestStrengthenAppliesNonEmptyFields(t *testing.T) {
	base := baseIdentity()

	got := Strengthen(base, Identity{
		Phone:                    "+15550100",
		Role:                     RoleAgent,
		IsVerified:               Bool(true),
		ManualVerificationStatus: ManualPending,
	})

	if got.Phone != "+15550100" {
		t.Fatalf("expected phone applied, got %q", got.Phone)
	}
	if got.Role != RoleAgent {
		t.Fatalf("expected role agent, got %q", got.Role)
	}
	if !BoolValue(got.IsVerified) {
		t.Fatal("expected isVerified true")
	}
	if got.ManualVerificationStatus != ManualPending {
		t.Fatalf("expected pending status, got %q", got.ManualVerificationStatus)
	}
}

func TestStrengthenRejectsUnknownRole(t *testing.T) {
	got := Strengthen(baseIdentity(), Identity{Role: "landlord"})
	if got.Role != RoleTenant {
		t.Fatalf("expected unknown role ignored, got %q", got.Role)
	}
}

func TestStrengthenDoesNotAliasBase(t *testing.T) {
	base := baseIdentity()
	got := Strengthen(base, Identity{})
	*got.IsActive = false
	if !BoolValue(base.IsActive) {
		t.Fatal("merge result must not share pointers with base")
	}
}

func TestOverlayAcceptsServerFalse(t *testing.T) {
	cached := baseIdentity()
	cached.TenantVerified = Bool(true)

	got := Overlay(cached, Identity{TenantVerified: Bool(false), FirstName: "Tanya"})

	if got.TenantVerified == nil || *got.TenantVerified {
		t.Fatal("expected server false to replace cached true")
	}
	if got.FirstName != "Tanya" {
		t.Fatalf("expected server first name, got %q", got.FirstName)
	}
	if got.LastName != "Tenant" {
		t.Fatalf("expected cached last name kept, got %q", got.LastName)
	}
	if !BoolValue(got.ProfileComplete) {
		t.Fatal("expected absent server flag to keep cached value")
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{in: "tenant", want: RoleTenant, ok: true},
		{in: " Agent ", want: RoleAgent, ok: true},
		{in: "agency_admin", want: RoleAgencyAdmin, ok: true},
		{in: "", ok: false},
		{in: "landlord", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseRole(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNameFallbacks(t *testing.T) {
	i := Identity{Email: "a@example.com"}
	if i.Name() != "a@example.com" {
		t.Fatalf("expected email fallback, got %q", i.Name())
	}
	i.FirstName = "Ann"
	if i.Name() != "Ann" {
		t.Fatalf("expected first name, got %q", i.Name())
	}
	i.DisplayName = "Annie"
	if i.WithDisplayName().DisplayName != "Annie" {
		t.Fatal("expected explicit display name kept")
	}
}
