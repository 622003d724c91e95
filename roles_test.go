package settings

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"subscriber":          RoleSubscriber,
		"Editor":              RoleEditor,
		" author ":            RoleAuthor,
		"ADMINISTRATOR":       RoleAdministrator,
		"Super Administrator": RoleSuperAdministrator,
		"super_administrator": RoleSuperAdministrator,
		"contributor":         RoleUnknown,
		"Disabled":            RoleUnknown,
		"":                    RoleUnknown,
	}
	for name, expect := range cases {
		if got := ParseRole(name); got != expect {
			t.Fatalf("ParseRole(%q): expected %s, got %s", name, expect, got)
		}
	}
}

func TestRoleOrder(t *testing.T) {
	order := []Role{RoleSubscriber, RoleEditor, RoleAuthor, RoleAdministrator, RoleSuperAdministrator}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Fatalf("expected %s to outrank %s", order[i], order[i-1])
		}
	}
	if RoleUnknown.Known() {
		t.Fatalf("unknown role must not be ranked")
	}
	if RoleUnknown.String() != "unknown" {
		t.Fatalf("unexpected name %q", RoleUnknown.String())
	}
}

func TestDecodeSettingsCoercesStoredValues(t *testing.T) {
	decoded, err := DecodeSettings(DefaultOptionName, ModeNetwork, map[string]any{
		KeyAppID:                   12345,
		KeyAppSecret:               "secret",
		KeyForceDisablePasswords:   "0",
		KeyDisablePasswords:        "1",
		KeyDisableCertainPasswords: "Author",
		KeyXMLPasswordsAllowed:     "on",
		"unrelated":                []any{1, 2},
	})
	if err != nil {
		t.Fatalf("DecodeSettings returned error: %v", err)
	}
	if decoded.AppID != "12345" || decoded.AppSecret != "secret" {
		t.Fatalf("unexpected credentials %+v", decoded)
	}
	if decoded.ForceDisablePasswords || !decoded.DisablePasswords || !decoded.XMLPasswordsAllowed {
		t.Fatalf("unexpected flags %+v", decoded)
	}
	if !decoded.RoleThresholdEnabled() || decoded.DisableCertainPasswords != "Author" {
		t.Fatalf("unexpected threshold %+v", decoded)
	}
}

func TestModeNames(t *testing.T) {
	if ModeIndividual.String() != "individual" || ModeIndividual.Scope() != "site" {
		t.Fatalf("unexpected individual names %s/%s", ModeIndividual, ModeIndividual.Scope())
	}
	if ModeNetwork.String() != "network" || ModeNetwork.Scope() != "network" {
		t.Fatalf("unexpected network names %s/%s", ModeNetwork, ModeNetwork.Scope())
	}
}

func TestDecodeSettingsNumericAndPaddedCredentials(t *testing.T) {
	decoded, err := DecodeSettings(DefaultOptionName, ModeIndividual, map[string]any{
		KeyAppID:     uint(4821),
		KeyAppSecret: "  secret\n",
	})
	if err != nil {
		t.Fatalf("DecodeSettings returned error: %v", err)
	}
	if decoded.AppID != "4821" || decoded.AppSecret != "secret" {
		t.Fatalf("unexpected credentials %+v", decoded)
	}
	if !decoded.Configured() {
		t.Fatalf("expected numeric app id to count as configured")
	}

	blank, err := DecodeSettings(DefaultOptionName, ModeIndividual, map[string]any{
		KeyAppID:     "app",
		KeyAppSecret: "   ",
	})
	if err != nil {
		t.Fatalf("DecodeSettings returned error: %v", err)
	}
	if blank.Configured() {
		t.Fatalf("expected blank secret to read as missing")
	}
}
