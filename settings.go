package settings

import (
	"strings"

	"github.com/goliatone/go-clef-settings/internal/hydrate"
)

const (
	// DefaultOptionName is the option holding the whole settings map.
	DefaultOptionName = "wpclef"
	// DefaultPluginFile identifies the plugin for network activation checks.
	DefaultPluginFile = "wpclef/wpclef.php"

	// MultisiteEnabledOption is the network flag enabling network-wide settings.
	MultisiteEnabledOption = "clef_multisite_enabled"
	// MultisiteAllowOverrideOption is the network flag letting sites keep
	// their own settings. The misspelling is the stored key.
	MultisiteAllowOverrideOption = "clef_multsite_allow_override"
	// MultisiteOverrideOption is the per-site flag choosing individual settings.
	MultisiteOverrideOption = "clef_multisite_override"

	// UserMetaClefID links a user to their external Clef identity.
	UserMetaClefID = "clef_id"
)

// Recognised keys inside the settings map.
const (
	KeyAppID                   = "clef_settings_app_id"
	KeyAppSecret               = "clef_settings_app_secret"
	KeyForceDisablePasswords   = "clef_password_settings_force"
	KeyDisablePasswords        = "clef_password_settings_disable_passwords"
	KeyDisableCertainPasswords = "clef_password_settings_disable_certain_passwords"
	KeyXMLPasswordsAllowed     = "clef_password_settings_xml_allowed"
)

// CertainPasswordsDisabled is the threshold value that turns role-based
// password disabling off.
const CertainPasswordsDisabled = "Disabled"

// Settings is the typed view of the recognised keys. Unknown keys stay
// reachable through Resolver.Get.
type Settings struct {
	AppID                   string `json:"clef_settings_app_id,omitempty"`
	AppSecret               string `json:"clef_settings_app_secret,omitempty"`
	ForceDisablePasswords   bool   `json:"clef_password_settings_force,omitempty"`
	DisablePasswords        bool   `json:"clef_password_settings_disable_passwords,omitempty"`
	DisableCertainPasswords string `json:"clef_password_settings_disable_certain_passwords,omitempty"`
	XMLPasswordsAllowed     bool   `json:"clef_password_settings_xml_allowed,omitempty"`
}

// Configured reports whether both application credentials are present.
func (s Settings) Configured() bool {
	return s.AppID != "" && s.AppSecret != ""
}

// RoleThresholdEnabled reports whether role-based password disabling is on.
func (s Settings) RoleThresholdEnabled() bool {
	return hydrate.Truthy(s.DisableCertainPasswords) && s.DisableCertainPasswords != CertainPasswordsDisabled
}

// PasswordsDisabled reports whether any password-disabling rule is active.
func (s Settings) PasswordsDisabled() bool {
	return s.ForceDisablePasswords || s.DisablePasswords || s.RoleThresholdEnabled()
}

var recognisedKeys = []string{
	KeyAppID,
	KeyAppSecret,
	KeyForceDisablePasswords,
	KeyDisablePasswords,
	KeyDisableCertainPasswords,
	KeyXMLPasswordsAllowed,
}

var settingsDecoder = hydrate.NewDecoder(
	hydrate.WithPreHook[Settings](hydrate.OnlyKeys(recognisedKeys...)),
	hydrate.WithPreHook[Settings](hydrate.CoerceBools(
		KeyForceDisablePasswords,
		KeyDisablePasswords,
		KeyXMLPasswordsAllowed,
	)),
	hydrate.WithPreHook[Settings](hydrate.CoerceStrings(
		KeyAppID,
		KeyAppSecret,
		KeyDisableCertainPasswords,
	)),
	hydrate.WithPostHook[Settings](trimCredentials),
)

// trimCredentials drops whitespace pasted around the application credentials,
// so a blank credential reads as missing.
func trimCredentials(_ hydrate.Context, s *Settings) error {
	s.AppID = strings.TrimSpace(s.AppID)
	s.AppSecret = strings.TrimSpace(s.AppSecret)
	return nil
}

// DecodeSettings builds the typed view from a raw settings map.
func DecodeSettings(option string, mode Mode, values map[string]any) (Settings, error) {
	return settingsDecoder.Decode(hydrate.Context{Option: option, Scope: mode.Scope()}, values)
}
