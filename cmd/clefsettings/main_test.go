package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"show", "get", "set", "remove", "policy", "eval", "seed"} {
		assert.True(t, names[name], "missing subcommand %s", name)
	}
}

func TestSetGetRemove(t *testing.T) {
	db := filepath.Join(t.TempDir(), "host.db")

	_, err := run(t, "--db", db, "set", "clef_settings_app_id", "app")
	require.NoError(t, err)

	out, err := run(t, "--db", db, "get", "clef_settings_app_id")
	require.NoError(t, err)
	assert.JSONEq(t, `"app"`, out)

	out, err = run(t, "--db", db, "show")
	require.NoError(t, err)
	shown := decode(t, out)
	assert.Equal(t, "individual", shown["mode"])
	assert.Equal(t, "wpclef", shown["option"])
	assert.Equal(t, map[string]any{"clef_settings_app_id": "app"}, shown["settings"])

	out, err = run(t, "--db", db, "remove", "clef_settings_app_id")
	require.NoError(t, err)
	assert.JSONEq(t, `"app"`, out)

	_, err = run(t, "--db", db, "get", "clef_settings_app_id")
	assert.Error(t, err)
}

func TestPolicy(t *testing.T) {
	db := filepath.Join(t.TempDir(), "host.db")

	for _, args := range [][]string{
		{"set", "clef_settings_app_id", "app"},
		{"set", "clef_settings_app_secret", "secret"},
		{"set", "clef_password_settings_disable_certain_passwords", "Editor"},
	} {
		_, err := run(t, append([]string{"--db", db}, args...)...)
		require.NoError(t, err)
	}

	out, err := run(t, "--db", db, "policy", "--user-id", "2", "--roles", "author")
	require.NoError(t, err)
	report := decode(t, out)
	assert.Equal(t, true, report["configured"])
	assert.Equal(t, true, report["passwords_disabled"])
	assert.Equal(t, false, report["xml_passwords_enabled"])
	assert.Equal(t, true, report["passwords_disabled_for_user"])

	out, err = run(t, "--db", db, "policy", "--user-id", "3", "--roles", "subscriber")
	require.NoError(t, err)
	assert.Equal(t, false, decode(t, out)["passwords_disabled_for_user"])
}

func TestSeedMultisite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "host.db")

	_, err := run(t, "--db", db, "seed", "--multisite", "--super-admin", "1", "--link", "5=abc")
	require.NoError(t, err)

	out, err := run(t, "--db", db, "policy")
	require.NoError(t, err)
	report := decode(t, out)
	assert.Equal(t, "network", report["mode"])
	assert.Equal(t, true, report["multisite_enabled"])
	assert.Equal(t, true, report["multisite_disallow_override"])

	_, err = run(t, "--db", db, "seed", "--allow-override")
	require.NoError(t, err)
	out, err = run(t, "--db", db, "policy")
	require.NoError(t, err)
	assert.Equal(t, false, decode(t, out)["multisite_disallow_override"])
}

func TestEval(t *testing.T) {
	db := filepath.Join(t.TempDir(), "host.db")
	_, err := run(t, "--db", db, "set", "clef_password_settings_force", "1")
	require.NoError(t, err)

	out, err := run(t, "--db", db, "eval", "settings.clef_password_settings_force == 1")
	require.NoError(t, err)
	assert.JSONEq(t, `true`, out)

	out, err = run(t, "--db", db, "--engine", "cel", "eval", "settings.clef_password_settings_force == 1.0")
	require.NoError(t, err)
	assert.JSONEq(t, `true`, out)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, float64(1), parseValue("1"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "Editor", parseValue("Editor"))
	assert.Equal(t, map[string]any{"a": "b"}, parseValue(`{"a":"b"}`))
}

func TestParseLink(t *testing.T) {
	userID, clefID, err := parseLink("5=abc")
	require.NoError(t, err)
	assert.Equal(t, int64(5), userID)
	assert.Equal(t, "abc", clefID)

	_, _, err = parseLink("5")
	assert.Error(t, err)
	_, _, err = parseLink("x=abc")
	assert.Error(t, err)
}
