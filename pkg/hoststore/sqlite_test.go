package hoststore_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settings "github.com/goliatone/go-clef-settings"
	"github.com/goliatone/go-clef-settings/pkg/hoststore"
)

var _ settings.Host = (*hoststore.SQLiteHost)(nil)

func setupSQLiteHost(t *testing.T) (*hoststore.SQLiteHost, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.db")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	host, err := hoststore.OpenSQLiteHost(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })
	return host, path
}

func TestSQLiteHostOptions(t *testing.T) {
	ctx := context.Background()
	host, _ := setupSQLiteHost(t)

	_, found, err := host.GetOption(ctx, "wpclef")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, host.UpdateOption(ctx, "wpclef", map[string]any{"clef_settings_app_id": "app"}))
	value, found, err := host.GetOption(ctx, "wpclef")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]any{"clef_settings_app_id": "app"}, value)

	require.NoError(t, host.AddOption(ctx, "wpclef", "ignored"))
	value, _, err = host.GetOption(ctx, "wpclef")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"clef_settings_app_id": "app"}, value)

	require.NoError(t, host.AddOption(ctx, "clef_multisite_override", true))
	value, found, err = host.GetOption(ctx, "clef_multisite_override")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, true, value)
}

func TestSQLiteHostSiteOptions(t *testing.T) {
	ctx := context.Background()
	host, _ := setupSQLiteHost(t)

	require.NoError(t, host.UpdateSiteOption(ctx, "clef_multisite_enabled", "1"))
	require.NoError(t, host.UpdateSiteOption(ctx, "clef_multisite_enabled", "0"))

	value, found, err := host.GetSiteOption(ctx, "clef_multisite_enabled")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "0", value)

	_, found, err = host.GetOption(ctx, "clef_multisite_enabled")
	require.NoError(t, err)
	assert.False(t, found, "site options and network options must not share storage")
}

func TestSQLiteHostEnvironment(t *testing.T) {
	ctx := context.Background()
	host, _ := setupSQLiteHost(t)

	assert.False(t, host.IsPluginActiveForNetwork(ctx, settings.DefaultPluginFile))
	require.NoError(t, host.ActivatePluginForNetwork(ctx, settings.DefaultPluginFile))
	require.NoError(t, host.ActivatePluginForNetwork(ctx, settings.DefaultPluginFile))
	assert.True(t, host.IsPluginActiveForNetwork(ctx, settings.DefaultPluginFile))

	assert.False(t, host.IsSuperAdmin(ctx, 1))
	require.NoError(t, host.GrantSuperAdmin(ctx, 1))
	assert.True(t, host.IsSuperAdmin(ctx, 1))

	assert.False(t, host.IsNetworkAdmin(ctx))
	host.NetworkAdmin = true
	assert.True(t, host.IsNetworkAdmin(ctx))

	meta, err := host.GetUserMeta(ctx, 1, settings.UserMetaClefID)
	require.NoError(t, err)
	assert.Nil(t, meta)

	require.NoError(t, host.SetUserMeta(ctx, 1, settings.UserMetaClefID, "abc"))
	meta, err = host.GetUserMeta(ctx, 1, settings.UserMetaClefID)
	require.NoError(t, err)
	assert.Equal(t, "abc", meta)
}

func TestSQLiteHostBacksResolver(t *testing.T) {
	ctx := context.Background()
	host, path := setupSQLiteHost(t)

	resolver, err := settings.New(ctx, host)
	require.NoError(t, err)
	require.NoError(t, resolver.Set(ctx, settings.KeyAppID, "app"))
	require.NoError(t, resolver.Set(ctx, settings.KeyAppSecret, "secret"))
	require.NoError(t, resolver.Set(ctx, settings.KeyDisableCertainPasswords, "Editor"))
	require.NoError(t, host.Close())

	reopened, err := hoststore.OpenSQLiteHost(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	resolver, err = settings.New(ctx, reopened)
	require.NoError(t, err)
	assert.True(t, resolver.IsConfigured())
	assert.True(t, resolver.PasswordsAreDisabledForUser(ctx, settings.User{ID: 2, Roles: []string{"editor"}}))
	assert.False(t, resolver.PasswordsAreDisabledForUser(ctx, settings.User{ID: 3, Roles: []string{"subscriber"}}))
}

func TestSQLiteHostNetworkMode(t *testing.T) {
	ctx := context.Background()
	host, _ := setupSQLiteHost(t)

	require.NoError(t, host.ActivatePluginForNetwork(ctx, settings.DefaultPluginFile))
	require.NoError(t, host.UpdateSiteOption(ctx, settings.MultisiteEnabledOption, 1))

	resolver, err := settings.New(ctx, host)
	require.NoError(t, err)
	assert.Equal(t, settings.ModeNetwork, resolver.Mode())
	assert.True(t, resolver.MultisiteDisallowSettingsOverride(ctx))

	require.NoError(t, resolver.Set(ctx, settings.KeyAppID, "network-app"))
	value, found, err := host.GetSiteOption(ctx, settings.DefaultOptionName)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "network-app", value.(map[string]any)[settings.KeyAppID])
}
