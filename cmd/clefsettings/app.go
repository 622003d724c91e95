package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	settings "github.com/goliatone/go-clef-settings"
	"github.com/goliatone/go-clef-settings/internal/config"
	"github.com/goliatone/go-clef-settings/pkg/activity"
	"github.com/goliatone/go-clef-settings/pkg/activity/usersink"
	"github.com/goliatone/go-clef-settings/pkg/hoststore"
	"github.com/goliatone/go-clef-settings/pkg/rules"
)

// app bundles what a subcommand needs. close releases the database and the
// rule cache.
type app struct {
	cfg      *config.Config
	host     *hoststore.SQLiteHost
	resolver *settings.Resolver
	cache    *rules.TTLCache
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Stop()
	}
	if a.host != nil {
		if err := a.host.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close host database")
		}
	}
}

func (a *app) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg.Actor != "" {
		ctx = settings.ContextWithActor(ctx, a.cfg.Actor)
	}
	return ctx
}

// openHost loads configuration and opens the host database without resolving
// settings.
func openHost(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.LogLevel)

	host, err := hoststore.OpenSQLiteHost(cfg.DBPath, logrus.StandardLogger())
	if err != nil {
		return nil, err
	}
	host.NetworkAdmin = cfg.NetworkAdmin

	logrus.WithFields(logrus.Fields{
		"db_path":       cfg.DBPath,
		"network_admin": cfg.NetworkAdmin,
	}).Debug("Host database opened")
	return &app{cfg: cfg, host: host}, nil
}

// openApp opens the host and resolves settings from it.
func openApp(cmd *cobra.Command) (*app, error) {
	a, err := openHost(cmd)
	if err != nil {
		return nil, err
	}

	var ruleOpts []rules.Option
	if a.cfg.Rules.CacheTTL > 0 {
		a.cache = rules.NewTTLCache(a.cfg.Rules.CacheTTL)
		go a.cache.Start()
		ruleOpts = append(ruleOpts, rules.WithCache(a.cache))
	}
	engine, err := rules.New(a.cfg.Rules.Engine, ruleOpts...)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []settings.Option{
		settings.WithOptionName(a.cfg.OptionName),
		settings.WithPluginFile(a.cfg.PluginFile),
		settings.WithLogger(newSettingsLogger(logrus.StandardLogger())),
		settings.WithRuleEngine(engine),
		settings.WithPasswordRule(a.cfg.Rules.PasswordRule),
		settings.WithActivityHooks(usersink.Hook{Sink: newActivitySink(logrus.StandardLogger())}),
		settings.WithActivityConfig(activity.Config{
			Enabled: a.cfg.Activity.Enable,
			Channel: a.cfg.Activity.Channel,
			SiteID:  a.cfg.Activity.SiteID,
		}),
	}

	resolver, err := settings.New(a.context(cmd), a.host, opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	a.resolver = resolver
	return a, nil
}
