// Package settings resolves the Clef plugin settings map for a site, choosing
// between per-site and network-wide storage, and derives the password policy
// from it.
package settings

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/goliatone/go-clef-settings/internal/hydrate"
	"github.com/goliatone/go-clef-settings/layering"
	"github.com/goliatone/go-clef-settings/pkg/activity"
)

// Resolver mediates between per-site and network-wide storage for the plugin
// settings map and derives password policy from it.
//
// The storage mode is decided once in New and never changes afterwards. The
// map is loaded once and every effective mutation writes the whole map back
// immediately. A Resolver is safe for concurrent use.
type Resolver struct {
	host    Host
	store   Store
	cfg     config
	emitter *activity.Emitter

	mu        sync.RWMutex
	values    map[string]any
	settings  Settings
	threshold Role
}

// New decides the storage mode for the current request context and loads the
// settings map from it. It is meant to be called once by the composition root
// and the resulting handle shared with every caller.
func New(ctx context.Context, host Host, opts ...Option) (*Resolver, error) {
	if host == nil {
		return nil, ErrHostRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := applyOptions(opts)
	r := &Resolver{
		host:    host,
		cfg:     cfg,
		emitter: activity.NewEmitter(cfg.hooks, cfg.activity),
	}

	start := time.Now()
	mode := r.resolveMode(ctx)
	r.store = NewStore(mode, host)
	r.log(LogEvent{Operation: "resolve", Mode: mode, Duration: time.Since(start)})

	values, _, err := r.store.Load(ctx, cfg.optionName)
	if err != nil {
		err = &StoreError{Op: "load", Mode: mode, Option: cfg.optionName, Err: err}
		r.log(LogEvent{Operation: "load", Mode: mode, Err: err})
		return nil, err
	}
	if values == nil {
		values = map[string]any{}
	}
	r.values = layering.Clone(values)
	r.refresh()
	return r, nil
}

// resolveMode runs the multisite decision: individual storage unless the
// plugin is network enabled, in which case a site only keeps its own settings
// when the network allows it and the site opted in. The network admin screen
// always works on network storage.
func (r *Resolver) resolveMode(ctx context.Context) Mode {
	if !r.IsMultisiteEnabled(ctx) {
		return ModeIndividual
	}
	if !r.networkFlag(ctx, MultisiteAllowOverrideOption) {
		return ModeNetwork
	}
	if r.siteOverride(ctx) && !r.host.IsNetworkAdmin(ctx) {
		return ModeIndividual
	}
	return ModeNetwork
}

// siteOverride reads the per-site override flag. The first time it is read on
// a site it is seeded from whether the site already stored its own settings,
// and that answer is persisted so it is never recomputed.
func (r *Resolver) siteOverride(ctx context.Context) bool {
	value, found, err := r.host.GetOption(ctx, MultisiteOverrideOption)
	if err != nil {
		r.log(LogEvent{Operation: "resolve", Option: MultisiteOverrideOption, Mode: ModeIndividual, Err: err})
		return false
	}
	if found {
		return hydrate.Truthy(value)
	}

	legacy, _, err := r.host.GetOption(ctx, r.cfg.optionName)
	if err != nil {
		r.log(LogEvent{Operation: "resolve", Option: r.cfg.optionName, Mode: ModeIndividual, Err: err})
		return false
	}
	override := hydrate.Truthy(legacy)
	if err := r.host.AddOption(ctx, MultisiteOverrideOption, override); err != nil {
		r.log(LogEvent{Operation: "resolve", Option: MultisiteOverrideOption, Mode: ModeIndividual, Err: err})
	}
	r.log(LogEvent{
		Operation: "resolve",
		Option:    MultisiteOverrideOption,
		Mode:      ModeIndividual,
		Message:   "seeded site override from existing settings",
	})
	return override
}

func (r *Resolver) networkFlag(ctx context.Context, name string) bool {
	value, found, err := r.host.GetSiteOption(ctx, name)
	if err != nil {
		r.log(LogEvent{Operation: "network_flag", Option: name, Mode: ModeNetwork, Err: err})
		return false
	}
	return found && hydrate.Truthy(value)
}

// Mode returns the storage mode chosen at construction.
func (r *Resolver) Mode() Mode {
	return r.store.Mode()
}

// UseIndividualSettings reports whether settings are stored per site.
func (r *Resolver) UseIndividualSettings() bool {
	return r.Mode() == ModeIndividual
}

// OptionName returns the option the settings map is stored under.
func (r *Resolver) OptionName() string {
	return r.cfg.optionName
}

// Get returns the value stored under name. A nil value reads as absent.
// Configured defaults are not consulted; they only shape All and Settings.
func (r *Resolver) Get(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.values[name]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// All returns a deep copy of the effective settings map.
func (r *Resolver) All() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.effective()
}

func (r *Resolver) effective() map[string]any {
	if len(r.cfg.defaults) == 0 {
		return layering.Clone(r.values)
	}
	return layering.MergeLayers(r.values, r.cfg.defaults)
}

// Settings returns the typed view of the recognised keys.
func (r *Resolver) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// Set stores value under name and persists the whole map. Falsy values and
// values equal to what is already stored are ignored without a write.
func (r *Resolver) Set(ctx context.Context, name string, value any) error {
	if !hydrate.Truthy(value) {
		return nil
	}

	r.mu.Lock()
	previous, existed := r.values[name]
	if existed && reflect.DeepEqual(previous, value) {
		r.mu.Unlock()
		return nil
	}

	r.values[name] = layering.Clone(value)
	if err := r.persist(ctx, "set", name); err != nil {
		if existed {
			r.values[name] = previous
		} else {
			delete(r.values, name)
		}
		r.mu.Unlock()
		return err
	}
	r.refresh()
	r.mu.Unlock()

	change := r.change(ctx, name)
	change.NewValue = value
	if existed && previous != nil {
		change.OldValue = previous
		r.emit(ctx, activity.BuildSettingUpdatedEvent(change))
	} else {
		r.emit(ctx, activity.BuildSettingCreatedEvent(change))
	}
	return nil
}

// Remove deletes name and persists the map, returning the removed value. An
// absent key returns nil and writes nothing.
func (r *Resolver) Remove(ctx context.Context, name string) (any, error) {
	r.mu.Lock()
	previous, existed := r.values[name]
	if !existed || previous == nil {
		r.mu.Unlock()
		return nil, nil
	}

	delete(r.values, name)
	if err := r.persist(ctx, "remove", name); err != nil {
		r.values[name] = previous
		r.mu.Unlock()
		return nil, err
	}
	r.refresh()
	r.mu.Unlock()

	change := r.change(ctx, name)
	change.OldValue = previous
	r.emit(ctx, activity.BuildSettingDeletedEvent(change))
	return previous, nil
}

// persist writes the stored map. Callers hold the write lock.
func (r *Resolver) persist(ctx context.Context, op, key string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	err := r.store.Save(ctx, r.cfg.optionName, layering.Clone(r.values))
	if err != nil {
		err = &StoreError{Op: op, Mode: r.store.Mode(), Option: r.cfg.optionName, Err: err}
	}
	r.log(LogEvent{
		Operation: op,
		Option:    r.cfg.optionName,
		Key:       key,
		Mode:      r.store.Mode(),
		Duration:  time.Since(start),
		Err:       err,
	})
	return err
}

// refresh rebuilds the typed view and role threshold. Callers hold the write
// lock or own r exclusively.
func (r *Resolver) refresh() {
	decoded, err := DecodeSettings(r.cfg.optionName, r.store.Mode(), r.effective())
	if err != nil {
		r.log(LogEvent{Operation: "decode", Option: r.cfg.optionName, Mode: r.store.Mode(), Err: err})
		return
	}
	r.settings = decoded
	r.threshold = RoleUnknown
	if decoded.RoleThresholdEnabled() {
		r.threshold = ParseRole(decoded.DisableCertainPasswords)
	}
}

func (r *Resolver) change(ctx context.Context, key string) activity.SettingChange {
	return activity.SettingChange{
		ActorID: actorFromContext(ctx),
		Option:  r.cfg.optionName,
		Key:     key,
		Scope:   r.store.Mode().Scope(),
	}
}

func (r *Resolver) emit(ctx context.Context, event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if err := r.emitter.Emit(ctx, event); err != nil {
		r.log(LogEvent{
			Operation: "activity",
			Option:    r.cfg.optionName,
			Key:       event.ObjectID,
			Mode:      r.store.Mode(),
			Err:       err,
		})
	}
}

func (r *Resolver) log(event LogEvent) {
	r.cfg.logger.LogSettings(event)
}
