// Package hoststore provides settings.Host implementations: an in-memory host
// for tests and examples, and a SQLite host laid out like the WordPress
// options, sitemeta and usermeta tables.
package hoststore

import (
	"context"
	"sync"

	"github.com/goliatone/go-clef-settings/layering"
)

// Calls counts host operations by method name.
type Calls map[string]int

// MemoryHost keeps every option in memory. Stored values are deep copied on
// the way in and out so callers observe the same isolation a database gives.
// The zero value is not usable; call NewMemoryHost.
type MemoryHost struct {
	mu sync.RWMutex

	site         map[string]any
	network      map[string]any
	userMeta     map[int64]map[string]any
	plugins      map[string]bool
	superAdmins  map[int64]bool
	networkAdmin bool

	calls  Calls
	errors map[string]error
}

func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		site:        map[string]any{},
		network:     map[string]any{},
		userMeta:    map[int64]map[string]any{},
		plugins:     map[string]bool{},
		superAdmins: map[int64]bool{},
		calls:       Calls{},
		errors:      map[string]error{},
	}
}

// SeedSiteOption stores a per-site option without counting a call.
func (h *MemoryHost) SeedSiteOption(name string, value any) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.site[name] = layering.Clone(value)
	return h
}

// SeedNetworkOption stores a network option without counting a call.
func (h *MemoryHost) SeedNetworkOption(name string, value any) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.network[name] = layering.Clone(value)
	return h
}

// SeedUserMeta stores a user meta value.
func (h *MemoryHost) SeedUserMeta(userID int64, key string, value any) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.userMeta[userID] == nil {
		h.userMeta[userID] = map[string]any{}
	}
	h.userMeta[userID][key] = layering.Clone(value)
	return h
}

// ActivatePluginForNetwork marks plugin as network activated.
func (h *MemoryHost) ActivatePluginForNetwork(plugin string) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plugins[plugin] = true
	return h
}

// SetNetworkAdmin switches the request context to or from network admin.
func (h *MemoryHost) SetNetworkAdmin(on bool) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.networkAdmin = on
	return h
}

// GrantSuperAdmin marks userID as a super administrator.
func (h *MemoryHost) GrantSuperAdmin(userID int64) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.superAdmins[userID] = true
	return h
}

// FailOn makes every call to method return err. A nil err clears it.
func (h *MemoryHost) FailOn(method string, err error) *MemoryHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.errors, method)
	} else {
		h.errors[method] = err
	}
	return h
}

// Calls returns a copy of the per-method call counts.
func (h *MemoryHost) Calls() Calls {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(Calls, len(h.calls))
	for method, n := range h.calls {
		out[method] = n
	}
	return out
}

// Writes returns the number of option write calls of any kind.
func (h *MemoryHost) Writes() int {
	calls := h.Calls()
	return calls["AddOption"] + calls["UpdateOption"] + calls["UpdateSiteOption"]
}

// SiteOption returns a copy of a stored per-site option.
func (h *MemoryHost) SiteOption(name string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	value, ok := h.site[name]
	return layering.Clone(value), ok
}

// NetworkOption returns a copy of a stored network option.
func (h *MemoryHost) NetworkOption(name string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	value, ok := h.network[name]
	return layering.Clone(value), ok
}

// track counts a call and returns its injected error. Callers hold h.mu.
func (h *MemoryHost) track(method string) error {
	h.calls[method]++
	return h.errors[method]
}

func (h *MemoryHost) GetOption(_ context.Context, name string) (any, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.track("GetOption"); err != nil {
		return nil, false, err
	}
	value, ok := h.site[name]
	return layering.Clone(value), ok, nil
}

// AddOption stores value only when name is not set yet, as the host does.
func (h *MemoryHost) AddOption(_ context.Context, name string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.track("AddOption"); err != nil {
		return err
	}
	if _, exists := h.site[name]; !exists {
		h.site[name] = layering.Clone(value)
	}
	return nil
}

func (h *MemoryHost) UpdateOption(_ context.Context, name string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.track("UpdateOption"); err != nil {
		return err
	}
	h.site[name] = layering.Clone(value)
	return nil
}

func (h *MemoryHost) GetSiteOption(_ context.Context, name string) (any, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.track("GetSiteOption"); err != nil {
		return nil, false, err
	}
	value, ok := h.network[name]
	return layering.Clone(value), ok, nil
}

func (h *MemoryHost) UpdateSiteOption(_ context.Context, name string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.track("UpdateSiteOption"); err != nil {
		return err
	}
	h.network[name] = layering.Clone(value)
	return nil
}

func (h *MemoryHost) IsPluginActiveForNetwork(_ context.Context, plugin string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls["IsPluginActiveForNetwork"]++
	return h.plugins[plugin]
}

func (h *MemoryHost) IsNetworkAdmin(context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls["IsNetworkAdmin"]++
	return h.networkAdmin
}

func (h *MemoryHost) IsSuperAdmin(_ context.Context, userID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls["IsSuperAdmin"]++
	return h.superAdmins[userID]
}

func (h *MemoryHost) GetUserMeta(_ context.Context, userID int64, key string) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.track("GetUserMeta"); err != nil {
		return nil, err
	}
	return layering.Clone(h.userMeta[userID][key]), nil
}
