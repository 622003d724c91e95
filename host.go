package settings

import "context"

// SiteOptions reads and writes options scoped to the current site. A read
// reporting found=false is the host's "undefined" answer.
type SiteOptions interface {
	GetOption(ctx context.Context, name string) (value any, found bool, err error)
	AddOption(ctx context.Context, name string, value any) error
	UpdateOption(ctx context.Context, name string, value any) error
}

// NetworkOptions reads and writes options shared by every site.
type NetworkOptions interface {
	GetSiteOption(ctx context.Context, name string) (value any, found bool, err error)
	UpdateSiteOption(ctx context.Context, name string, value any) error
}

// Environment answers questions about the current request and plugin state.
type Environment interface {
	IsPluginActiveForNetwork(ctx context.Context, plugin string) bool
	IsNetworkAdmin(ctx context.Context) bool
	IsSuperAdmin(ctx context.Context, userID int64) bool
}

// Users reads per-user metadata.
type Users interface {
	GetUserMeta(ctx context.Context, userID int64, key string) (any, error)
}

// Host is everything the resolver needs from the surrounding CMS.
type Host interface {
	SiteOptions
	NetworkOptions
	Environment
	Users
}
