package settings

import (
	"context"
	"reflect"
)

// Store loads and saves the settings map for one storage scope. The resolver
// picks one implementation at construction and keeps it.
type Store interface {
	Mode() Mode
	Load(ctx context.Context, option string) (map[string]any, bool, error)
	Save(ctx context.Context, option string, values map[string]any) error
}

// NewStore returns the Store backing mode on host.
func NewStore(mode Mode, host Host) Store {
	if mode == ModeNetwork {
		return networkStore{host: host}
	}
	return siteStore{host: host}
}

type siteStore struct {
	host SiteOptions
}

func (siteStore) Mode() Mode { return ModeIndividual }

func (s siteStore) Load(ctx context.Context, option string) (map[string]any, bool, error) {
	value, found, err := s.host.GetOption(ctx, option)
	if err != nil || !found {
		return nil, false, err
	}
	values, ok := asSettingsMap(value)
	return values, ok, nil
}

func (s siteStore) Save(ctx context.Context, option string, values map[string]any) error {
	return s.host.UpdateOption(ctx, option, values)
}

type networkStore struct {
	host NetworkOptions
}

func (networkStore) Mode() Mode { return ModeNetwork }

func (s networkStore) Load(ctx context.Context, option string) (map[string]any, bool, error) {
	value, found, err := s.host.GetSiteOption(ctx, option)
	if err != nil || !found {
		return nil, false, err
	}
	values, ok := asSettingsMap(value)
	return values, ok, nil
}

func (s networkStore) Save(ctx context.Context, option string, values map[string]any) error {
	return s.host.UpdateSiteOption(ctx, option, values)
}

// asSettingsMap accepts any string-keyed map. Scalars stored under the option
// name (a blank install stores "") read as no settings.
func asSettingsMap(value any) (map[string]any, bool) {
	if values, ok := value.(map[string]any); ok {
		return values, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
