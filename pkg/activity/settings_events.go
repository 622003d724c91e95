package activity

import (
	"strings"
	"time"
)

const (
	VerbSettingCreated = "settings.created"
	VerbSettingUpdated = "settings.updated"
	VerbSettingDeleted = "settings.deleted"

	// ObjectTypeSetting is the object type of every setting mutation event.
	ObjectTypeSetting = "setting"
)

// SettingChange describes one mutation of one key inside a stored option.
type SettingChange struct {
	ActorID    string
	SiteID     string
	Channel    string
	Option     string
	Key        string
	Scope      string
	OldValue   any
	NewValue   any
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildSettingCreatedEvent describes a key written for the first time.
func BuildSettingCreatedEvent(change SettingChange) Event {
	return buildSettingEvent(VerbSettingCreated, change)
}

// BuildSettingUpdatedEvent describes an existing key receiving a new value.
func BuildSettingUpdatedEvent(change SettingChange) Event {
	return buildSettingEvent(VerbSettingUpdated, change)
}

// BuildSettingDeletedEvent describes a key removed from the option.
func BuildSettingDeletedEvent(change SettingChange) Event {
	return buildSettingEvent(VerbSettingDeleted, change)
}

func buildSettingEvent(verb string, change SettingChange) Event {
	metadata := cloneMap(change.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if option := strings.TrimSpace(change.Option); option != "" {
		set("option", option)
	}
	if scope := strings.TrimSpace(change.Scope); scope != "" {
		set("scope", scope)
	}
	if change.OldValue != nil {
		set("old_value", change.OldValue)
	}
	if change.NewValue != nil {
		set("new_value", change.NewValue)
	}

	objectID := strings.TrimSpace(change.Key)
	if objectID == "" {
		objectID = strings.TrimSpace(change.Option)
	}
	if objectID == "" {
		objectID = ObjectTypeSetting
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(change.ActorID),
		SiteID:     strings.TrimSpace(change.SiteID),
		ObjectType: ObjectTypeSetting,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(change.Channel),
		Metadata:   metadata,
		OccurredAt: change.OccurredAt,
	}
}
