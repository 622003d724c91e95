// Package usersink forwards settings activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-clef-settings/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// DefaultNamespace seeds the name-based UUIDs derived for numeric host IDs.
var DefaultNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://getclef.com/wordpress"))

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Namespace overrides DefaultNamespace when deriving IDs.
	Namespace uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	actor := h.identify("user", normalized.ActorID)
	record := usertypes.ActivityRecord{
		ActorID:    actor,
		UserID:     actor,
		TenantID:   h.identify("site", normalized.SiteID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		Data:       copyData(normalized.Metadata),
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	if normalized.ActorID != "" || normalized.SiteID != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		if normalized.ActorID != "" {
			record.Data["host_user_id"] = normalized.ActorID
		}
		if normalized.SiteID != "" {
			record.Data["host_site_id"] = normalized.SiteID
		}
	}

	return h.Sink.Log(ctx, record)
}

// identify keeps real UUIDs and derives stable name-based UUIDs for host IDs.
func (h Hook) identify(kind, input string) uuid.UUID {
	value := strings.TrimSpace(input)
	if value == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(value); err == nil {
		return id
	}
	namespace := h.Namespace
	if namespace == uuid.Nil {
		namespace = DefaultNamespace
	}
	return uuid.NewSHA1(namespace, []byte(kind+":"+value))
}

func copyData(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
