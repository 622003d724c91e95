package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-clef-settings/pkg/activity"
	"github.com/goliatone/go-clef-settings/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsSettingEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	event := activity.BuildSettingUpdatedEvent(activity.SettingChange{
		ActorID:    "7",
		SiteID:     "3",
		Channel:    "settings",
		Option:     "wpclef",
		Key:        "clef_password_settings_force",
		Scope:      "site",
		NewValue:   "1",
		OccurredAt: now,
	})
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	wantActor := uuid.NewSHA1(usersink.DefaultNamespace, []byte("user:7"))
	if record.ActorID != wantActor || record.UserID != wantActor {
		t.Fatalf("expected derived actor %s, got %s/%s", wantActor, record.ActorID, record.UserID)
	}
	if record.TenantID != uuid.NewSHA1(usersink.DefaultNamespace, []byte("site:3")) {
		t.Fatalf("unexpected tenant %s", record.TenantID)
	}
	if record.Verb != activity.VerbSettingUpdated || record.ObjectType != activity.ObjectTypeSetting || record.ObjectID != "clef_password_settings_force" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "settings" || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel/time: %+v", record)
	}
	if record.Data["scope"] != "site" || record.Data["new_value"] != "1" {
		t.Fatalf("expected metadata passthrough, got %+v", record.Data)
	}
	if record.Data["host_user_id"] != "7" || record.Data["host_site_id"] != "3" {
		t.Fatalf("expected host ids kept, got %+v", record.Data)
	}
}

func TestHookNotifyKeepsUUIDs(t *testing.T) {
	sink := &recordingSink{}
	actor := uuid.New()
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbSettingDeleted,
		ActorID:    actor.String(),
		ObjectType: activity.ObjectTypeSetting,
		ObjectID:   "k",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != actor {
		t.Fatalf("expected actor %s, got %s", actor, sink.records[0].ActorID)
	}
	if sink.records[0].TenantID != uuid.Nil {
		t.Fatalf("expected nil tenant, got %s", sink.records[0].TenantID)
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}

	err := hook.Notify(context.Background(), activity.Event{Verb: "v", ObjectType: "setting", ObjectID: "k"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookNotifyNilSink(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "v", ObjectType: "t", ObjectID: "i"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
