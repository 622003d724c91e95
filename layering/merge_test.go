package layering

import (
	"reflect"
	"testing"
	"time"
)

func TestMergeLayersStoredOverDefaults(t *testing.T) {
	stored := map[string]any{
		"clef_settings_app_id":                             "app-1",
		"clef_password_settings_disable_certain_passwords": "Editor",
		"clef_form_settings": map[string]any{
			"embed": "1",
		},
	}
	defaults := map[string]any{
		"clef_settings_app_id":                             "",
		"clef_password_settings_disable_certain_passwords": "Disabled",
		"clef_password_settings_xml_allowed":               "0",
		"clef_form_settings": map[string]any{
			"embed": "0",
			"style": "button",
		},
	}

	got := MergeLayers(stored, defaults)

	want := map[string]any{
		"clef_settings_app_id":                             "app-1",
		"clef_password_settings_disable_certain_passwords": "Editor",
		"clef_password_settings_xml_allowed":               "0",
		"clef_form_settings": map[string]any{
			"embed": "1",
			"style": "button",
		},
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("merged snapshot mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	if got := MergeLayers[map[string]any](); got != nil {
		t.Fatalf("expected nil map, got %#v", got)
	}

	type sample struct {
		Value int
	}
	var zero sample
	if got := MergeLayers[sample](); got != zero {
		t.Fatalf("expected zero value, got %+v", got)
	}
}

func TestMergeLayersStructFillsZeroFields(t *testing.T) {
	type record struct {
		AppID  string
		Force  bool
		Roles  []string
		Stamp  time.Time
		hidden int
	}
	stamp := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got := MergeLayers(
		record{AppID: "strong", hidden: 7},
		record{AppID: "weak", Force: true, Roles: []string{"editor"}, Stamp: stamp},
	)

	if got.AppID != "strong" || !got.Force {
		t.Fatalf("unexpected scalar merge: %+v", got)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "editor" {
		t.Fatalf("expected roles from weak layer, got %v", got.Roles)
	}
	if !got.Stamp.Equal(stamp) {
		t.Fatalf("expected stamp from weak layer, got %v", got.Stamp)
	}
	if got.hidden != 7 {
		t.Fatalf("expected unexported field copied from strong layer, got %d", got.hidden)
	}
}

func TestCloneDetachesNestedValues(t *testing.T) {
	original := map[string]any{
		"roles": []any{"editor", "author"},
		"nested": map[string]any{
			"flag": true,
		},
	}

	cloned := Clone(original)
	cloned["roles"].([]any)[0] = "changed"
	cloned["nested"].(map[string]any)["flag"] = false

	if original["roles"].([]any)[0] != "editor" {
		t.Fatalf("expected original slice untouched, got %v", original["roles"])
	}
	if original["nested"].(map[string]any)["flag"] != true {
		t.Fatalf("expected original nested map untouched, got %v", original["nested"])
	}
}

func TestCloneNilMap(t *testing.T) {
	var snapshot map[string]any
	if got := Clone(snapshot); got != nil {
		t.Fatalf("expected nil clone, got %#v", got)
	}
}
