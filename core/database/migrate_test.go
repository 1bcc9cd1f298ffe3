package database

import (
	"reflect"
	"testing"
)

func TestParseVersion(t *testing.T) {
	cases := map[string]uint64{
		"000001_create_expenses.up.sql": 1,
		"42_add_index.up.sql":           42,
		"garbage.sql":                   0,
	}
	for name, want := range cases {
		if got := parseVersion(name); got != want {
			t.Errorf("parseVersion(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestSelectApplied(t *testing.T) {
	files := []string{
		"000001_create_expenses.up.sql",
		"000002_add_column.up.sql",
		"000003_backfill.up.sql",
	}

	got := selectApplied(files, 1, 3)
	want := []string{"000002_add_column.up.sql", "000003_backfill.up.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("selectApplied(1,3) = %v, want %v", got, want)
	}

	if out := selectApplied(files, 3, 3); out != nil {
		t.Fatalf("expected nil for no-op range, got %v", out)
	}
}
