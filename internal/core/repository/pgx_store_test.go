package repository

import (
	"reflect"
	"testing"

	"github.com/vinculo/crm-service/internal/core/domain"
)

func TestBuildSelectFiltersAreSortedAndNumbered(t *testing.T) {
	sql, args, err := buildSelect("leads", domain.Query{
		Filters: map[string]any{
			"source":  "website",
			"company": "Acme",
		},
	})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := "SELECT * FROM leads WHERE company = $1 AND source = $2"
	if sql != want {
		t.Errorf("sql mismatch:\n got %q\nwant %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"Acme", "website"}) {
		t.Errorf("args mismatch: %v", args)
	}
}

func TestBuildSelectOrderAndRange(t *testing.T) {
	sql, args, err := buildSelect("leads", domain.Query{
		Filters: map[string]any{"active": true},
		Order:   &domain.Order{Field: "created_at", Ascending: false},
		Offset:  10,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("buildSelect: %v", err)
	}
	want := "SELECT * FROM leads WHERE active = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3"
	if sql != want {
		t.Errorf("sql mismatch:\n got %q\nwant %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{true, 10, 10}) {
		t.Errorf("args mismatch: %v", args)
	}
}

func TestBuildSelectRejectsBadIdentifiers(t *testing.T) {
	cases := []domain.Query{
		{Filters: map[string]any{"source; DROP TABLE leads": "x"}},
		{Order: &domain.Order{Field: "name; --"}},
	}
	for _, q := range cases {
		if _, _, err := buildSelect("leads", q); err == nil {
			t.Errorf("expected identifier rejection for %+v", q)
		}
	}
	if _, _, err := buildSelect("leads;", domain.Query{}); err == nil {
		t.Error("expected collection name rejection")
	}
}

func TestBuildCount(t *testing.T) {
	sql, args, err := buildCount("chats", map[string]any{"lead_id": int64(3)})
	if err != nil {
		t.Fatalf("buildCount: %v", err)
	}
	if sql != "SELECT COUNT(*) FROM chats WHERE lead_id = $1" {
		t.Errorf("sql mismatch: %q", sql)
	}
	if !reflect.DeepEqual(args, []any{int64(3)}) {
		t.Errorf("args mismatch: %v", args)
	}
}

func TestBuildInsert(t *testing.T) {
	sql, args, err := buildInsert("stages", map[string]any{
		"name":     "Qualified",
		"position": 2,
	})
	if err != nil {
		t.Fatalf("buildInsert: %v", err)
	}
	want := "INSERT INTO stages (name, position) VALUES ($1, $2) RETURNING *"
	if sql != want {
		t.Errorf("sql mismatch:\n got %q\nwant %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"Qualified", 2}) {
		t.Errorf("args mismatch: %v", args)
	}
}

func TestBuildInsertRejectsEmptyFields(t *testing.T) {
	if _, _, err := buildInsert("stages", nil); err == nil {
		t.Error("expected rejection of empty insert")
	}
}

func TestBuildUpdateAppendsKeyLast(t *testing.T) {
	sql, args, err := buildUpdate("leads", int64(9), map[string]any{
		"deleted": true,
		"active":  false,
	})
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}
	want := "UPDATE leads SET active = $1, deleted = $2 WHERE id = $3 RETURNING *"
	if sql != want {
		t.Errorf("sql mismatch:\n got %q\nwant %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{false, true, int64(9)}) {
		t.Errorf("args mismatch: %v", args)
	}
}
