package docstore

import (
	"errors"
	"testing"
)

func TestQueryBuilder(t *testing.T) {
	base := Collection("notes").Where("groupId", Equal, "g1")
	q := base.Where("createdBy", Equal, "u1").OrderBy("createdAt", Desc).Limit(50)

	if len(base.Filters) != 1 {
		t.Errorf("base query mutated: %d filters", len(base.Filters))
	}
	if len(q.Filters) != 2 || q.Filters[1].Field != "createdBy" {
		t.Errorf("Filters = %+v", q.Filters)
	}
	if len(q.Orders) != 1 || q.Orders[0].Direction != Desc {
		t.Errorf("Orders = %+v", q.Orders)
	}
	if q.Max != 50 {
		t.Errorf("Max = %d, want 50", q.Max)
	}
	if err := q.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestQueryBuilderBranchesDoNotShareFilters(t *testing.T) {
	base := Collection("messages").Where("groupId", Equal, "g1")
	a := base.Where("senderId", Equal, "a")
	b := base.Where("senderId", Equal, "b")
	if a.Filters[1].Value != "a" || b.Filters[1].Value != "b" {
		t.Errorf("branches share backing array: a=%v b=%v", a.Filters, b.Filters)
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name string
		q    Query
	}{
		{"empty collection", Collection("")},
		{"bad collection", Collection("notes/x")},
		{"bad field", Collection("notes").Where("a.b", Equal, "x")},
		{"bad op", Collection("notes").Where("a", Op("!="), "x")},
		{"nil value", Collection("notes").Where("a", Equal, nil)},
		{"map value", Collection("notes").Where("a", Equal, map[string]any{})},
		{"bad direction", Collection("notes").OrderBy("a", Direction("up"))},
		{"negative limit", Collection("notes").Limit(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Validate() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestValidateRef(t *testing.T) {
	if err := ValidateRef("users", "3f0e9c1a-7b7d-4a57-9d7f-0d1b2c3d4e5f"); err != nil {
		t.Errorf("ValidateRef(uuid) error = %v", err)
	}
	for _, id := range []string{"", "a/b", "../x", "with space"} {
		if err := ValidateRef("users", id); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ValidateRef(%q) error = %v, want ErrInvalidArgument", id, err)
		}
	}
}
