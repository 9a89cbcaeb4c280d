package docstore

import "testing"

func TestDataTo(t *testing.T) {
	doc := Document{
		ID:         "n1",
		Collection: "notes",
		Fields: Fields{
			"title":     "Reminder",
			"createdAt": float64(1718000000000),
		},
	}
	var out struct {
		Title     string `json:"title"`
		CreatedAt int64  `json:"createdAt"`
	}
	if err := doc.DataTo(&out); err != nil {
		t.Fatalf("DataTo() error = %v", err)
	}
	if out.Title != "Reminder" || out.CreatedAt != 1718000000000 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestDataToTypeMismatch(t *testing.T) {
	doc := Document{ID: "n1", Collection: "notes", Fields: Fields{"createdAt": "yesterday"}}
	var out struct {
		CreatedAt int64 `json:"createdAt"`
	}
	if err := doc.DataTo(&out); err == nil {
		t.Error("DataTo() expected error for string into int64")
	}
}

func TestSnapshotIDs(t *testing.T) {
	snap := Snapshot{Docs: []Document{{ID: "a"}, {ID: "b"}}}
	ids := snap.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs() = %v", ids)
	}
}
