package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matheus3301/classnotes/internal/docstore"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := testDB(t)

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestMigrateRefusesDirtySchema(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`UPDATE schema_migrations SET dirty = 1`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); !errors.Is(err, ErrDirtySchema) {
		t.Errorf("Migrate() error = %v, want ErrDirtySchema", err)
	}
}

func TestCreateUserAndLookup(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	u := &User{UID: "u1", Email: "ana@school.test", PasswordHash: []byte("hash"), CreatedAt: 1}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := db.UserByEmail(ctx, "ANA@school.test")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.UID != "u1" {
		t.Fatalf("UserByEmail() = %+v, want u1", got)
	}

	dup := &User{UID: "u2", Email: "ana@school.test", PasswordHash: []byte("x"), CreatedAt: 2}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrConflict", err)
	}

	ok, err := db.SetDisplayName(ctx, "u1", "Ana")
	if err != nil || !ok {
		t.Fatalf("SetDisplayName() = %v, %v", ok, err)
	}
	got, _ = db.UserByUID(ctx, "u1")
	if got.DisplayName != "Ana" {
		t.Errorf("DisplayName = %q, want Ana", got.DisplayName)
	}

	missing, err := db.UserByUID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("UserByUID(nope) = %+v, %v, want nil, nil", missing, err)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	d := &Doc{Collection: "groups", ID: "g1", Data: `{"name":"Bio","createdBy":"u1"}`, CreatedAt: 10, UpdatedAt: 10}
	if err := db.InsertDocument(ctx, d); err != nil {
		t.Fatalf("InsertDocument() error = %v", err)
	}
	if err := db.InsertDocument(ctx, d); !errors.Is(err, ErrConflict) {
		t.Errorf("second InsertDocument() error = %v, want ErrConflict", err)
	}

	ok, err := db.MergeDocument(ctx, "groups", "g1", `{"name":"Biology"}`, 20)
	if err != nil || !ok {
		t.Fatalf("MergeDocument() = %v, %v", ok, err)
	}
	got, err := db.GetDocument(ctx, "groups", "g1")
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(got.Data), &data); err != nil {
		t.Fatal(err)
	}
	if data["name"] != "Biology" || data["createdBy"] != "u1" {
		t.Errorf("Data = %s, want merged name and kept createdBy", got.Data)
	}
	if got.CreatedAt != 10 || got.UpdatedAt != 20 {
		t.Errorf("times = %d/%d, want 10/20", got.CreatedAt, got.UpdatedAt)
	}

	ok, err = db.MergeDocument(ctx, "groups", "missing", `{}`, 30)
	if err != nil || ok {
		t.Errorf("MergeDocument(missing) = %v, %v, want false, nil", ok, err)
	}

	if err := db.PutDocument(ctx, &Doc{Collection: "groups", ID: "g1", Data: `{"name":"B"}`, CreatedAt: 99, UpdatedAt: 40}); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetDocument(ctx, "groups", "g1")
	if got.CreatedAt != 10 || got.Data != `{"name":"B"}` {
		t.Errorf("after Put: %+v", got)
	}

	ok, err = db.DeleteDocument(ctx, "groups", "g1")
	if err != nil || !ok {
		t.Fatalf("DeleteDocument() = %v, %v", ok, err)
	}
	got, err = db.GetDocument(ctx, "groups", "g1")
	if err != nil || got != nil {
		t.Errorf("GetDocument after delete = %+v, %v", got, err)
	}
}

func TestQueryDocuments(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	seed := []Doc{
		{Collection: "notes", ID: "n1", Data: `{"groupId":"g1","createdBy":"u1","createdAt":100}`, CreatedAt: 1, UpdatedAt: 1},
		{Collection: "notes", ID: "n2", Data: `{"groupId":"g1","createdBy":"u1","createdAt":300}`, CreatedAt: 2, UpdatedAt: 2},
		{Collection: "notes", ID: "n3", Data: `{"groupId":"g1","createdBy":"u2","createdAt":200}`, CreatedAt: 3, UpdatedAt: 3},
		{Collection: "notes", ID: "n4", Data: `{"groupId":"g2","createdBy":"u1","createdAt":400}`, CreatedAt: 4, UpdatedAt: 4},
		{Collection: "groups", ID: "g1", Data: `{"groupId":"g1"}`, CreatedAt: 5, UpdatedAt: 5},
	}
	for i := range seed {
		if err := db.InsertDocument(ctx, &seed[i]); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		q    docstore.Query
		want []string
	}{
		{"collection only", docstore.Collection("notes"), []string{"n1", "n2", "n3", "n4"}},
		{"equality", docstore.Collection("notes").Where("groupId", docstore.Equal, "g1").Where("createdBy", docstore.Equal, "u1"), []string{"n1", "n2"}},
		{"order desc", docstore.Collection("notes").Where("groupId", docstore.Equal, "g1").OrderBy("createdAt", docstore.Desc), []string{"n2", "n3", "n1"}},
		{"limit", docstore.Collection("notes").OrderBy("createdAt", docstore.Desc).Limit(2), []string{"n4", "n2"}},
		{"range", docstore.Collection("notes").Where("createdAt", docstore.GreaterEqual, 200).OrderBy("createdAt", docstore.Asc), []string{"n3", "n2", "n4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := db.QueryDocuments(ctx, tt.q)
			if err != nil {
				t.Fatalf("QueryDocuments() error = %v", err)
			}
			var got []string
			for _, d := range docs {
				got = append(got, d.ID)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestQueryDocumentsRejectsInvalidQuery(t *testing.T) {
	db := testDB(t)
	_, err := db.QueryDocuments(context.Background(), docstore.Collection("notes").Where("x') OR 1=1 --", docstore.Equal, "a"))
	if !errors.Is(err, docstore.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}
