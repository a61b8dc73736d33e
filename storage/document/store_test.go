package document

import (
	"context"
	"testing"
	"time"

	"github.com/longlg88/wallyhub/core"
)

var ctx = context.Background()

func seed(t *testing.T, s *Store, collection, id string, doc core.Document) {
	t.Helper()
	if err := s.Set(ctx, collection, id, doc); err != nil {
		t.Fatalf("seed() failed: %v", err)
	}
}

func ids(t *testing.T, docs []core.Document) []string {
	t.Helper()
	out := make([]string, 0, len(docs))
	for _, doc := range docs {
		id, err := doc.String(core.DocID)
		if err != nil {
			t.Fatalf("ids() failed: %v", err)
		}
		out = append(out, id)
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStore_GetSet(t *testing.T) {
	s := Open()

	if _, err := s.Get(ctx, "boards", "nope"); err != core.ErrDocNotFound {
		t.Errorf("Get() error = %v, want %v", err, core.ErrDocNotFound)
	}

	seed(t, s, "boards", "b1", core.Document{
		"title":            "Board 1",
		core.DocID:         "sneaky", // reserved; must not be stored
		core.DocCollection: "sneaky",
	})

	doc, err := s.Get(ctx, "boards", "b1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if id, _ := doc.String(core.DocID); id != "b1" {
		t.Errorf("Get() %s = %q, want %q", core.DocID, id, "b1")
	}
	if col, _ := doc.String(core.DocCollection); col != "boards" {
		t.Errorf("Get() %s = %q, want %q", core.DocCollection, col, "boards")
	}

	// mutating a returned document must not touch the store
	doc["title"] = "hijacked"
	again, _ := s.Get(ctx, "boards", "b1")
	if title, _ := again.String("title"); title != "Board 1" {
		t.Errorf("Get() after mutation = %q, want %q", title, "Board 1")
	}

	if err := s.Set(ctx, "", "b1", core.Document{}); err == nil {
		t.Error("Set() with empty collection: expected error")
	}
	if err := s.Set(ctx, "boards", "", core.Document{}); err == nil {
		t.Error("Set() with empty id: expected error")
	}
}

func TestStore_Update(t *testing.T) {
	s := Open()

	if err := s.Update(ctx, "boards", "nope", core.Document{"isActive": false}); err != core.ErrDocNotFound {
		t.Errorf("Update() error = %v, want %v", err, core.ErrDocNotFound)
	}

	seed(t, s, "boards", "b1", core.Document{"title": "Board 1", "isActive": true})
	if err := s.Update(ctx, "boards", "b1", core.Document{"isActive": false}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	doc, _ := s.Get(ctx, "boards", "b1")
	if active, _ := doc.Bool("isActive"); active {
		t.Error("Update() did not apply")
	}
	if title, _ := doc.String("title"); title != "Board 1" {
		t.Errorf("Update() clobbered title = %q", title)
	}
}

func TestStore_Delete(t *testing.T) {
	s := Open()
	seed(t, s, "boards", "b1", core.Document{"title": "Board 1"})

	if err := s.Delete(ctx, "boards", "b1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "boards", "b1"); err != core.ErrDocNotFound {
		t.Errorf("Get() after delete error = %v, want %v", err, core.ErrDocNotFound)
	}
	// idempotent
	if err := s.Delete(ctx, "boards", "b1"); err != nil {
		t.Errorf("Delete() again error = %v", err)
	}
}

func TestStore_Query(t *testing.T) {
	s := Open()
	t0 := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	seed(t, s, "students", "s1", core.Document{"boardId": "b1", "externalId": "ann", "joinedAt": t0})
	seed(t, s, "students", "s2", core.Document{"boardId": "b1", "externalId": "bob", "joinedAt": t0.Add(time.Hour)})
	seed(t, s, "students", "s3", core.Document{"boardId": "b2", "externalId": "ann", "joinedAt": t0.Add(2 * time.Hour)})
	seed(t, s, "students", "s4", core.Document{"boardId": "b2", "externalId": "eve", "joinedAt": t0.Add(3 * time.Hour)})

	tests := []struct {
		name    string
		q       core.Query
		want    []string
		wantErr bool
	}{
		{name: "no filters", q: core.Query{}, want: []string{"s1", "s2", "s3", "s4"}},
		{
			name: "eq",
			q:    core.Query{Filters: []core.Filter{core.Eq("boardId", "b1")}},
			want: []string{"s1", "s2"},
		},
		{
			name: "eq pair",
			q: core.Query{Filters: []core.Filter{
				core.Eq("boardId", "b2"),
				core.Eq("externalId", "ann"),
			}},
			want: []string{"s3"},
		},
		{
			name: "eq time",
			q:    core.Query{Filters: []core.Filter{core.Eq("joinedAt", t0.Add(time.Hour))}},
			want: []string{"s2"},
		},
		{
			name: "eq no match",
			q:    core.Query{Filters: []core.Filter{core.Eq("boardId", "b9")}},
			want: []string{},
		},
		{
			name: "missing field never matches",
			q:    core.Query{Filters: []core.Filter{core.Eq("nickname", "x")}},
			want: []string{},
		},
		{
			name: "in",
			q:    core.Query{Filters: []core.Filter{core.In("externalId", []string{"ann", "eve"})}},
			want: []string{"s1", "s3", "s4"},
		},
		{
			name: "gte time",
			q:    core.Query{Filters: []core.Filter{core.Gte("joinedAt", t0.Add(2*time.Hour))}},
			want: []string{"s3", "s4"},
		},
		{
			name: "gte + lt window",
			q: core.Query{Filters: []core.Filter{
				core.Gte("joinedAt", t0.Add(time.Hour)),
				core.Lt("joinedAt", t0.Add(3*time.Hour)),
			}},
			want: []string{"s2", "s3"},
		},
		{
			name: "order desc",
			q:    core.Query{OrderBy: []core.Order{{Field: "joinedAt", Desc: true}}},
			want: []string{"s4", "s3", "s2", "s1"},
		},
		{
			name: "order asc with limit",
			q:    core.Query{OrderBy: []core.Order{{Field: "joinedAt"}}, Limit: 2},
			want: []string{"s1", "s2"},
		},
		{
			name: "tie falls back to id order",
			q:    core.Query{OrderBy: []core.Order{{Field: "boardId"}}},
			want: []string{"s1", "s2", "s3", "s4"},
		},
		{
			name:    "in over the limit",
			q:       core.Query{Filters: []core.Filter{core.In("externalId", make([]string, core.InOpLimit+1))}},
			wantErr: true,
		},
		{
			name:    "in with wrong value shape",
			q:       core.Query{Filters: []core.Filter{{Field: "externalId", Op: core.OpIn, Value: 42}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, "students", tt.q)
			if tt.wantErr {
				if err == nil {
					t.Error("Query() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			// unordered queries still come back in id order
			got := ids(t, docs)
			if !sameIDs(got, tt.want) {
				t.Errorf("Query() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_QueryGroup(t *testing.T) {
	s := Open()
	seed(t, s, "students/s1/photos", "p1", core.Document{"title": "one"})
	seed(t, s, "students/s2/photos", "p2", core.Document{"title": "two"})
	seed(t, s, "photos", "p3", core.Document{"title": "top-level"})
	seed(t, s, "boards", "b1", core.Document{"title": "not a photo"})

	docs, err := s.QueryGroup(ctx, "photos", core.Query{})
	if err != nil {
		t.Fatalf("QueryGroup() error = %v", err)
	}
	if got := ids(t, docs); !sameIDs(got, []string{"p1", "p2", "p3"}) {
		t.Errorf("QueryGroup() = %v, want [p1 p2 p3]", got)
	}

	// the reserved id field is queryable across the group
	docs, err = s.QueryGroup(ctx, "photos", core.Query{
		Filters: []core.Filter{core.Eq(core.DocID, "p2")},
		Limit:   1,
	})
	if err != nil {
		t.Fatalf("QueryGroup() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("QueryGroup() returned %d docs, want 1", len(docs))
	}
	if col, _ := docs[0].String(core.DocCollection); col != "students/s2/photos" {
		t.Errorf("QueryGroup() %s = %q, want %q", core.DocCollection, col, "students/s2/photos")
	}
}

func TestStore_BatchWrite(t *testing.T) {
	s := Open()

	err := s.BatchWrite(ctx, []core.Write{
		{Collection: "view_records", ID: "r1", Fields: core.Document{"photoId": "p1"}},
		{Collection: "view_records", ID: "", Fields: core.Document{"photoId": "p2"}},
	})
	if err == nil {
		t.Fatal("BatchWrite() with malformed write: expected error")
	}
	if docs, _ := s.Query(ctx, "view_records", core.Query{}); len(docs) != 0 {
		t.Errorf("BatchWrite() failure applied %d writes, want 0", len(docs))
	}

	err = s.BatchWrite(ctx, []core.Write{
		{Collection: "view_records", ID: "r1", Fields: core.Document{"photoId": "p1"}},
		{Collection: "view_records", ID: "r2", Fields: core.Document{"photoId": "p2"}},
	})
	if err != nil {
		t.Fatalf("BatchWrite() error = %v", err)
	}
	if docs, _ := s.Query(ctx, "view_records", core.Query{}); len(docs) != 2 {
		t.Errorf("BatchWrite() applied %d writes, want 2", len(docs))
	}
}
