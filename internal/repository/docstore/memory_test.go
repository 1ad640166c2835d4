package docstore

import (
	"context"
	"errors"
	"testing"
)

type testDoc struct {
	ID    string  `json:"id"`
	Owner string  `json:"ownerId"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Create(ctx, "things", testDoc{Owner: "o1", Name: "alpha", Value: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty id")
	}

	var got testDoc
	if err := store.Get(ctx, "things", id, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != id || got.Name != "alpha" {
		t.Errorf("Get = %+v", got)
	}

	if err := store.Update(ctx, "things", id, map[string]any{"value": 2.5}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.Get(ctx, "things", id, &got); err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Value != 2.5 {
		t.Errorf("Value = %v, want 2.5", got.Value)
	}
	if got.Name != "alpha" {
		t.Errorf("partial update clobbered name: %q", got.Name)
	}

	if err := store.Delete(ctx, "things", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Get(ctx, "things", id, &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "things", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreFind(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	docs := []testDoc{
		{Owner: "o1", Name: "bravo", Value: 2},
		{Owner: "o1", Name: "alpha", Value: 1},
		{Owner: "o2", Name: "charlie", Value: 3},
	}
	for _, d := range docs {
		if _, err := store.Create(ctx, "things", d); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	var found []testDoc
	if err := store.Find(ctx, "things", Filter{"ownerId": "o1"}, &FindOptions{SortField: "name"}, &found); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("len = %d, want 2", len(found))
	}
	if found[0].Name != "alpha" || found[1].Name != "bravo" {
		t.Errorf("sort order = %s, %s", found[0].Name, found[1].Name)
	}

	if err := store.Find(ctx, "things", nil, &FindOptions{SortField: "value", SortDesc: true, Limit: 1}, &found); err != nil {
		t.Fatalf("Find desc: %v", err)
	}
	if len(found) != 1 || found[0].Name != "charlie" {
		t.Errorf("desc limit 1 = %+v", found)
	}

	if err := store.Find(ctx, "things", Filter{"ownerId": "nobody"}, nil, &found); err != nil {
		t.Fatalf("Find empty: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("len = %d, want 0", len(found))
	}
}

func TestMemoryStoreBatchWriteAtomicity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Create(ctx, "things", testDoc{Owner: "o1", Name: "alpha", Value: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Second op targets a document that does not exist; the first must not
	// be applied either.
	err = store.BatchWrite(ctx, []Operation{
		{Kind: OpUpdate, Collection: "things", ID: id, Fields: map[string]any{"value": 99}},
		{Kind: OpUpdate, Collection: "things", ID: "missing", Fields: map[string]any{"value": 1}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("BatchWrite = %v, want ErrNotFound", err)
	}

	var got testDoc
	if err := store.Get(ctx, "things", id, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Value != 1 {
		t.Errorf("Value = %v, partial batch applied", got.Value)
	}

	// A valid batch applies everything.
	err = store.BatchWrite(ctx, []Operation{
		{Kind: OpUpdate, Collection: "things", ID: id, Fields: map[string]any{"value": 7}},
		{Kind: OpCreate, Collection: "things", Doc: testDoc{Owner: "o1", Name: "bravo"}},
	})
	if err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}
	var all []testDoc
	if err := store.Find(ctx, "things", nil, nil, &all); err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len = %d, want 2", len(all))
	}
}

func TestMemoryStoreWatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var seen []testDoc
	stop, err := store.Watch(ctx, "things", Filter{"ownerId": "o1"}, func(change Change) {
		var doc testDoc
		if err := change.Decode(&doc); err != nil {
			t.Errorf("Decode: %v", err)
			return
		}
		seen = append(seen, doc)
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	id, err := store.Create(ctx, "things", testDoc{Owner: "o1", Name: "alpha"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "things", testDoc{Owner: "o2", Name: "filtered out"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Update(ctx, "things", id, map[string]any{"value": 4}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("seen = %d changes, want 2", len(seen))
	}
	if seen[0].Name != "alpha" || seen[1].Value != 4 {
		t.Errorf("changes = %+v", seen)
	}

	stop()
	if err := store.Update(ctx, "things", id, map[string]any{"value": 5}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(seen) != 2 {
		t.Error("watcher fired after stop")
	}
}
