package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests. Documents are held as
// JSON, which mirrors the loose typing of the hosted document database
// closely enough for the services under test.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string][]byte
	watchers    []*memoryWatcher
	nextWatchID int
}

type memoryWatcher struct {
	id         int
	collection string
	filter     Filter
	fn         func(Change)
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func encodeDoc(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	return fields, nil
}

// normalize passes a value through JSON so typed Go values compare equal to
// their stored representation.
func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func matches(fields map[string]any, filter Filter) bool {
	for key, want := range filter {
		if !reflect.DeepEqual(normalize(fields[key]), normalize(want)) {
			return false
		}
	}
	return true
}

// Create stores the document under a fresh id and returns it.
func (s *MemoryStore) Create(ctx context.Context, collection string, doc any) (string, error) {
	fields, err := encodeDoc(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	fields["id"] = id
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string][]byte)
		s.collections[collection] = coll
	}
	coll[id] = raw
	s.mu.Unlock()

	s.notify(collection, id, raw)
	return id, nil
}

// Get decodes the addressed document into out.
func (s *MemoryStore) Get(ctx context.Context, collection, id string, out any) error {
	s.mu.Lock()
	raw, ok := s.collections[collection][id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

// Update merges the partial field set into the stored document.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	raw, err := s.applyUpdateLocked(collection, id, fields)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(collection, id, raw)
	return nil
}

func (s *MemoryStore) applyUpdateLocked(collection, id string, fields map[string]any) ([]byte, error) {
	raw, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for key, value := range fields {
		doc[key] = normalize(value)
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	s.collections[collection][id] = merged
	return merged, nil
}

// Delete removes the addressed document.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

// Find decodes every document matching filter into out, a pointer to a
// slice, honoring sort order and limit.
func (s *MemoryStore) Find(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error {
	type match struct {
		raw    []byte
		fields map[string]any
	}

	s.mu.Lock()
	var found []match
	for _, raw := range s.collections[collection] {
		fields := make(map[string]any)
		if err := json.Unmarshal(raw, &fields); err != nil {
			s.mu.Unlock()
			return err
		}
		if matches(fields, filter) {
			found = append(found, match{raw: raw, fields: fields})
		}
	}
	s.mu.Unlock()

	if opts != nil && opts.SortField != "" {
		field := opts.SortField
		sort.SliceStable(found, func(i, j int) bool {
			if opts.SortDesc {
				return lessValue(found[j].fields[field], found[i].fields[field])
			}
			return lessValue(found[i].fields[field], found[j].fields[field])
		})
	}
	if opts != nil && opts.Limit > 0 && int64(len(found)) > opts.Limit {
		found = found[:opts.Limit]
	}

	parts := make([]json.RawMessage, len(found))
	for i, m := range found {
		parts[i] = m.raw
	}
	raw, err := json.Marshal(parts)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// lessValue orders JSON scalars: numbers numerically, everything else by the
// string form. Time fields serialize as RFC 3339 strings, which order
// chronologically.
func lessValue(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// BatchWrite applies all operations or none. Every target is validated
// against a staged copy before anything is committed.
func (s *MemoryStore) BatchWrite(ctx context.Context, ops []Operation) error {
	type pending struct {
		collection string
		id         string
		raw        []byte
	}

	s.mu.Lock()
	// Stage onto copies so a failing operation leaves the store untouched.
	staged := make(map[string]map[string][]byte)
	for _, op := range ops {
		if staged[op.Collection] == nil {
			copied := make(map[string][]byte, len(s.collections[op.Collection]))
			for id, raw := range s.collections[op.Collection] {
				copied[id] = raw
			}
			staged[op.Collection] = copied
		}
	}

	var notifications []pending
	for _, op := range ops {
		coll := staged[op.Collection]
		switch op.Kind {
		case OpCreate:
			fields, err := encodeDoc(op.Doc)
			if err != nil {
				s.mu.Unlock()
				return err
			}
			id := uuid.NewString()
			fields["id"] = id
			raw, err := json.Marshal(fields)
			if err != nil {
				s.mu.Unlock()
				return err
			}
			coll[id] = raw
			notifications = append(notifications, pending{op.Collection, id, raw})
		case OpUpdate:
			raw, ok := coll[op.ID]
			if !ok {
				s.mu.Unlock()
				return fmt.Errorf("batch update %s/%s: %w", op.Collection, op.ID, ErrNotFound)
			}
			doc := make(map[string]any)
			if err := json.Unmarshal(raw, &doc); err != nil {
				s.mu.Unlock()
				return err
			}
			for key, value := range op.Fields {
				doc[key] = normalize(value)
			}
			merged, err := json.Marshal(doc)
			if err != nil {
				s.mu.Unlock()
				return err
			}
			coll[op.ID] = merged
			notifications = append(notifications, pending{op.Collection, op.ID, merged})
		case OpDelete:
			if _, ok := coll[op.ID]; !ok {
				s.mu.Unlock()
				return fmt.Errorf("batch delete %s/%s: %w", op.Collection, op.ID, ErrNotFound)
			}
			delete(coll, op.ID)
		default:
			s.mu.Unlock()
			return fmt.Errorf("batch write: unknown operation kind %q", op.Kind)
		}
	}

	for collection, coll := range staged {
		s.collections[collection] = coll
	}
	s.mu.Unlock()

	for _, n := range notifications {
		s.notify(n.collection, n.id, n.raw)
	}
	return nil
}

// Watch registers fn for every subsequent create or update in the
// collection whose document matches filter.
func (s *MemoryStore) Watch(ctx context.Context, collection string, filter Filter, fn func(Change)) (func(), error) {
	s.mu.Lock()
	s.nextWatchID++
	w := &memoryWatcher{id: s.nextWatchID, collection: collection, filter: filter, fn: fn}
	s.watchers = append(s.watchers, w)
	s.mu.Unlock()

	stop := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.watchers {
			if existing.id == w.id {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				return
			}
		}
	}
	return stop, nil
}

func (s *MemoryStore) notify(collection, id string, raw []byte) {
	s.mu.Lock()
	subs := make([]*memoryWatcher, 0, len(s.watchers))
	subs = append(subs, s.watchers...)
	s.mu.Unlock()

	for _, w := range subs {
		if w.collection != collection {
			continue
		}
		if len(w.filter) > 0 {
			fields := make(map[string]any)
			if err := json.Unmarshal(raw, &fields); err != nil || !matches(fields, w.filter) {
				continue
			}
		}
		doc := raw
		w.fn(NewChange(collection, id, func(out any) error {
			return json.Unmarshal(doc, out)
		}))
	}
}
