// Package docstore defines the generic document-store contract the core
// services persist through. Every record lives in a named collection, is
// addressed by an opaque string id, and is scoped to an owner by a filter
// field the caller supplies on every query.
package docstore

import "context"

// ErrNotFound reports that the addressed document does not exist.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "docstore: document not found" }

// Filter is an equality match on document fields. Field names follow the
// stored document (bson/json tag names).
type Filter map[string]any

// FindOptions controls ordering and truncation of Find results.
type FindOptions struct {
	SortField string
	SortDesc  bool
	Limit     int64
}

// OpKind selects the effect of a batch operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Operation is one element of an atomic BatchWrite. Doc is used by creates,
// Fields by updates, ID by updates and deletes.
type Operation struct {
	Kind       OpKind
	Collection string
	ID         string
	Doc        any
	Fields     map[string]any
}

// Change is one document mutation delivered by Watch. Decode unmarshals the
// post-change document into out.
type Change struct {
	Collection string
	ID         string
	decode     func(out any) error
}

// Decode unmarshals the changed document into out.
func (c Change) Decode(out any) error { return c.decode(out) }

// NewChange builds a Change with the given decode function. Implementations
// of Store use it; consumers only call Decode.
func NewChange(collection, id string, decode func(out any) error) Change {
	return Change{Collection: collection, ID: id, decode: decode}
}

// Store is the document-store collaborator of the core services.
//
// Create returns the id assigned to the stored document. Update applies a
// partial field set. Find decodes every match into out, which must be a
// pointer to a slice. BatchWrite applies all operations atomically: either
// every operation takes effect or none does. Watch invokes fn for every
// subsequent create or update of a matching document until stop is called or
// ctx ends; implementations that cannot watch return an error.
type Store interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	Get(ctx context.Context, collection, id string, out any) error
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error
	BatchWrite(ctx context.Context, ops []Operation) error
	Watch(ctx context.Context, collection string, filter Filter, fn func(Change)) (stop func(), err error)
}
