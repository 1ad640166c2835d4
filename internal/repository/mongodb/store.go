// Package mongodb backs the docstore contract with MongoDB. BatchWrite maps
// to a session transaction and Watch to a change stream, so the deployment
// must be a replica set (Atlas is).
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/prepflow/backoffice/internal/repository/docstore"
)

// Store implements docstore.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri, dbName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName), logger: logger}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// docID accepts both ObjectID hex strings and plain string ids.
func docID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func formatID(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// Create inserts the document and returns the assigned id.
func (s *Store) Create(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return formatID(res.InsertedID), nil
}

// Get decodes the addressed document into out.
func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": docID(id)}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update applies a partial field set with $set.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	res, err := s.db.Collection(collection).UpdateByID(ctx, docID(id), bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Delete removes the addressed document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": docID(id)})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Find decodes every matching document into out.
func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter, opts *docstore.FindOptions, out any) error {
	query := bson.M{}
	for key, value := range filter {
		query[key] = value
	}

	findOpts := options.Find()
	if opts != nil {
		if opts.SortField != "" {
			dir := 1
			if opts.SortDesc {
				dir = -1
			}
			findOpts.SetSort(bson.D{{Key: opts.SortField, Value: dir}})
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, findOpts)
	if err != nil {
		return fmt.Errorf("find in %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode results from %s: %w", collection, err)
	}
	return nil
}

// BatchWrite applies all operations inside one session transaction.
func (s *Store) BatchWrite(ctx context.Context, ops []docstore.Operation) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		for _, op := range ops {
			coll := s.db.Collection(op.Collection)
			switch op.Kind {
			case docstore.OpCreate:
				if _, err := coll.InsertOne(sc, op.Doc); err != nil {
					return nil, fmt.Errorf("batch insert into %s: %w", op.Collection, err)
				}
			case docstore.OpUpdate:
				res, err := coll.UpdateByID(sc, docID(op.ID), bson.M{"$set": op.Fields})
				if err != nil {
					return nil, fmt.Errorf("batch update %s/%s: %w", op.Collection, op.ID, err)
				}
				if res.MatchedCount == 0 {
					return nil, fmt.Errorf("batch update %s/%s: %w", op.Collection, op.ID, docstore.ErrNotFound)
				}
			case docstore.OpDelete:
				res, err := coll.DeleteOne(sc, bson.M{"_id": docID(op.ID)})
				if err != nil {
					return nil, fmt.Errorf("batch delete %s/%s: %w", op.Collection, op.ID, err)
				}
				if res.DeletedCount == 0 {
					return nil, fmt.Errorf("batch delete %s/%s: %w", op.Collection, op.ID, docstore.ErrNotFound)
				}
			default:
				return nil, fmt.Errorf("batch write: unknown operation kind %q", op.Kind)
			}
		}
		return nil, nil
	})
	return err
}

// Watch follows the collection's change stream and invokes fn for every
// insert, update or replace whose post-change document matches filter.
func (s *Store) Watch(ctx context.Context, collection string, filter docstore.Filter, fn func(docstore.Change)) (func(), error) {
	match := bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace"}}}
	for key, value := range filter {
		match["fullDocument."+key] = value
	}
	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := s.db.Collection(collection).Watch(streamCtx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}

	go func() {
		defer func() { _ = stream.Close(context.Background()) }()
		for stream.Next(streamCtx) {
			var event struct {
				DocumentKey struct {
					ID any `bson:"_id"`
				} `bson:"documentKey"`
				FullDocument bson.Raw `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				s.logger.Error("decode change stream event", zap.String("collection", collection), zap.Error(err))
				continue
			}
			if event.FullDocument == nil {
				continue
			}
			doc := event.FullDocument
			fn(docstore.NewChange(collection, formatID(event.DocumentKey.ID), func(out any) error {
				return bson.Unmarshal(doc, out)
			}))
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			s.logger.Error("change stream terminated", zap.String("collection", collection), zap.Error(err))
		}
	}()

	return cancel, nil
}
