// Package mongostore implements docstore.Store on MongoDB. Each docstore
// collection maps to a Mongo collection and the document id to _id.
// Commits run as multi-document transactions, which require a replica set.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	return findByID(ctx, s.db.Collection(collection), collection, id)
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	filter, findOpts, err := buildFind(q)
	if err != nil {
		return nil, err
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]docstore.Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, toDocument(collection, raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) Commit(ctx context.Context, writes []docstore.Write, preconditions []docstore.Precondition) error {
	if err := docstore.ValidateWrites(writes); err != nil {
		return err
	}

	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// WithTransaction re-runs the callback on transient write conflicts, so the
	// preconditions are re-evaluated against the state that finally commits.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, p := range preconditions {
			doc, err := findByID(sc, s.db.Collection(p.Collection), p.Collection, p.ID)
			if err != nil && !errors.Is(err, docstore.ErrNotFound) {
				return nil, err
			}
			if !p.Holds(doc) {
				return nil, fmt.Errorf("%w: %s/%s", docstore.ErrConflict, p.Collection, p.ID)
			}
		}
		for _, w := range writes {
			if err := applyWrite(sc, s.db.Collection(w.Collection), w); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", docstore.ErrConflict, err)
		}
		return err
	}
	return nil
}

func findByID(ctx context.Context, coll *mongo.Collection, collection, id string) (*docstore.Document, error) {
	var raw bson.M
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	doc := toDocument(collection, raw)
	return &doc, nil
}

func applyWrite(ctx context.Context, coll *mongo.Collection, w docstore.Write) error {
	switch w.Op {
	case docstore.OpCreate:
		doc := toBSON(w.Fields)
		doc["_id"] = w.ID
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("%w: %s/%s already exists", docstore.ErrConflict, w.Collection, w.ID)
			}
			return err
		}
	case docstore.OpSet:
		doc := toBSON(w.Fields)
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": w.ID}, doc, options.Replace().SetUpsert(true)); err != nil {
			return err
		}
	case docstore.OpUpdate:
		result, err := coll.UpdateOne(ctx, bson.M{"_id": w.ID}, bson.M{"$set": toBSON(w.Fields)})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("%w: %s/%s does not exist", docstore.ErrConflict, w.Collection, w.ID)
		}
	}
	return nil
}

func buildFind(q docstore.Query) (bson.D, *options.FindOptions, error) {
	if err := q.Validate(); err != nil {
		return nil, nil, err
	}

	filter := bson.D{}
	for _, f := range q.Filters {
		value := docstore.Normalize(f.Value)
		switch f.Op {
		case docstore.OpEqual:
			filter = append(filter, bson.E{Key: f.Field, Value: value})
		case docstore.OpGreaterOrEqual:
			filter = append(filter, bson.E{Key: f.Field, Value: bson.M{"$gte": value}})
		}
	}

	findOpts := options.Find()
	if q.OrderBy != "" {
		findOpts.SetSort(bson.D{{Key: q.OrderBy, Value: 1}, {Key: "_id", Value: 1}})
	} else {
		findOpts.SetSort(bson.D{{Key: "_id", Value: 1}})
	}
	if q.Limit > 0 {
		findOpts.SetLimit(int64(q.Limit))
	}
	return filter, findOpts, nil
}

func toBSON(fields map[string]any) bson.M {
	out := make(bson.M, len(fields))
	for k, v := range fields {
		out[k] = docstore.Normalize(v)
	}
	return out
}

func toDocument(collection string, raw bson.M) docstore.Document {
	id := fmt.Sprint(raw["_id"])
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = fromBSON(v)
	}
	return docstore.Document{Collection: collection, ID: id, Fields: fields}
}

func fromBSON(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC()
	default:
		return docstore.Normalize(v)
	}
}
