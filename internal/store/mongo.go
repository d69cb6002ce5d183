package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Tree = (*Mongo)(nil)

// Mongo maps users/{uid}/... onto collection "users", document _id {uid}, and
// the remaining segments onto a dotted field path. Update batches touch a single
// document, so MongoDB applies them atomically.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func fieldPath(segs []string) string {
	return strings.Join(segs[2:], ".")
}

func (s *Mongo) Set(ctx context.Context, path string, value any) error {
	segs, err := Split(path)
	if err != nil {
		return err
	}
	v, err := normalize(value)
	if err != nil {
		return err
	}
	if v == nil {
		return s.Delete(ctx, path)
	}
	col := s.db.Collection(segs[0])
	filter := bson.M{"_id": segs[1]}

	if len(segs) == 2 {
		doc, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: document %s/%s must be an object", ErrUnsupportedValue, segs[0], segs[1])
		}
		replacement := bsonValue(doc).(bson.M)
		replacement["_id"] = segs[1]
		if _, err := col.ReplaceOne(ctx, filter, replacement, options.Replace().SetUpsert(true)); err != nil {
			return fmt.Errorf("failed to replace %s: %w", path, err)
		}
		return nil
	}

	update := bson.M{"$set": bson.M{fieldPath(segs): bsonValue(v)}}
	if _, err := col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

func (s *Mongo) Get(ctx context.Context, path string) (any, bool, error) {
	segs, err := Split(path)
	if err != nil {
		return nil, false, err
	}
	col := s.db.Collection(segs[0])

	opts := options.FindOne()
	if len(segs) > 2 {
		opts.SetProjection(bson.M{fieldPath(segs): 1})
	}

	var raw bson.M
	err = col.FindOne(ctx, bson.M{"_id": segs[1]}, opts).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", path, err)
	}
	delete(raw, "_id")

	n, err := normalize(raw)
	if err != nil {
		return nil, false, err
	}
	doc, _ := n.(map[string]any)
	if doc == nil {
		return nil, false, nil
	}
	v, ok := getNode(doc, segs[2:])
	return v, ok, nil
}

// updateDoc builds the $set/$unset document for an Update batch.
func updateDoc(values map[string]any, fields map[string][]string) (bson.M, error) {
	set := bson.M{}
	unset := bson.M{}
	for p, v := range values {
		n, err := normalize(v)
		if err != nil {
			return nil, err
		}
		if n == nil {
			unset[fieldPath(fields[p])] = ""
			continue
		}
		set[fieldPath(fields[p])] = bsonValue(n)
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}

func (s *Mongo) Update(ctx context.Context, values map[string]any) error {
	doc, fields, err := splitUpdate(values)
	if err != nil || len(fields) == 0 {
		return err
	}
	update, err := updateDoc(values, fields)
	if err != nil {
		return err
	}

	col := s.db.Collection(doc[0])
	if _, err := col.UpdateOne(ctx, bson.M{"_id": doc[1]}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", doc[0], doc[1], err)
	}
	return nil
}

// UpdateExisting matches on the parent field existing and never upserts, so a
// concurrent delete leaves nothing behind.
func (s *Mongo) UpdateExisting(ctx context.Context, parent string, values map[string]any) error {
	parentSegs, doc, fields, err := splitGuarded(parent, values)
	if err != nil {
		return err
	}
	update, err := updateDoc(values, fields)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": doc[1]}
	if len(parentSegs) > 2 {
		filter[fieldPath(parentSegs)] = bson.M{"$exists": true}
	}
	col := s.db.Collection(doc[0])
	if len(update) == 0 {
		n, err := col.CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", parent, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	}
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", parent, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) Delete(ctx context.Context, path string) error {
	segs, err := Split(path)
	if err != nil {
		return err
	}
	col := s.db.Collection(segs[0])
	filter := bson.M{"_id": segs[1]}

	if len(segs) == 2 {
		if _, err := col.DeleteOne(ctx, filter); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
		return nil
	}
	if _, err := col.UpdateOne(ctx, filter, bson.M{"$unset": bson.M{fieldPath(segs): ""}}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *Mongo) PushID(ctx context.Context, parent string) (string, error) {
	return newChildID(parent)
}
