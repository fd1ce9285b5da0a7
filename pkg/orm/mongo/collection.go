package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

type document struct {
	Expires      *time.Time    `bson:"expires,omitempty"`
	LastModified *time.Time    `bson:"last_modified,omitempty"`
	Session      bson.RawValue `bson:"session"`
	SID          string        `bson:"sid"`
	HasExpires   bool          `bson:"has_expires"`
}

// Collection is an orm.Collection over a MongoDB collection.
type Collection struct {
	coll  *mongo.Collection
	model orm.Model
}

// NewCollection adopts an existing collection handle.
func NewCollection(coll *mongo.Collection, model orm.Model) *Collection {
	return &Collection{coll: coll, model: model}
}

func (c *Collection) Ping(ctx context.Context) error {
	return c.coll.Database().Client().Ping(ctx, nil)
}

func (c *Collection) FindOne(ctx context.Context, where orm.Condition) (*orm.Record, error) {
	filter, err := Filter(where)
	if err != nil {
		return nil, err
	}

	var doc document
	err = c.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	payload, err := decodePayload(doc.Session)
	if err != nil {
		return nil, err
	}
	return &orm.Record{
		SID:          doc.SID,
		Session:      payload,
		Expires:      doc.Expires,
		HasExpires:   doc.HasExpires,
		LastModified: doc.LastModified,
	}, nil
}

func (c *Collection) Update(ctx context.Context, where orm.Condition, patch orm.Patch) (int64, error) {
	filter, err := Filter(where)
	if err != nil {
		return 0, err
	}
	set := Set(patch)
	if len(set) == 0 {
		return c.Count(ctx, where)
	}

	res, err := c.coll.UpdateMany(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *Collection) Create(ctx context.Context, rec orm.Record) error {
	if err := c.model.BeforeValidate(&rec); err != nil {
		return err
	}

	doc := bson.D{
		{Key: string(orm.FieldSID), Value: rec.SID},
		{Key: string(orm.FieldSession), Value: rec.Session},
		{Key: string(orm.FieldHasExpires), Value: rec.HasExpires},
	}
	if rec.Expires != nil {
		doc = append(doc, bson.E{Key: string(orm.FieldExpires), Value: *rec.Expires})
	}
	if rec.LastModified != nil {
		doc = append(doc, bson.E{Key: string(orm.FieldLastModified), Value: *rec.LastModified})
	}

	_, err := c.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(orm.ErrDuplicateSID, err)
	}
	return err
}

func (c *Collection) Destroy(ctx context.Context, where orm.Condition) (int64, error) {
	filter, err := Filter(where)
	if err != nil {
		return 0, err
	}
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *Collection) Count(ctx context.Context, where orm.Condition) (int64, error) {
	filter, err := Filter(where)
	if err != nil {
		return 0, err
	}
	return c.coll.CountDocuments(ctx, filter)
}

// Drop removes all documents but keeps the collection and its indexes.
func (c *Collection) Drop(ctx context.Context) error {
	_, err := c.coll.DeleteMany(ctx, bson.D{})
	return err
}

var _ orm.Collection = (*Collection)(nil)
