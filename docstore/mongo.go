package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoDriver stores documents in MongoDB collections. The document id is
// written to _id so the primary key is the only identity.
type MongoDriver struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri and selects database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoDriver, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &MongoDriver{client: client, db: client.Database(database)}, nil
}

func (m *MongoDriver) Name() string { return "mongodb" }

func (m *MongoDriver) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoDriver) Close() error {
	return m.client.Disconnect(context.Background())
}

func (m *MongoDriver) Ensure(ctx context.Context, coll string, unique []string) error {
	if err := checkIdent("collection", coll); err != nil {
		return err
	}
	if len(unique) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, 0, len(unique))
	for _, field := range unique {
		if err := checkIdent("field", field); err != nil {
			return err
		}
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_uniq"),
		})
	}
	if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("index %s: %w", coll, err)
	}
	return nil
}

func (m *MongoDriver) All(ctx context.Context, coll string) ([][]byte, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	cur, err := m.db.Collection(coll).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeCursor(ctx, cur)
}

func (m *MongoDriver) Get(ctx context.Context, coll, id string) ([]byte, error) {
	raw, err := m.db.Collection(coll).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, err
	}
	return fromBSON(raw)
}

func (m *MongoDriver) Find(ctx context.Context, coll, field, value string) ([][]byte, error) {
	if err := checkIdent("field", field); err != nil {
		return nil, err
	}
	cur, err := m.db.Collection(coll).Find(ctx, bson.D{{Key: field, Value: value}})
	if err != nil {
		return nil, err
	}
	return decodeCursor(ctx, cur)
}

func (m *MongoDriver) Insert(ctx context.Context, coll, id string, doc []byte) error {
	d, err := toBSON(id, doc)
	if err != nil {
		return err
	}
	if _, err := m.db.Collection(coll).InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return err
	}
	return nil
}

func (m *MongoDriver) Replace(ctx context.Context, coll, id string, doc []byte) (bool, error) {
	d, err := toBSON(id, doc)
	if err != nil {
		return false, err
	}
	res, err := m.db.Collection(coll).ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, d)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (m *MongoDriver) Delete(ctx context.Context, coll, id string) (bool, error) {
	res, err := m.db.Collection(coll).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// toBSON converts a JSON document to BSON through relaxed extended JSON and
// prepends the _id field.
func toBSON(id string, doc []byte) (bson.D, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON(doc, false, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	out := make(bson.D, 0, len(d)+1)
	out = append(out, bson.E{Key: "_id", Value: id})
	for _, e := range d {
		if e.Key == "_id" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// fromBSON renders a stored document back to JSON. The _id key is left in
// place; JSON decoding into the entity types ignores it.
func fromBSON(raw bson.Raw) ([]byte, error) {
	return bson.MarshalExtJSON(raw, false, false)
}

func decodeCursor(ctx context.Context, cur *mongo.Cursor) ([][]byte, error) {
	defer cur.Close(ctx)
	var docs [][]byte
	for cur.Next(ctx) {
		doc, err := fromBSON(cur.Current)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
