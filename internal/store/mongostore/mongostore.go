// Package mongostore writes cards into a MongoDB collection.
//
// Documents use the field names of the application's card model:
// _id (string), name, type, rarity, image (BinData subtype 0), dateAdded (Date).
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/JonMunkholm/cardmigrate/internal/core"
	"github.com/JonMunkholm/cardmigrate/internal/store"
)

func init() {
	store.Register(store.Driver{
		Name:        "mongo",
		Description: "MongoDB collection (STORE_URL is a mongodb:// URI)",
		Open: func(ctx context.Context, opts store.Options) (store.Handle, error) {
			return Open(ctx, opts)
		},
	})
}

// Store is a MongoDB-backed target. One client is shared by all writes.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to the server and verifies it is reachable.
func Open(ctx context.Context, opts store.Options) (*Store, error) {
	clientOpts := options.Client().ApplyURI(opts.URL)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(opts.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	collection := opts.Collection
	if collection == "" {
		collection = core.DefaultCollection
	}

	return &Store{
		client: client,
		coll:   client.Database(opts.Database).Collection(collection),
	}, nil
}

// Upsert replaces the document whose _id is id, or creates it.
// The replacement holds only the fields the row produced.
func (s *Store) Upsert(ctx context.Context, id string, doc core.StoredDocument) error {
	filter := bson.D{{Key: "_id", Value: id}}
	_, err := s.coll.ReplaceOne(ctx, filter, Document(doc), options.Replace().SetUpsert(true))
	return err
}

// Insert adds a document and returns the ObjectID the driver generated, in hex.
func (s *Store) Insert(ctx context.Context, doc core.StoredDocument) (string, error) {
	res, err := s.coll.InsertOne(ctx, Document(doc))
	if err != nil {
		return "", err
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprint(id), nil
	}
}

// Target returns "database.collection".
func (s *Store) Target() string {
	return s.coll.Database().Name() + "." + s.coll.Name()
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Document builds the BSON body for doc, without _id.
// Fields that are not set are left out entirely.
func Document(doc core.StoredDocument) bson.D {
	d := bson.D{}
	if doc.Name != nil {
		d = append(d, bson.E{Key: "name", Value: *doc.Name})
	}
	if doc.Type != nil {
		d = append(d, bson.E{Key: "type", Value: *doc.Type})
	}
	if doc.Rarity != nil {
		d = append(d, bson.E{Key: "rarity", Value: *doc.Rarity})
	}
	if doc.Image != nil {
		d = append(d, bson.E{Key: "image", Value: primitive.Binary{Subtype: bson.TypeBinaryGeneric, Data: doc.Image}})
	}
	if doc.DateAdded != nil {
		d = append(d, bson.E{Key: "dateAdded", Value: primitive.NewDateTimeFromTime(*doc.DateAdded)})
	}
	return d
}
