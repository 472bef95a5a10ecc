// Package mongodb keeps ledger collections as documents in MongoDB.
// Transactions use driver sessions and need a replica set deployment.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ricemill/internal/core/tx"
	"ricemill/internal/domain/store"
)

const collName = "ledger_collections"

var (
	_ store.Backend = (*Backend)(nil)
	_ tx.Manager    = (*Backend)(nil)
)

// Backend implements store.Backend and tx.Manager.
type Backend struct {
	client *mongo.Client
	dbName string
}

type collectionDoc struct {
	Name      string    `bson:"_id"`
	Items     string    `bson:"items"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Backend{client: client, dbName: dbName}, nil
}

func (b *Backend) coll() *mongo.Collection {
	return b.client.Database(b.dbName).Collection(collName)
}

// Get returns nil when the collection document does not exist.
func (b *Backend) Get(ctx context.Context, c store.Collection) ([]byte, error) {
	var doc collectionDoc
	err := b.coll().FindOne(ctx, bson.M{"_id": string(c)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c, err)
	}
	return []byte(doc.Items), nil
}

// Set upserts the collection document.
func (b *Backend) Set(ctx context.Context, c store.Collection, data []byte) error {
	_, err := b.coll().UpdateOne(ctx,
		bson.M{"_id": string(c)},
		bson.M{"$set": bson.M{"items": string(data), "updatedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", c, err)
	}
	return nil
}

// RunInTransaction runs fn in a session transaction. The driver may
// retry fn on transient errors, so fn must only touch the store.
func (b *Backend) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := b.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Ping checks the primary.
func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (b *Backend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
