// Package mongo stores users, categories and transactions in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"findash/internal/shared/timezone"
)

const (
	transactionsCollection = "transactions"
	categoriesCollection   = "categories"
	usersCollection        = "users"
	countersCollection     = "counters"
)

type Client struct {
	client *mongo.Client
	db     *mongo.Database
	// zone is the IANA name passed to $year and $month.
	zone string
}

// Connect dials uri and verifies the deployment is reachable.
func Connect(ctx context.Context, uri, database string, loc *time.Location) (*Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, classify("failed to connect to mongo", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, classify("failed to ping mongo", err)
	}

	return &Client{
		client: client,
		db:     client.Database(database),
		zone:   timezone.Name(loc),
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return classify("ping", c.client.Ping(ctx, nil))
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on for ordering
// and uniqueness. It is idempotent.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		transactionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "categoryId", Value: 1}}},
		},
		categoriesCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}, {Key: "type", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range indexes {
		if _, err := c.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return classify(fmt.Sprintf("failed to create %s indexes", coll), err)
		}
	}
	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}
