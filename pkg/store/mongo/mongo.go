// Package mongo provides a store.Store backed by MongoDB.
//
// Members live in the "members" collection keyed by _id; each view
// configuration key is one document {_id: key, value: "..."} in the
// "config" collection.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "kintree"

// Config holds MongoDB connection settings.
type Config struct {
	URI      string
	Database string
}

// Store is a MongoDB-backed store.Store.
type Store struct {
	client  *mongo.Client
	members *mongo.Collection
	config  *mongo.Collection
}

type configDoc struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(cfg.Database)
	return &Store{
		client:  client,
		members: db.Collection("members"),
		config:  db.Collection("config"),
	}, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	cur, err := s.members.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	var out []family.Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	store.SortMembers(out)
	return out, nil
}

func (s *Store) GetMember(ctx context.Context, id family.ID) (family.Member, error) {
	var m family.Member
	err := s.members.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return family.Member{}, store.NotFound(id)
	}
	if err != nil {
		return family.Member{}, fmt.Errorf("find member %s: %w", id, err)
	}
	return m, nil
}

func (s *Store) PutMember(ctx context.Context, m family.Member) error {
	_, err := s.members.ReplaceOne(ctx, bson.M{"_id": string(m.ID)}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert member %s: %w", m.ID, err)
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id family.ID) error {
	res, err := s.members.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return fmt.Errorf("delete member %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound(id)
	}
	return nil
}

func (s *Store) Config(ctx context.Context) (viewconfig.Values, error) {
	cur, err := s.config.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find config: %w", err)
	}
	var docs []configDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	values := make(viewconfig.Values, len(docs))
	for _, d := range docs {
		values[d.Key] = d.Value
	}
	return values, nil
}

func (s *Store) PatchConfig(ctx context.Context, p viewconfig.Patch) error {
	for k, v := range p.Sanitize() {
		var err error
		if v == "" {
			_, err = s.config.DeleteOne(ctx, bson.M{"_id": k})
		} else {
			_, err = s.config.ReplaceOne(ctx, bson.M{"_id": k}, configDoc{Key: k, Value: v},
				options.Replace().SetUpsert(true))
		}
		if err != nil {
			return fmt.Errorf("patch config %s: %w", k, err)
		}
	}
	return nil
}

// Drop removes both collections. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.members.Drop(ctx); err != nil {
		return err
	}
	return s.config.Drop(ctx)
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ store.Store = (*Store)(nil)
