package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stackhealth/pkg/health"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// Defaults for unset [MongoConfig] fields.
const (
	DefaultDatabase   = "stackhealth"
	DefaultCollection = "records"
)

// MongoStore keeps one document per component, keyed by its package URL.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// document is the stored shape. The record is kept as a nested document so
// it can be queried from the mongo shell.
type document struct {
	ID         string    `bson:"_id"`
	Type       string    `bson:"type"`
	Namespace  string    `bson:"namespace,omitempty"`
	Name       string    `bson:"name"`
	Version    string    `bson:"version,omitempty"`
	AnalyzedAt time.Time `bson:"analyzed_at"`
	Record     bson.M    `bson:"record"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Save upserts the entry under the record's package URL.
func (s *MongoStore) Save(ctx context.Context, e Entry) error {
	doc, err := toDocument(e)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s: %w", doc.ID, err)
	}
	return nil
}

// Load returns the entry stored for id.
func (s *MongoStore) Load(ctx context.Context, id health.Identity) (Entry, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load %s: %w", id, err)
	}
	return fromDocument(doc)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(e Entry) (document, error) {
	id := e.Record.Identity()
	data, err := json.Marshal(e.Record)
	if err != nil {
		return document{}, fmt.Errorf("encode record: %w", err)
	}
	var rec bson.M
	if err := bson.UnmarshalExtJSON(data, false, &rec); err != nil {
		return document{}, fmt.Errorf("convert record: %w", err)
	}
	return document{
		ID:         id.String(),
		Type:       id.Type,
		Namespace:  id.Namespace,
		Name:       id.Name,
		Version:    id.Version,
		AnalyzedAt: e.AnalyzedAt.UTC(),
		Record:     rec,
	}, nil
}

func fromDocument(doc document) (Entry, error) {
	data, err := bson.MarshalExtJSON(doc.Record, false, false)
	if err != nil {
		return Entry{}, fmt.Errorf("convert record: %w", err)
	}
	var rec health.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Entry{}, fmt.Errorf("decode record: %w", err)
	}
	return Entry{Record: rec, AnalyzedAt: doc.AnalyzedAt}, nil
}

var _ Store = (*MongoStore)(nil)
