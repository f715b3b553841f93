package lockfile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	zerrors "github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/tree"
)

// mongoLock is the stored document. The tree is kept as its JSON encoding
// because its group-keyed layout does not map onto BSON field ordering.
type mongoLock struct {
	ID            string    `bson:"_id"`
	FormatVersion int       `bson:"format_version"`
	Name          string    `bson:"name,omitempty"`
	Version       string    `bson:"version,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	Nodes         int       `bson:"nodes"`
	Tree          string    `bson:"tree"`
}

// MongoStore keeps locks in a MongoDB collection keyed by lock ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses database.collection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, zerrors.Wrap(zerrors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, zerrors.Wrap(zerrors.ErrCodeNetwork, err, "ping mongodb")
	}

	s := &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
	_, err = s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) Save(ctx context.Context, l *Lock) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	doc, err := toDocument(l)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": l.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Load(ctx context.Context, id string) (*Lock, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var doc mongoLock
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(&doc)
}

// Latest returns the most recent lock saved for a package name.
func (s *MongoStore) Latest(ctx context.Context, name string) (*Lock, error) {
	var doc mongoLock
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := s.coll.FindOne(ctx, bson.M{"name": name}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, zerrors.New(zerrors.ErrCodeNotFound, "no lock for %s", name)
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(&doc)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(l *Lock) (*mongoLock, error) {
	data, err := json.Marshal(l.Tree)
	if err != nil {
		return nil, err
	}
	return &mongoLock{
		ID:            l.ID,
		FormatVersion: l.FormatVersion,
		Name:          l.Name,
		Version:       l.Version,
		CreatedAt:     l.CreatedAt,
		Nodes:         l.Nodes,
		Tree:          string(data),
	}, nil
}

func fromDocument(doc *mongoLock) (*Lock, error) {
	var t tree.Tree
	if err := json.Unmarshal([]byte(doc.Tree), &t); err != nil {
		return nil, zerrors.Wrap(zerrors.ErrCodeInvalidFormat, err, "decode lock %s", doc.ID)
	}
	if t == nil {
		t = tree.Tree{}
	}
	return &Lock{
		ID:            doc.ID,
		FormatVersion: doc.FormatVersion,
		Name:          doc.Name,
		Version:       doc.Version,
		CreatedAt:     doc.CreatedAt,
		Nodes:         doc.Nodes,
		Tree:          t,
	}, nil
}

var _ Store = (*MongoStore)(nil)
