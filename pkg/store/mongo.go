package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	nverrors "github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/session"
	"github.com/matzehuels/netview/pkg/snapshot"
)

// Collection names.
const (
	CollectionSessions = "sessions"
	CollectionConfig   = "config"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "netview"

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	Logger *log.Logger
}

// MongoStore keeps one document per session. Snapshot operations update the
// document in place.
type MongoStore struct {
	client   *mongo.Client
	sessions *mongo.Collection
	config   *mongo.Collection
	owned    bool
	log      *log.Logger
}

// NewMongoStore connects to uri and checks the connection.
func NewMongoStore(ctx context.Context, uri, database string, opts MongoOptions) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nverrors.Wrap(nverrors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, nverrors.Wrap(nverrors.ErrCodeStorage, err, "ping mongo")
	}
	s := NewMongoStoreFromClient(client, database, opts)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. Close leaves the client
// connected.
func NewMongoStoreFromClient(client *mongo.Client, database string, opts MongoOptions) *MongoStore {
	if database == "" {
		database = DefaultDatabase
	}
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		sessions: db.Collection(CollectionSessions),
		config:   db.Collection(CollectionConfig),
		log:      discardLogger(opts.Logger),
	}
}

// Backend implements Store.
func (s *MongoStore) Backend() string { return "mongo" }

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// =============================================================================
// Config
// =============================================================================

type configDoc struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// GetConfig implements Store.
func (s *MongoStore) GetConfig(ctx context.Context, key string) (raw json.RawMessage, ok bool, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "get_config", start, err) }()

	var doc configDoc
	err = s.config.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageError(err, "get config %s", key)
	}
	return json.RawMessage(doc.Value), true, nil
}

// PutConfig implements Store.
func (s *MongoStore) PutConfig(ctx context.Context, key string, value json.RawMessage) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "put_config", start, err) }()

	if !json.Valid(value) {
		return nverrors.New(nverrors.ErrCodeInvalidFormat, "config %s is not valid JSON", key)
	}
	_, err = s.config.ReplaceOne(ctx, bson.M{"_id": key}, configDoc{Key: key, Value: string(value)},
		options.Replace().SetUpsert(true))
	return storageError(err, "put config %s", key)
}

// =============================================================================
// Sessions
// =============================================================================

// SessionHeaders implements Store. Node and edge counts are computed by the
// server so the arrays never leave the database.
func (s *MongoStore) SessionHeaders(ctx context.Context) (hs []session.Header, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "list_sessions", start, err) }()

	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "updated_at", Value: 1},
			{Key: "snapshots", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$snapshots.name", bson.A{}}}}},
			{Key: "nodes", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$nodes", bson.A{}}}}}}},
			{Key: "edges", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$edges", bson.A{}}}}}}},
		}}},
	}
	cur, err := s.sessions.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storageError(err, "list sessions")
	}
	if err := cur.All(ctx, &hs); err != nil {
		return nil, storageError(err, "list sessions")
	}
	sortHeaders(hs)
	return hs, nil
}

// GetSession implements Store.
func (s *MongoStore) GetSession(ctx context.Context, id string) (sess *session.Session, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "get_session", start, err) }()

	if err := nverrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	var doc session.Session
	err = s.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sessionNotFound(id)
	}
	if err != nil {
		return nil, storageError(err, "get session %s", id)
	}
	return &doc, nil
}

// PutSession implements Store.
func (s *MongoStore) PutSession(ctx context.Context, sess *session.Session) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "put_session", start, err) }()

	if sess != nil && sess.ID == "" {
		sess.ID = session.GenerateID()
	}
	if err := sess.Validate(); err != nil {
		return err
	}
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	// $push needs an array, never null.
	doc := *sess
	if doc.Snapshots == nil {
		doc.Snapshots = []snapshot.Snapshot{}
	}
	_, err = s.sessions.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageError(err, "put session %s", doc.ID)
	}
	s.log.Debug("session stored", "id", doc.ID, "name", doc.Name, "backend", s.Backend())
	return nil
}

// DeleteSession implements Store.
func (s *MongoStore) DeleteSession(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "delete_session", start, err) }()

	res, err := s.sessions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageError(err, "delete session %s", id)
	}
	if res.DeletedCount == 0 {
		return sessionNotFound(id)
	}
	return nil
}

// =============================================================================
// Snapshots
// =============================================================================

// AppendSnapshot implements snapshot.Persister.
func (s *MongoStore) AppendSnapshot(ctx context.Context, id string, snap snapshot.Snapshot) (idx int, err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "append_snapshot", start, err) }()

	var doc struct {
		Snapshots []struct {
			Name string `bson:"name"`
		} `bson:"snapshots"`
	}
	err = s.sessions.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"snapshots": snap},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"snapshots.name": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return snapshot.None, sessionNotFound(id)
	}
	if err != nil {
		return snapshot.None, storageError(err, "append snapshot to %s", id)
	}
	return len(doc.Snapshots) - 1, nil
}

// RenameSnapshot implements snapshot.Persister.
func (s *MongoStore) RenameSnapshot(ctx context.Context, id string, idx int, name string) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "rename_snapshot", start, err) }()

	if idx < 0 {
		return snapshotNotFound(id, idx)
	}
	elem := fmt.Sprintf("snapshots.%d", idx)
	res, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": id, elem: bson.M{"$exists": true}},
		bson.M{"$set": bson.M{elem + ".name": name, "updated_at": time.Now()}},
	)
	if err != nil {
		return storageError(err, "rename snapshot %d of %s", idx, id)
	}
	if res.MatchedCount == 0 {
		return s.missing(ctx, id, idx)
	}
	return nil
}

// DeleteSnapshot implements snapshot.Persister. MongoDB cannot remove an
// array element by position, so the element is first nulled and then pulled.
func (s *MongoStore) DeleteSnapshot(ctx context.Context, id string, idx int) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "delete_snapshot", start, err) }()

	if idx < 0 {
		return snapshotNotFound(id, idx)
	}
	elem := fmt.Sprintf("snapshots.%d", idx)
	res, err := s.sessions.UpdateOne(ctx,
		bson.M{"_id": id, elem: bson.M{"$exists": true}},
		bson.M{"$unset": bson.M{elem: 1}},
	)
	if err != nil {
		return storageError(err, "delete snapshot %d of %s", idx, id)
	}
	if res.MatchedCount == 0 {
		return s.missing(ctx, id, idx)
	}
	_, err = s.sessions.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{"snapshots": nil},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	return storageError(err, "delete snapshot %d of %s", idx, id)
}

// missing reports whether the session or only the snapshot is absent.
func (s *MongoStore) missing(ctx context.Context, id string, idx int) error {
	n, err := s.sessions.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return storageError(err, "get session %s", id)
	}
	if n == 0 {
		return sessionNotFound(id)
	}
	return snapshotNotFound(id, idx)
}

// ClearAll implements Store.
func (s *MongoStore) ClearAll(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { observe(ctx, s.Backend(), "clear", start, err) }()

	if _, err := s.sessions.DeleteMany(ctx, bson.M{}); err != nil {
		return storageError(err, "clear sessions")
	}
	if _, err := s.config.DeleteMany(ctx, bson.M{}); err != nil {
		return storageError(err, "clear config")
	}
	return nil
}

var _ Store = (*MongoStore)(nil)
