package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/okian/pairdesk/internal/domain/model"
)

const (
	appointmentsCollection = "appointments"
	preferencesCollection  = "user_prefs"
)

// mongoAppointment adds the insertion sequence used for store order.
type mongoAppointment struct {
	model.Appointment `bson:",inline"`
	Seq               int64 `bson:"seq"`
}

// MongoStore is a Store backed by MongoDB. Pair commits run in a
// transaction when the deployment supports them (replica set or mongos)
// and fall back to guarded single-document updates otherwise.
type MongoStore struct {
	client *mongo.Client
	appts  *mongo.Collection
	prefs  *mongo.Collection
	txn    bool
}

// NewMongoStore connects to uri and waits for the server to answer.
func NewMongoStore(ctx context.Context, uri string, opts ...Option) (*MongoStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := retryPing(o.pingAttempts, func() error { return client.Ping(ctx, nil) }); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping timeout: %w", err)
	}

	db := client.Database(o.database)
	s := &MongoStore{
		client: client,
		appts:  db.Collection(appointmentsCollection),
		prefs:  db.Collection(preferencesCollection),
		txn:    supportsTransactions(ctx, client),
	}
	return s, nil
}

func supportsTransactions(ctx context.Context, client *mongo.Client) bool {
	var hello bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return false
	}
	if _, ok := hello["setName"]; ok {
		return true
	}
	return hello["msg"] == "isdbgrid"
}

// EnsureIndexes creates the slot lookup and preference indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.appts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}, {Key: "is_paired", Value: 1}}},
		{Keys: bson.D{{Key: "seq", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("appointment indexes: %w", err)
	}
	if _, err := s.prefs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: mongoopts.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("preference indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]model.Appointment, error) {
	cursor, err := s.appts.Find(ctx, filter, mongoopts.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []model.Appointment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ListUnpaired(ctx context.Context, slot model.Slot) ([]model.Appointment, error) {
	out, err := s.find(ctx, bson.M{"date": slot.Date, "start_time": slot.Start, "is_paired": false})
	if err != nil {
		return nil, fmt.Errorf("list unpaired %s: %w", slot, err)
	}
	return out, nil
}

func (s *MongoStore) GetPreferences(ctx context.Context, userID int64) (model.Preferences, error) {
	var p model.Preferences
	err := s.prefs.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Preferences{}, fmt.Errorf("preferences of user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("preferences of user %d: %w", userID, err)
	}
	return p, nil
}

func pairSet(other model.Appointment, station string) bson.M {
	return bson.M{"$set": bson.M{
		"is_paired":             true,
		"station":               station,
		"paired_appointment_id": other.ID,
		"paired_user_id":        other.UserID,
	}}
}

// markPaired updates self only if it is still unpaired.
func (s *MongoStore) markPaired(ctx context.Context, self, other model.Appointment, station string) error {
	res, err := s.appts.UpdateOne(ctx, bson.M{"_id": self.ID, "is_paired": false}, pairSet(other, station))
	if err != nil {
		return fmt.Errorf("pair %s: %w", self.ID, err)
	}
	if res.MatchedCount != 1 {
		return fmt.Errorf("pair %s/%s: %w", self.ID, other.ID, ErrAlreadyPaired)
	}
	return nil
}

func (s *MongoStore) CommitPair(ctx context.Context, a, b model.Appointment, station string) error {
	if s.txn {
		sess, err := s.client.StartSession()
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		defer sess.EndSession(ctx)

		_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
			if err := s.markPaired(sc, a, b, station); err != nil {
				return nil, err
			}
			return nil, s.markPaired(sc, b, a, station)
		})
		return err
	}

	if err := s.markPaired(ctx, a, b, station); err != nil {
		return err
	}
	if err := s.markPaired(ctx, b, a, station); err != nil {
		// Undo the first side so both stay unpaired for the next tick.
		_, undoErr := s.appts.UpdateOne(ctx,
			bson.M{"_id": a.ID, "paired_appointment_id": b.ID},
			bson.M{
				"$set":   bson.M{"is_paired": false},
				"$unset": bson.M{"station": "", "paired_appointment_id": "", "paired_user_id": ""},
			})
		return errors.Join(err, undoErr)
	}
	return nil
}

func (s *MongoStore) AssignStation(ctx context.Context, appointmentID, station string) error {
	res, err := s.appts.UpdateOne(ctx,
		bson.M{"_id": appointmentID, "is_paired": false},
		bson.M{"$set": bson.M{"station": station}})
	if err != nil {
		return fmt.Errorf("assign station %s: %w", appointmentID, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := s.appts.CountDocuments(ctx, bson.M{"_id": appointmentID})
	if err != nil {
		return fmt.Errorf("assign station %s: %w", appointmentID, err)
	}
	if n == 0 {
		return fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
	}
	return fmt.Errorf("appointment %s: %w", appointmentID, ErrAlreadyPaired)
}

func (s *MongoStore) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	out, err := s.find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", date, err)
	}
	return out, nil
}

func (s *MongoStore) Insert(ctx context.Context, appts []model.Appointment, prefs []model.Preferences) error {
	base := time.Now().UnixNano()
	for i, a := range appts {
		doc := mongoAppointment{Appointment: a, Seq: base + int64(i)}
		if _, err := s.appts.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return fmt.Errorf("insert appointment %s: %w", a.ID, err)
		}
	}
	for _, p := range prefs {
		_, err := s.prefs.ReplaceOne(ctx, bson.M{"user_id": p.UserID}, p, mongoopts.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("insert preferences %d: %w", p.UserID, err)
		}
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Truncate deletes every document. Used by tests and the seed command's reset flag.
func (s *MongoStore) Truncate(ctx context.Context) error {
	if _, err := s.appts.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("truncate appointments: %w", err)
	}
	if _, err := s.prefs.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("truncate preferences: %w", err)
	}
	return nil
}
