package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

const (
	collectionMessages = "messages"
	collectionCounters = "counters"
	messageCounterID   = "messages"
)

// chronological is the total order of messages: creation time, then the
// store-assigned insertion sequence.
var chronological = bson.D{{Key: "timestamp", Value: 1}, {Key: "seq", Value: 1}}

type MessageRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{
		col:      db.Collection(collectionMessages),
		counters: db.Collection(collectionCounters),
	}
}

type messageDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Seq       int64              `bson:"seq"`
	Sender    string             `bson:"sender"`
	Recipient string             `bson:"recipient"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"timestamp"`
	Read      bool               `bson:"read"`
}

func (d *messageDocument) toDomain() *domain.Message {
	return &domain.Message{
		ID:        d.ID.Hex(),
		Seq:       d.Seq,
		Sender:    d.Sender,
		Recipient: d.Recipient,
		Text:      d.Text,
		CreatedAt: d.CreatedAt.UTC(),
		Read:      d.Read,
	}
}

// Append reserves the next sequence number and inserts the message. A
// reserved number whose insert fails is simply skipped; sequences only need
// to be increasing, not dense.
func (r *MessageRepository) Append(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}

	doc := messageDocument{
		ID:        primitive.NewObjectID(),
		Seq:       seq,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		Read:      false,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return classify("insert message", err)
	}

	m.ID = doc.ID.Hex()
	m.Seq = seq
	m.Read = false
	return nil
}

func (r *MessageRepository) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": messageCounterID},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, classify("next message seq", err)
	}
	return counter.Value, nil
}

// Conversation returns messages between a and b in both directions.
func (r *MessageRepository) Conversation(ctx context.Context, a, b string) ([]*domain.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": a, "recipient": b},
		bson.M{"sender": b, "recipient": a},
	}}
	return r.find(ctx, "conversation", filter)
}

// Touching returns every message userID sent or received.
func (r *MessageRepository) Touching(ctx context.Context, userID string) ([]*domain.Message, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender": userID},
		bson.M{"recipient": userID},
	}}
	return r.find(ctx, "messages touching user", filter)
}

func (r *MessageRepository) find(ctx context.Context, op string, filter bson.M) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(chronological))
	if err != nil {
		return nil, classify(op, err)
	}
	defer cur.Close(ctx)

	var docs []messageDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(op, err)
	}
	out := make([]*domain.Message, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

// MarkRead flips read on every unread message from sender to recipient.
func (r *MessageRepository) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"sender": sender, "recipient": recipient, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, classify("mark read", err)
	}
	return res.ModifiedCount, nil
}

// UnreadCounts groups unread messages addressed to recipient by sender.
func (r *MessageRepository) UnreadCounts(ctx context.Context, recipient string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "recipient", Value: recipient}, {Key: "read", Value: false}}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$sender"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify("unread counts", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Sender string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, classify("decode unread counts", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Sender] = row.Count
	}
	return counts, nil
}

// EnsureIndexes creates the indexes backing conversation lookups, unread
// aggregation and sequence uniqueness.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "recipient", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
