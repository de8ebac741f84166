package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"chat-realtime/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "messages"

// messageDocument is the stored shape; _id is an ObjectID, exposed as hex
type messageDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ChannelID  string             `bson:"channelId"`
	SenderID   string             `bson:"senderId"`
	SenderName string             `bson:"senderName,omitempty"`
	Content    string             `bson:"content"`
	Edited     bool               `bson:"edited"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
	ReadBy     []string           `bson:"readBy"`
}

func (d *messageDocument) toModel() *models.Message {
	readBy := d.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	return &models.Message{
		ID:         d.ID.Hex(),
		ChannelID:  d.ChannelID,
		SenderID:   d.SenderID,
		SenderName: d.SenderName,
		Content:    d.Content,
		Edited:     d.Edited,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		ReadBy:     readBy,
	}
}

type MessageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the channel/time index used by listing, preview,
// unread counting and search
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "channelId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "channelId", Value: 1}, {Key: "readBy", Value: 1}}},
	})
	return err
}

func (r *MessageRepository) FindByChannel(ctx context.Context, channelID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"channelId": channelID}, opts)
}

func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := messageDocument{
		ID:         primitive.NewObjectID(),
		ChannelID:  msg.ChannelID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Content:    msg.Content,
		Edited:     false,
		CreatedAt:  now,
		UpdatedAt:  now,
		ReadBy:     []string{},
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}

	msg.ID = doc.ID.Hex()
	msg.Edited = false
	msg.CreatedAt = now
	msg.UpdatedAt = now
	msg.ReadBy = []string{}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}

	var doc messageDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(id, err)
	}
	return doc.toModel(), nil
}

func (r *MessageRepository) UpdateContent(ctx context.Context, id, content string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}

	update := bson.M{"$set": bson.M{
		"content":   content,
		"edited":    true,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc messageDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, notFound(id, err)
	}
	return doc.toModel(), nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *MessageRepository) FindLast(ctx context.Context, channelID string) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	var doc messageDocument
	err := r.coll.FindOne(ctx, bson.M{"channelId": channelID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, channelID, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"channelId": channelID,
		"readBy":    bson.M{"$ne": userID},
	})
}

// MarkRead is one UpdateMany with $addToSet, so each matched document gains
// the reader atomically and at most once
func (r *MessageRepository) MarkRead(ctx context.Context, channelID, userID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"channelId": channelID, "readBy": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"readBy": userID}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MessageRepository) Search(ctx context.Context, channelID, query string, limit int) ([]*models.Message, error) {
	filter := bson.M{
		"channelId": channelID,
		"content":   primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

func (r *MessageRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Message, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []messageDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*models.Message, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

func notFound(id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	return err
}
