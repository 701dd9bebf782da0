package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

const (
	collectionChats    = "chats"
	collectionMessages = "messages"
)

type ChatRepository struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{
		chats:    db.Collection(collectionChats),
		messages: db.Collection(collectionMessages),
	}
}

type chatDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	User1ID       string             `bson:"user1_id"`
	User2ID       string             `bson:"user2_id"`
	PairKey       string             `bson:"pair_key"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
	LastMessageAt *time.Time         `bson:"last_message_at,omitempty"`
}

func (d *chatDoc) toDomain() *domain.Chat {
	c := &domain.Chat{
		ID:        d.ID.Hex(),
		User1ID:   d.User1ID,
		User2ID:   d.User2ID,
		PairKey:   d.PairKey,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.LastMessageAt != nil {
		t := d.LastMessageAt.UTC()
		c.LastMessageAt = &t
	}
	return c
}

type messageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ChatID     string             `bson:"chat_id"`
	SenderID   string             `bson:"sender_id"`
	ReceiverID string             `bson:"receiver_id"`
	Content    string             `bson:"content"`
	CreatedAt  time.Time          `bson:"created_at"`
	ReadAt     *time.Time         `bson:"read_at"`
}

func (d *messageDoc) toDomain() *domain.Message {
	m := &domain.Message{
		ID:         d.ID.Hex(),
		ChatID:     d.ChatID,
		SenderID:   d.SenderID,
		ReceiverID: d.ReceiverID,
		Content:    d.Content,
		CreatedAt:  d.CreatedAt.UTC(),
	}
	if d.ReadAt != nil {
		t := d.ReadAt.UTC()
		m.ReadAt = &t
	}
	return m
}

// FindOrCreate upserts on the unique pair key, so concurrent callers for the
// same pair converge on one chat.
func (r *ChatRepository) FindOrCreate(ctx context.Context, a, b string) (*domain.Chat, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	key := domain.PairKey(a, b)
	first, second := a, b
	if first > second {
		first, second = second, first
	}
	now := time.Now().UTC()
	newID := primitive.NewObjectID()

	update := bson.M{"$setOnInsert": bson.M{
		"_id":        newID,
		"user1_id":   first,
		"user2_id":   second,
		"pair_key":   key,
		"created_at": now,
		"updated_at": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc chatDoc
	err := r.chats.FindOneAndUpdate(ctx, bson.M{"pair_key": key}, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race; the winner's document is now visible.
		err = r.chats.FindOne(ctx, bson.M{"pair_key": key}).Decode(&doc)
	}
	if err != nil {
		return nil, false, fmt.Errorf("upsert chat: %w", err)
	}
	return doc.toDomain(), doc.ID == newID, nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc chatDoc
	if err := r.chats.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{bson.M{"user1_id": userID}, bson.M{"user2_id": userID}}}
	cur, err := r.chats.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	var docs []chatDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode chats: %w", err)
	}
	out := make([]*domain.Chat, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ChatRepository) Touch(ctx context.Context, chatID string, at time.Time) error {
	oid, ok := objectID(chatID)
	if !ok {
		return domain.ErrChatNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.chats.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"last_message_at": at, "updated_at": at}})
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return nil
}

// DeleteByUser removes the user's chats and their messages.
func (r *ChatRepository) DeleteByUser(ctx context.Context, userID string) error {
	chats, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		return nil
	}
	ids := make([]string, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.messages.DeleteMany(ctx, bson.M{"chat_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := r.chats.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objectIDs(ids)}}); err != nil {
		return fmt.Errorf("delete chats: %w", err)
	}
	return nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := messageDoc{
		ID:         primitive.NewObjectID(),
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
	if _, err := r.messages.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChatRepository) FindMessage(ctx context.Context, chatID, messageID string) (*domain.Message, error) {
	oid, ok := objectID(messageID)
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc messageDoc
	if err := r.messages.FindOne(ctx, bson.M{"_id": oid, "chat_id": chatID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return doc.toDomain(), nil
}

// ListMessages sorts by creation time with the id as tie breaker; ObjectIDs
// grow monotonically per process.
func (r *ChatRepository) ListMessages(ctx context.Context, chatID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.messages.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	out := make([]*domain.Message, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *ChatRepository) LastMessage(ctx context.Context, chatID string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var doc messageDoc
	if err := r.messages.FindOne(ctx, bson.M{"chat_id": chatID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("last message: %w", err)
	}
	return doc.toDomain(), nil
}

func unreadFilter(chatID, receiverID string) bson.M {
	return bson.M{"chat_id": chatID, "receiver_id": receiverID, "read_at": nil}
}

func (r *ChatRepository) CountUnread(ctx context.Context, chatID, receiverID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.messages.CountDocuments(ctx, unreadFilter(chatID, receiverID))
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkRead only stamps messages that are still unread, keeping the first
// read time.
func (r *ChatRepository) MarkRead(ctx context.Context, chatID, messageID string, at time.Time) error {
	oid, ok := objectID(messageID)
	if !ok {
		return domain.ErrMessageNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.messages.UpdateOne(ctx,
		bson.M{"_id": oid, "chat_id": chatID, "read_at": nil},
		bson.M{"$set": bson.M{"read_at": at}},
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (r *ChatRepository) MarkAllRead(ctx context.Context, chatID, receiverID string, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.messages.UpdateMany(ctx, unreadFilter(chatID, receiverID), bson.M{"$set": bson.M{"read_at": at}})
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	chatIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "pair_key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user1_id", Value: 1}, {Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "user2_id", Value: 1}, {Key: "updated_at", Value: -1}}},
	}
	if _, err := r.chats.Indexes().CreateMany(ctx, chatIndexes); err != nil {
		return err
	}
	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "read_at", Value: 1}}},
	}
	_, err := r.messages.Indexes().CreateMany(ctx, messageIndexes)
	return err
}
