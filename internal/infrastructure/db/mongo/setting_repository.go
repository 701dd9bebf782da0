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

const collectionSettings = "settings"

type SettingRepository struct {
	col *mongo.Collection
}

func NewSettingRepository(db *mongo.Database) *SettingRepository {
	return &SettingRepository{col: db.Collection(collectionSettings)}
}

type settingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Key         string             `bson:"key"`
	Value       string             `bson:"value"`
	Category    string             `bson:"category"`
	Description string             `bson:"description,omitempty"`
	IsPublic    bool               `bson:"is_public"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *settingDoc) toDomain() *domain.Setting {
	return &domain.Setting{
		ID:          d.ID.Hex(),
		Key:         d.Key,
		Value:       d.Value,
		Category:    d.Category,
		Description: d.Description,
		IsPublic:    d.IsPublic,
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *SettingRepository) Upsert(ctx context.Context, s *domain.Setting) (*domain.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"value":       s.Value,
		"category":    s.Category,
		"description": s.Description,
		"is_public":   s.IsPublic,
		"updated_at":  s.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc settingDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"key": s.Key}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SettingRepository) FindByKey(ctx context.Context, key string) (*domain.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc settingDoc
	if err := r.col.FindOne(ctx, bson.M{"key": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSettingNotFound
		}
		return nil, fmt.Errorf("find setting: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *SettingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "key", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	var docs []settingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	out := make([]*domain.Setting, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *SettingRepository) List(ctx context.Context, category string) ([]*domain.Setting, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	return r.find(ctx, filter)
}

func (r *SettingRepository) ListPublic(ctx context.Context, keys []string) ([]*domain.Setting, error) {
	return r.find(ctx, bson.M{"key": bson.M{"$in": keys}, "is_public": true})
}

func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"key": key})
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrSettingNotFound
	}
	return nil
}

func (r *SettingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
