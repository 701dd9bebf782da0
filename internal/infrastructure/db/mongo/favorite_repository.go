package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

const collectionFavorites = "favorites"

type FavoriteRepository struct {
	col *mongo.Collection
}

func NewFavoriteRepository(db *mongo.Database) *FavoriteRepository {
	return &FavoriteRepository{col: db.Collection(collectionFavorites)}
}

type favoriteDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	PetID     string             `bson:"pet_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *FavoriteRepository) Create(ctx context.Context, fav *domain.Favorite) (*domain.Favorite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := favoriteDoc{ID: primitive.NewObjectID(), UserID: fav.UserID, PetID: fav.PetID, CreatedAt: fav.CreatedAt}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrFavoriteExists
		}
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	return &domain.Favorite{ID: doc.ID.Hex(), UserID: doc.UserID, PetID: doc.PetID, CreatedAt: doc.CreatedAt.UTC()}, nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	var docs []favoriteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	out := make([]*domain.Favorite, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Favorite{ID: d.ID.Hex(), UserID: d.UserID, PetID: d.PetID, CreatedAt: d.CreatedAt.UTC()})
	}
	return out, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID, petID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID, "pet_id": petID})
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepository) deleteMany(ctx context.Context, filter bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete favorites: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) DeleteByPet(ctx context.Context, petID string) error {
	return r.deleteMany(ctx, bson.M{"pet_id": petID})
}

func (r *FavoriteRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.deleteMany(ctx, bson.M{"user_id": userID})
}

func (r *FavoriteRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "pet_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "pet_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
