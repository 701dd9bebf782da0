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
	"github.com/pawhaven/adoption-api/internal/core/ports"
)

const collectionActivities = "activities"

// ActivityRepository is append-only.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivities)}
}

type activityDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Type        domain.ActivityType `bson:"type"`
	Action      string              `bson:"action"`
	Description string              `bson:"description"`
	UserID      string              `bson:"user_id,omitempty"`
	Metadata    map[string]string   `bson:"metadata,omitempty"`
	CreatedAt   time.Time           `bson:"created_at"`
}

func (r *ActivityRepository) Insert(ctx context.Context, a *domain.Activity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := activityDoc{
		ID:          primitive.NewObjectID(),
		Type:        a.Type,
		Action:      a.Action,
		Description: a.Description,
		UserID:      a.UserID,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	a.ID = doc.ID.Hex()
	return nil
}

// List returns the newest entries first.
func (r *ActivityRepository) List(ctx context.Context, f ports.ActivityFilter) ([]*domain.Activity, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skipFor(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode activities: %w", err)
	}
	out := make([]*domain.Activity, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Activity{
			ID:          d.ID.Hex(),
			Type:        d.Type,
			Action:      d.Action,
			Description: d.Description,
			UserID:      d.UserID,
			Metadata:    d.Metadata,
			CreatedAt:   d.CreatedAt.UTC(),
		})
	}
	return out, total, nil
}

func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
