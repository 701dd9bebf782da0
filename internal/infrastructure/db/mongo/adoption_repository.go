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

const collectionAdoptions = "adoption_requests"

type AdoptionRepository struct {
	col *mongo.Collection
}

func NewAdoptionRepository(db *mongo.Database) *AdoptionRepository {
	return &AdoptionRepository{col: db.Collection(collectionAdoptions)}
}

type adoptionDoc struct {
	ID        primitive.ObjectID    `bson:"_id,omitempty"`
	PetID     string                `bson:"pet_id"`
	UserID    string                `bson:"user_id"`
	OwnerID   string                `bson:"owner_id"`
	Message   string                `bson:"message,omitempty"`
	Status    domain.AdoptionStatus `bson:"status"`
	CreatedAt time.Time             `bson:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

func (d *adoptionDoc) toDomain() *domain.AdoptionRequest {
	return &domain.AdoptionRequest{
		ID:        d.ID.Hex(),
		PetID:     d.PetID,
		UserID:    d.UserID,
		OwnerID:   d.OwnerID,
		Message:   d.Message,
		Status:    d.Status,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (r *AdoptionRepository) Create(ctx context.Context, req *domain.AdoptionRequest) (*domain.AdoptionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := adoptionDoc{
		ID:        primitive.NewObjectID(),
		PetID:     req.PetID,
		UserID:    req.UserID,
		OwnerID:   req.OwnerID,
		Message:   req.Message,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAdoptionExists
		}
		return nil, fmt.Errorf("insert adoption request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AdoptionRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.AdoptionRequest, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrAdoptionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc adoptionDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid, "owner_id": ownerID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdoptionNotFound
		}
		return nil, fmt.Errorf("find adoption request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AdoptionRepository) list(ctx context.Context, filter bson.M) ([]*domain.AdoptionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list adoption requests: %w", err)
	}
	var docs []adoptionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode adoption requests: %w", err)
	}
	out := make([]*domain.AdoptionRequest, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *AdoptionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.AdoptionRequest, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *AdoptionRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.AdoptionRequest, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID})
}

// UpdateStatus moves a pending request to status. A request that was decided
// concurrently reports domain.ErrAdoptionClosed.
func (r *AdoptionRepository) UpdateStatus(ctx context.Context, id string, status domain.AdoptionStatus) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrAdoptionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": domain.AdoptionPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update adoption request: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("update adoption request: %w", err)
		}
		if n == 0 {
			return domain.ErrAdoptionNotFound
		}
		return domain.ErrAdoptionClosed
	}
	return nil
}

func (r *AdoptionRepository) RejectPendingForPet(ctx context.Context, petID, exceptID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"pet_id": petID, "status": domain.AdoptionPending}
	if oid, ok := objectID(exceptID); ok {
		filter["_id"] = bson.M{"$ne": oid}
	}
	res, err := r.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": domain.AdoptionRejected, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, fmt.Errorf("reject pending requests: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *AdoptionRepository) deleteMany(ctx context.Context, filter bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete adoption requests: %w", err)
	}
	return nil
}

func (r *AdoptionRepository) DeleteByPet(ctx context.Context, petID string) error {
	return r.deleteMany(ctx, bson.M{"pet_id": petID})
}

// DeleteByUser removes requests the user filed and requests received on the
// user's pets.
func (r *AdoptionRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.deleteMany(ctx, bson.M{"$or": bson.A{bson.M{"user_id": userID}, bson.M{"owner_id": userID}}})
}

func (r *AdoptionRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "pet_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.AdoptionPending}).
				SetName("uniq_pending_user_pet"),
		},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "pet_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
