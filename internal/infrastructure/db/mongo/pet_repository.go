package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

const collectionPets = "pets"

type PetRepository struct {
	col *mongo.Collection
}

func NewPetRepository(db *mongo.Database) *PetRepository {
	return &PetRepository{col: db.Collection(collectionPets)}
}

type petDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	Name        string             `bson:"name"`
	Type        string             `bson:"type"`
	Breed       string             `bson:"breed,omitempty"`
	Age         int                `bson:"age"`
	Size        string             `bson:"size,omitempty"`
	Gender      string             `bson:"gender,omitempty"`
	Description string             `bson:"description,omitempty"`
	Location    string             `bson:"location,omitempty"`
	Available   bool               `bson:"available"`
	ImageIDs    []string           `bson:"image_ids"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *petDoc) toDomain() *domain.Pet {
	images := d.ImageIDs
	if images == nil {
		images = []string{}
	}
	return &domain.Pet{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Type:        d.Type,
		Breed:       d.Breed,
		Age:         d.Age,
		Size:        d.Size,
		Gender:      d.Gender,
		Description: d.Description,
		Location:    d.Location,
		Available:   d.Available,
		ImageIDs:    images,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *PetRepository) Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := petDoc{
		ID:          primitive.NewObjectID(),
		OwnerID:     pet.OwnerID,
		Name:        pet.Name,
		Type:        pet.Type,
		Breed:       pet.Breed,
		Age:         pet.Age,
		Size:        pet.Size,
		Gender:      pet.Gender,
		Description: pet.Description,
		Location:    pet.Location,
		Available:   pet.Available,
		ImageIDs:    append([]string{}, pet.ImageIDs...),
		CreatedAt:   pet.CreatedAt,
		UpdatedAt:   pet.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert pet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PetRepository) findOne(ctx context.Context, filter bson.M) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc petDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("find pet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PetRepository) FindByID(ctx context.Context, id string) (*domain.Pet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByIDAndOwner folds ownership into the lookup.
func (r *PetRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Pet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
}

func exactFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

func petFilter(f domain.PetFilter) bson.M {
	filter := bson.M{}
	if f.AvailableOnly {
		filter["available"] = true
	}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}
	if f.Type != "" {
		filter["type"] = exactFold(f.Type)
	}
	if f.Size != "" {
		filter["size"] = exactFold(f.Size)
	}
	if f.Gender != "" {
		filter["gender"] = exactFold(f.Gender)
	}
	if f.Breed != "" {
		filter["breed"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Breed), Options: "i"}
	}
	if f.Query != "" {
		q := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": q},
			bson.M{"breed": q},
			bson.M{"description": q},
			bson.M{"location": q},
		}
	}
	return filter
}

func (r *PetRepository) List(ctx context.Context, f domain.PetFilter) ([]*domain.Pet, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := petFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count pets: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skipFor(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))
	pets, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return pets, total, nil
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"owner_id": ownerID}, opts)
}

func (r *PetRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Pet, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	var docs []petDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode pets: %w", err)
	}
	out := make([]*domain.Pet, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *PetRepository) Update(ctx context.Context, id, ownerID string, u domain.PetUpdate) (*domain.Pet, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrPetNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	setIf := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	setIf("name", u.Name)
	setIf("type", u.Type)
	setIf("breed", u.Breed)
	setIf("size", u.Size)
	setIf("gender", u.Gender)
	setIf("description", u.Description)
	setIf("location", u.Location)
	if u.Age != nil {
		set["age"] = *u.Age
	}
	if u.Available != nil {
		set["available"] = *u.Available
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc petDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid, "owner_id": ownerID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("update pet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PetRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrPetNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update pet: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPetNotFound
	}
	return nil
}

func (r *PetRepository) SetAvailable(ctx context.Context, id string, available bool) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"available": available, "updated_at": time.Now().UTC()}})
}

func (r *PetRepository) AddImage(ctx context.Context, petID, imageID string) error {
	return r.updateByID(ctx, petID, bson.M{
		"$addToSet": bson.M{"image_ids": imageID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *PetRepository) RemoveImage(ctx context.Context, petID, imageID string) error {
	return r.updateByID(ctx, petID, bson.M{
		"$pull": bson.M{"image_ids": imageID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *PetRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrPetNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPetNotFound
	}
	return nil
}

func (r *PetRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "available", Value: 1}, {Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
