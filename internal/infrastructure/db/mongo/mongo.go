package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Store groups every repository built on one database.
type Store struct {
	Users      *UserRepository
	Pets       *PetRepository
	Images     *ImageStore
	Adoptions  *AdoptionRepository
	Chats      *ChatRepository
	Favorites  *FavoriteRepository
	Activities *ActivityRepository
	Settings   *SettingRepository
}

func NewStore(db *mongo.Database) (*Store, error) {
	images, err := NewImageStore(db)
	if err != nil {
		return nil, err
	}
	return &Store{
		Users:      NewUserRepository(db),
		Pets:       NewPetRepository(db),
		Images:     images,
		Adoptions:  NewAdoptionRepository(db),
		Chats:      NewChatRepository(db),
		Favorites:  NewFavoriteRepository(db),
		Activities: NewActivityRepository(db),
		Settings:   NewSettingRepository(db),
	}, nil
}

// EnsureIndexes creates the indexes every repository relies on, including
// the unique ones that enforce email, favorite, chat pair and pending
// adoption uniqueness.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", s.Users.EnsureIndexes},
		{"pets", s.Pets.EnsureIndexes},
		{"pet_images", s.Images.EnsureIndexes},
		{"adoption_requests", s.Adoptions.EnsureIndexes},
		{"chats", s.Chats.EnsureIndexes},
		{"favorites", s.Favorites.EnsureIndexes},
		{"activities", s.Activities.EnsureIndexes},
		{"settings", s.Settings.EnsureIndexes},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", step.name, err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids are reported as not found by
// callers, never as a server error.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			out = append(out, oid)
		}
	}
	return out
}

func skipFor(page, limit int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * limit)
}
