package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawhaven/adoption-api/internal/core/domain"
)

const imageBucket = "pet_images"

// ImageStore keeps pet images in GridFS. The GridFS file id doubles as the
// image id; pet id and content type live in the file metadata.
type ImageStore struct {
	db    *mongo.Database
	files *mongo.Collection
}

func NewImageStore(db *mongo.Database) (*ImageStore, error) {
	if _, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(imageBucket)); err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &ImageStore{db: db, files: db.Collection(imageBucket + ".files")}, nil
}

type imageMeta struct {
	PetID       string `bson:"pet_id"`
	ContentType string `bson:"content_type"`
}

type imageFileDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   imageMeta          `bson:"metadata"`
}

func (d *imageFileDoc) toDomain() *domain.PetImage {
	return &domain.PetImage{
		ID:          d.ID.Hex(),
		PetID:       d.Metadata.PetID,
		FileID:      d.ID.Hex(),
		Filename:    d.Filename,
		ContentType: d.Metadata.ContentType,
		Size:        d.Length,
		CreatedAt:   d.UploadDate.UTC(),
	}
}

// bucket returns a fresh GridFS bucket; buckets keep per-stream buffers and
// must not be shared between goroutines.
func (s *ImageStore) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(s.db, options.GridFSBucket().SetName(imageBucket))
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(defaultTimeout)
}

func (s *ImageStore) Save(ctx context.Context, petID, filename, contentType string, r io.Reader) (*domain.PetImage, error) {
	b, err := s.bucket()
	if err != nil {
		return nil, err
	}
	if err := b.SetWriteDeadline(deadline(ctx)); err != nil {
		return nil, err
	}

	id := primitive.NewObjectID()
	opts := options.GridFSUpload().SetMetadata(imageMeta{PetID: petID, ContentType: contentType})
	if err := b.UploadFromStreamWithID(id, filename, r, opts); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return s.find(ctx, bson.M{"_id": id})
}

func (s *ImageStore) find(ctx context.Context, filter bson.M) (*domain.PetImage, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc imageFileDoc
	if err := s.files.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("find image: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *ImageStore) Find(ctx context.Context, petID, imageID string) (*domain.PetImage, error) {
	oid, ok := objectID(imageID)
	if !ok {
		return nil, domain.ErrImageNotFound
	}
	return s.find(ctx, bson.M{"_id": oid, "metadata.pet_id": petID})
}

// Open streams the image content. The caller closes the reader.
func (s *ImageStore) Open(ctx context.Context, image *domain.PetImage) (io.ReadCloser, error) {
	oid, ok := objectID(image.FileID)
	if !ok {
		return nil, domain.ErrImageNotFound
	}
	b, err := s.bucket()
	if err != nil {
		return nil, err
	}
	if err := b.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, err
	}
	stream, err := b.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("open image: %w", err)
	}
	return stream, nil
}

func (s *ImageStore) Delete(ctx context.Context, petID, imageID string) error {
	image, err := s.Find(ctx, petID, imageID)
	if err != nil {
		return err
	}
	oid, _ := objectID(image.FileID)
	return s.deleteFile(ctx, oid)
}

func (s *ImageStore) deleteFile(ctx context.Context, id primitive.ObjectID) error {
	b, err := s.bucket()
	if err != nil {
		return err
	}
	if err := b.SetWriteDeadline(deadline(ctx)); err != nil {
		return err
	}
	if err := b.Delete(id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func (s *ImageStore) DeleteByPet(ctx context.Context, petID string) error {
	findCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.files.Find(findCtx, bson.M{"metadata.pet_id": petID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return fmt.Errorf("list pet images: %w", err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(findCtx, &docs); err != nil {
		return fmt.Errorf("decode pet images: %w", err)
	}
	for _, d := range docs {
		if err := s.deleteFile(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ImageStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.files.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "metadata.pet_id", Value: 1}}})
	return err
}
