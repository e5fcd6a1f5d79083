package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type imageDocument struct {
	Filename string `bson:"filename"`
	Path     string `bson:"path"`
}

type toyDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Category    string             `bson:"category"`
	Description string             `bson:"description"`
	Review      string             `bson:"review"`
	Rating      int                `bson:"rating"`
	ImageURL    string             `bson:"imageUrl"`
	Images      []imageDocument    `bson:"images"`
	Tags        []string           `bson:"tags,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newToyDocument(t *domain.Toy) *toyDocument {
	doc := &toyDocument{
		Title:       t.Title,
		Category:    t.Category,
		Description: t.Description,
		Review:      t.Review,
		Rating:      t.Rating,
		ImageURL:    t.ImageURL,
		Images:      make([]imageDocument, 0, len(t.Images)),
		Tags:        t.Tags,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, img := range t.Images {
		doc.Images = append(doc.Images, imageDocument{Filename: img.Filename, Path: img.Path})
	}
	return doc
}

func (d *toyDocument) toDomain() *domain.Toy {
	toy := &domain.Toy{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Category:    d.Category,
		Description: d.Description,
		Review:      d.Review,
		Rating:      d.Rating,
		ImageURL:    d.ImageURL,
		Images:      make([]domain.ImageRef, 0, len(d.Images)),
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, img := range d.Images {
		toy.Images = append(toy.Images, domain.ImageRef{Filename: img.Filename, Path: img.Path})
	}
	return toy
}

type toyRepository struct {
	coll *mongo.Collection
}

// NewToyRepository creates a ToyRepository backed by the toys collection of db
func NewToyRepository(db *mongo.Database) repository.ToyRepository {
	return &toyRepository{coll: db.Collection(ToysCollection)}
}

// Create inserts toy and sets its ID
func (r *toyRepository) Create(ctx context.Context, toy *domain.Toy) error {
	doc := newToyDocument(toy)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create toy: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("failed to create toy: unexpected id type %T", res.InsertedID)
	}
	toy.ID = oid.Hex()

	return nil
}

func (r *toyRepository) FindAll(ctx context.Context, page, limit int) ([]*domain.Toy, error) {
	page, limit = repository.NormalizePage(page, limit)
	if repository.PastEnd(page, limit) {
		return []*domain.Toy{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.D{}, pageOptions(repository.Offset(page, limit), limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list toys: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []toyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode toys: %w", err)
	}

	toys := make([]*domain.Toy, 0, len(docs))
	for i := range docs {
		toys = append(toys, docs[i].toDomain())
	}
	return toys, nil
}

func (r *toyRepository) FindByID(ctx context.Context, id string) (*domain.Toy, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrToyNotFound
	}

	var doc toyDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrToyNotFound
		}
		return nil, fmt.Errorf("failed to find toy by ID: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *toyRepository) Update(ctx context.Context, id string, patch *domain.ToyPatch) (*domain.Toy, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrToyNotFound
	}

	set := bson.M{"updatedAt": time.Now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Review != nil {
		set["review"] = *patch.Review
	}
	if patch.Rating != nil {
		set["rating"] = *patch.Rating
	}
	if patch.Tags != nil {
		set["tags"] = *patch.Tags
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc toyDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrToyNotFound
		}
		return nil, fmt.Errorf("failed to update toy: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *toyRepository) Save(ctx context.Context, toy *domain.Toy) error {
	oid, ok := objectID(toy.ID)
	if !ok {
		return domain.ErrToyNotFound
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, newToyDocument(toy))
	if err != nil {
		return fmt.Errorf("failed to save toy: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrToyNotFound
	}

	return nil
}

func (r *toyRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrToyNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete toy: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrToyNotFound
	}

	return nil
}
