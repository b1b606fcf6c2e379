package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"findash/internal/domain/category"
	"findash/internal/domain/transaction"
)

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      int64              `bson:"user_id"`
	Name        string             `bson:"name"`
	Type        string             `bson:"type"`
	Description string             `bson:"description"`
	Color       string             `bson:"color"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *categoryDoc) toDomain() *category.Category {
	return &category.Category{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Name:        d.Name,
		Type:        transaction.Category(d.Type),
		Description: d.Description,
		Color:       d.Color,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type CategoryRepository struct {
	c   *Client
	now func() time.Time
}

func NewCategoryRepository(c *Client) *CategoryRepository {
	return &CategoryRepository{c: c, now: time.Now}
}

func (r *CategoryRepository) coll() *mongo.Collection {
	return r.c.collection(categoriesCollection)
}

func (r *CategoryRepository) Create(ctx context.Context, userID int64, params category.CreateParams) (*category.Category, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := categoryDoc{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Name:        params.Name,
		Type:        string(params.Type),
		Description: params.Description,
		Color:       params.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.coll().InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, category.ErrDuplicateCategory
	}
	if err != nil {
		return nil, classify("failed to create category", err)
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, userID int64, id string) (*category.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, category.ErrCategoryNotFound
	}

	var doc categoryDoc
	err = r.coll().FindOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, category.ErrCategoryNotFound
	}
	if err != nil {
		return nil, classify("failed to get category", err)
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "type", Value: 1}})
	cur, err := r.coll().Find(ctx, bson.D{{Key: "user_id", Value: userID}}, opts)
	if err != nil {
		return nil, classify("failed to list categories", err)
	}
	defer cur.Close(ctx)

	categories := []*category.Category{}
	for cur.Next(ctx) {
		var doc categoryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, classify("failed to decode category", err)
		}
		categories = append(categories, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, classify("error iterating categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) (*category.Category, error) {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return nil, category.ErrCategoryNotFound
	}

	var doc categoryDoc
	err = r.coll().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: c.UserID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "name", Value: c.Name},
			{Key: "type", Value: string(c.Type)},
			{Key: "description", Value: c.Description},
			{Key: "color", Value: c.Color},
			{Key: "updatedAt", Value: r.now().UTC().Truncate(time.Millisecond)},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, category.ErrCategoryNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, category.ErrDuplicateCategory
	}
	if err != nil {
		return nil, classify("failed to update category", err)
	}
	return doc.toDomain(), nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID int64, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return category.ErrCategoryNotFound
	}

	res, err := r.coll().DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: userID}})
	if err != nil {
		return classify("failed to delete category", err)
	}
	if res.DeletedCount == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.coll().DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID}}); err != nil {
		return classify("failed to delete user categories", err)
	}
	return nil
}
