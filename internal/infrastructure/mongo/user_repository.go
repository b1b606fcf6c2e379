package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"findash/internal/domain/user"
)

// Users keep int64 ids across backends; a counters document hands them out.
type userDoc struct {
	ID           int64     `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	Profile      string    `bson:"profile"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d *userDoc) toDomain() *user.User {
	return &user.User{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		Profile:      d.Profile,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type UserRepository struct {
	c   *Client
	now func() time.Time
}

func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{c: c, now: time.Now}
}

func (r *UserRepository) coll() *mongo.Collection {
	return r.c.collection(usersCollection)
}

func (r *UserRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.c.collection(countersCollection).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: usersCollection}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, classify("failed to allocate user id", err)
	}
	return counter.Seq, nil
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	doc := userDoc{
		ID:           id,
		Email:        params.Email,
		Name:         params.Name,
		Profile:      params.Profile,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = r.coll().InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, user.ErrEmailTaken
	}
	if err != nil {
		return nil, classify("failed to create user", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D, op string) (*user.User, error) {
	var doc userDoc
	err := r.coll().FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}}, "failed to get user")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}}, "failed to get user by email")
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	cur, err := r.coll().Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, classify("failed to list users", err)
	}
	defer cur.Close(ctx)

	users := []*user.User{}
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, classify("failed to decode user", err)
		}
		users = append(users, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, classify("error iterating users", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	var doc userDoc
	err := r.coll().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: u.ID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "email", Value: u.Email},
			{Key: "name", Value: u.Name},
			{Key: "profile", Value: u.Profile},
			{Key: "password_hash", Value: u.PasswordHash},
			{Key: "updatedAt", Value: r.now().UTC().Truncate(time.Millisecond)},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrUserNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, user.ErrEmailTaken
	}
	if err != nil {
		return nil, classify("failed to update user", err)
	}
	return doc.toDomain(), nil
}

// Delete removes only the user document; the account service purges the
// user's categories and transactions first.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.coll().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return classify("failed to delete user", err)
	}
	if res.DeletedCount == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
