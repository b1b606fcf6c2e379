package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"findash/internal/domain/transaction"
)

type transactionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Date        time.Time          `bson:"date"`
	Amount      float64            `bson:"amount"`
	Category    string             `bson:"category"`
	Status      string             `bson:"status"`
	UserID      int64              `bson:"user_id"`
	UserProfile string             `bson:"user_profile"`
	CategoryID  *string            `bson:"categoryId,omitempty"`
	FromTo      string             `bson:"fromTo"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *transactionDoc) toDomain() *transaction.Transaction {
	return &transaction.Transaction{
		ID:          d.ID.Hex(),
		Date:        d.Date,
		Amount:      d.Amount,
		Category:    transaction.Category(d.Category),
		Status:      transaction.Status(d.Status),
		UserID:      d.UserID,
		UserProfile: d.UserProfile,
		CategoryID:  d.CategoryID,
		FromTo:      d.FromTo,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type TransactionRepository struct {
	c   *Client
	now func() time.Time
}

func NewTransactionRepository(c *Client) *TransactionRepository {
	return &TransactionRepository{c: c, now: time.Now}
}

func (r *TransactionRepository) coll() *mongo.Collection {
	return r.c.collection(transactionsCollection)
}

func (r *TransactionRepository) Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := transactionDoc{
		ID:          primitive.NewObjectID(),
		Date:        params.Date,
		Amount:      params.Amount,
		Category:    string(params.Category),
		Status:      string(params.Status),
		UserID:      params.UserID,
		UserProfile: params.UserProfile,
		CategoryID:  nonEmpty(params.CategoryID),
		FromTo:      params.FromTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.coll().InsertOne(ctx, doc); err != nil {
		return nil, classify("failed to create transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID int64, id string) (*transaction.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, transaction.ErrTransactionNotFound
	}

	var doc transactionDoc
	err = r.coll().FindOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, classify("failed to get transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) (*transaction.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return nil, transaction.ErrTransactionNotFound
	}

	set := bson.D{
		{Key: "date", Value: t.Date},
		{Key: "amount", Value: t.Amount},
		{Key: "category", Value: string(t.Category)},
		{Key: "status", Value: string(t.Status)},
		{Key: "fromTo", Value: t.FromTo},
		{Key: "updatedAt", Value: r.now().UTC().Truncate(time.Millisecond)},
	}
	update := bson.D{}
	if id := nonEmpty(t.CategoryID); id != nil {
		set = append(set, bson.E{Key: "categoryId", Value: *id})
	} else {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "categoryId", Value: ""}}})
	}
	update = append(update, bson.E{Key: "$set", Value: set})

	var doc transactionDoc
	err = r.coll().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: t.UserID}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		return nil, classify("failed to update transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID int64, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return transaction.ErrTransactionNotFound
	}

	res, err := r.coll().DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "user_id", Value: userID}})
	if err != nil {
		return classify("failed to delete transaction", err)
	}
	if res.DeletedCount == 0 {
		return transaction.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) ClearCategory(ctx context.Context, userID int64, categoryID string) (int64, error) {
	res, err := r.coll().UpdateMany(ctx,
		bson.D{{Key: "user_id", Value: userID}, {Key: "categoryId", Value: categoryID}},
		bson.D{
			{Key: "$unset", Value: bson.D{{Key: "categoryId", Value: ""}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now().UTC().Truncate(time.Millisecond)}}},
		},
	)
	if err != nil {
		return 0, classify("failed to clear transaction category", err)
	}
	return res.ModifiedCount, nil
}

func (r *TransactionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.coll().DeleteMany(ctx, bson.D{{Key: "user_id", Value: userID}}); err != nil {
		return classify("failed to delete user transactions", err)
	}
	return nil
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID int64, f transaction.Filter, p transaction.Page) ([]*transaction.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}})
	if p.Limit > 0 {
		opts.SetLimit(int64(p.Limit))
	}
	if p.Offset > 0 {
		opts.SetSkip(int64(p.Offset))
	}

	cur, err := r.coll().Find(ctx, filterDoc(userID, f), opts)
	if err != nil {
		return nil, classify("failed to list transactions", err)
	}
	defer cur.Close(ctx)

	txs := []*transaction.Transaction{}
	for cur.Next(ctx) {
		var doc transactionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, classify("failed to decode transaction", err)
		}
		txs = append(txs, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, classify("error iterating transactions", err)
	}
	return txs, nil
}

func (r *TransactionRepository) CountByUser(ctx context.Context, userID int64, f transaction.Filter) (int64, error) {
	n, err := r.coll().CountDocuments(ctx, filterDoc(userID, f))
	if err != nil {
		return 0, classify("failed to count transactions", err)
	}
	return n, nil
}

type groupDoc struct {
	ID struct {
		Category string `bson:"category"`
		Year     int    `bson:"year"`
		Month    int    `bson:"month"`
	} `bson:"_id"`
	Total float64 `bson:"total"`
	Count int64   `bson:"count"`
}

func (r *TransactionRepository) AggregateByUser(ctx context.Context, userID int64, f transaction.Filter, key transaction.GroupKey) ([]transaction.Group, error) {
	cur, err := r.coll().Aggregate(ctx, aggregatePipeline(userID, f, key, r.c.zone))
	if err != nil {
		return nil, classify("failed to aggregate transactions", err)
	}
	defer cur.Close(ctx)

	groups := []transaction.Group{}
	for cur.Next(ctx) {
		var doc groupDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, classify("failed to decode group", err)
		}
		groups = append(groups, transaction.Group{
			Category: transaction.Category(doc.ID.Category),
			Year:     doc.ID.Year,
			Month:    doc.ID.Month,
			// $sum over doubles drifts; amounts are cents.
			Total: decimal.NewFromFloat(doc.Total).Round(2).InexactFloat64(),
			Count: doc.Count,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, classify("error iterating groups", err)
	}
	return groups, nil
}

func aggregatePipeline(userID int64, f transaction.Filter, key transaction.GroupKey, zone string) mongo.Pipeline {
	id := bson.D{}
	if key.Has(transaction.GroupByCategory) {
		id = append(id, bson.E{Key: "category", Value: "$category"})
	}
	if key.Has(transaction.GroupByYear) {
		id = append(id, bson.E{Key: "year", Value: bson.D{{Key: "$year", Value: bson.D{
			{Key: "date", Value: "$date"}, {Key: "timezone", Value: zone},
		}}}})
	}
	if key.Has(transaction.GroupByMonth) {
		id = append(id, bson.E{Key: "month", Value: bson.D{{Key: "$month", Value: bson.D{
			{Key: "date", Value: "$date"}, {Key: "timezone", Value: zone},
		}}}})
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: filterDoc(userID, f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}, {Key: "_id.category", Value: 1},
		}}},
	}
}

// filterDoc renders f as a query document scoped to userID.
func filterDoc(userID int64, f transaction.Filter) bson.D {
	q := bson.D{{Key: "user_id", Value: userID}}
	if f.Category != "" {
		q = append(q, bson.E{Key: "category", Value: string(f.Category)})
	}
	if f.Status != "" {
		q = append(q, bson.E{Key: "status", Value: string(f.Status)})
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q = append(q, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "category", Value: re}},
			bson.D{{Key: "status", Value: re}},
		}})
	}
	if f.From != nil || f.To != nil {
		r := bson.D{}
		if f.From != nil {
			r = append(r, bson.E{Key: "$gte", Value: *f.From})
		}
		if f.To != nil {
			r = append(r, bson.E{Key: "$lte", Value: *f.To})
		}
		q = append(q, bson.E{Key: "date", Value: r})
	}
	return q
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
