package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"findash/internal/domain/transaction"
	"findash/internal/shared/apperr"
)

func lookup(t *testing.T, d bson.D, key string) any {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not found in %v", key, d)
	return nil
}

func TestFilterDoc(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := filterDoc(3, transaction.Filter{
		Category: transaction.Expense,
		Search:   "p.d",
		From:     &from,
	})

	if got := lookup(t, q, "user_id"); got != int64(3) {
		t.Errorf("user_id = %v", got)
	}
	if got := lookup(t, q, "category"); got != "Expense" {
		t.Errorf("category = %v", got)
	}

	or := lookup(t, q, "$or").(bson.A)
	if len(or) != 2 {
		t.Fatalf("$or has %d branches, want 2", len(or))
	}
	re := lookup(t, or[0].(bson.D), "category").(primitive.Regex)
	if re.Pattern != `p\.d` || re.Options != "i" {
		t.Errorf("regex = %+v, want escaped case-insensitive pattern", re)
	}

	dateRange := lookup(t, q, "date").(bson.D)
	if len(dateRange) != 1 || dateRange[0].Key != "$gte" {
		t.Errorf("date = %v, want only $gte", dateRange)
	}
}

func TestFilterDoc_UserOnly(t *testing.T) {
	q := filterDoc(9, transaction.Filter{})
	if len(q) != 1 {
		t.Errorf("filterDoc() = %v, want only user_id", q)
	}
}

func TestAggregatePipeline(t *testing.T) {
	p := aggregatePipeline(1, transaction.Filter{}, transaction.GroupByCategory|transaction.GroupByMonth, "Europe/Rome")
	if len(p) != 3 {
		t.Fatalf("pipeline has %d stages, want 3", len(p))
	}

	group := lookup(t, p[1], "$group").(bson.D)
	id := lookup(t, group, "_id").(bson.D)
	if len(id) != 2 || id[0].Key != "category" || id[1].Key != "month" {
		t.Fatalf("_id = %v, want category and month", id)
	}

	month := lookup(t, id[1].Value.(bson.D), "$month").(bson.D)
	if tz := lookup(t, month, "timezone"); tz != "Europe/Rome" {
		t.Errorf("timezone = %v", tz)
	}
}

func TestClassify(t *testing.T) {
	if err := classify("op", context.DeadlineExceeded); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("deadline should be unavailable, got %v", err)
	}
	if err := classify("op", mongo.ErrClientDisconnected); !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("disconnected should be unavailable, got %v", err)
	}
	if err := classify("op", errors.New("bad")); errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("plain error classified as unavailable: %v", err)
	}
	if classify("op", nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestNonEmpty(t *testing.T) {
	empty := ""
	id := "abc"
	if nonEmpty(nil) != nil || nonEmpty(&empty) != nil {
		t.Error("nil and empty ids should clear the link")
	}
	if got := nonEmpty(&id); got == nil || *got != "abc" || got == &id {
		t.Errorf("nonEmpty(%q) = %v, want a copy", id, got)
	}
}
