// Package memory is a process-local store for development and tests. It
// implements the same repository contracts as the postgres and mongo stores.
package memory

import (
	"sync"
	"time"

	"findash/internal/domain/category"
	"findash/internal/domain/transaction"
	"findash/internal/domain/user"
)

type txRecord struct {
	seq int64
	tx  transaction.Transaction
}

// DB holds every collection behind one lock.
type DB struct {
	mu  sync.RWMutex
	loc *time.Location
	now func() time.Time

	seq          int64
	transactions map[string]*txRecord
	categories   map[string]*category.Category
	users        map[int64]*user.User
	lastUserID   int64
}

// NewDB creates an empty store. loc is the zone used to derive calendar
// years and months when aggregating.
func NewDB(loc *time.Location) *DB {
	if loc == nil {
		loc = time.Local
	}
	return &DB{
		loc:          loc,
		now:          time.Now,
		transactions: make(map[string]*txRecord),
		categories:   make(map[string]*category.Category),
		users:        make(map[int64]*user.User),
	}
}
