package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out the connection repositories run against.
// Usecases never touch *gorm.DB methods directly, so they can be tested
// with in-memory repositories.
type Transactor interface {
	// Conn returns a non-transactional handle bound to ctx.
	Conn(ctx context.Context) *gorm.DB
	// WithinTransaction runs fn in a single transaction, committing when fn
	// returns nil and rolling back otherwise.
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
