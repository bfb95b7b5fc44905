package services

import (
	"context"

	"bilancio/internal/core"
)

// Store is the narrow persistence contract the engine depends on. Implemented
// by storage.SQLiteRepository; tests substitute an in-memory fake.
type Store interface {
	// ListTransactions returns every transaction ordered by date ascending.
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	// AddTransaction inserts a new transaction and fails with
	// core.ErrDuplicateID when the id already exists.
	AddTransaction(ctx context.Context, t core.Transaction) error
	// PutTransaction upserts a transaction by id.
	PutTransaction(ctx context.Context, t core.Transaction) error
	// DeleteTransaction removes a transaction, core.ErrNotFound when absent.
	DeleteTransaction(ctx context.Context, id string) error
	// ReplaceTransactions atomically swaps the whole collection.
	ReplaceTransactions(ctx context.Context, ts []core.Transaction) error

	ListRules(ctx context.Context) ([]core.RecurringRule, error)
	AddRule(ctx context.Context, r core.RecurringRule) error
	// PutRule updates an existing rule, core.ErrNotFound when absent.
	PutRule(ctx context.Context, r core.RecurringRule) error

	ListPotOverrides(ctx context.Context) ([]core.PotOverride, error)
	PutPotOverride(ctx context.Context, o core.PotOverride) error
}
