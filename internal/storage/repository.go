// Package storage persists the budgeting collections in SQLite. The schema
// is managed by embedded migrations run at open.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ready() error {
	if r == nil || r.db == nil {
		return core.ErrStoreUnavailable
	}
	return nil
}

const transactionColumns = "id, date, amount_cents, type, category, account, status, is_recurring, recurring_id, note, created_at"

// ListTransactions implements services.Store, ordered by date ascending.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY date, id")
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

// AddTransaction implements services.Store; duplicate ids fail with
// core.ErrDuplicateID.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) error {
	if err := r.ready(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		transactionArgs(t)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s: %w", t.ID, core.ErrDuplicateID)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved",
		"id", t.ID,
		"date", t.Date.String(),
		"amount_cents", t.Amount.Cents,
		"account", string(t.Account))
	return nil
}

// PutTransaction upserts by id.
func (r *SQLiteRepository) PutTransaction(ctx context.Context, t core.Transaction) error {
	if err := r.ready(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   date = excluded.date,
		   amount_cents = excluded.amount_cents,
		   type = excluded.type,
		   category = excluded.category,
		   account = excluded.account,
		   status = excluded.status,
		   is_recurring = excluded.is_recurring,
		   recurring_id = excluded.recurring_id,
		   note = excluded.note`,
		transactionArgs(t)...)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes by id; core.ErrNotFound when absent.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	if err := r.ready(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ClearTransactions drops the whole collection.
func (r *SQLiteRepository) ClearTransactions(ctx context.Context) error {
	if err := r.ready(); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	return nil
}

// ReplaceTransactions swaps the collection inside a single database
// transaction: either the whole import lands or nothing changes.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, ts []core.Transaction) error {
	if err := r.ready(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range ts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			transactionArgs(t)...)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Transaction collection replaced", "count", len(ts))
	return nil
}

// ListRules implements services.Store.
func (r *SQLiteRepository) ListRules(ctx context.Context) ([]core.RecurringRule, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, type, category, amount_cents, note, account, day_of_month, active, frequency FROM recurring_rules ORDER BY category, id")
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurringRule
	for rows.Next() {
		var (
			rule   core.RecurringRule
			active int
		)
		if err := rows.Scan(&rule.ID, &rule.Type, &rule.Category, &rule.Amount.Cents,
			&rule.Note, &rule.Account, &rule.DayOfMonth, &active, &rule.Frequency); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule.Active = active != 0
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

// AddRule inserts a new rule; core.ErrDuplicateID on id collision.
func (r *SQLiteRepository) AddRule(ctx context.Context, rule core.RecurringRule) error {
	if err := r.ready(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO recurring_rules (id, type, category, amount_cents, note, account, day_of_month, active, frequency) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rule.ID, string(rule.Type), rule.Category, rule.Amount.Cents, rule.Note,
		string(rule.Account), rule.DayOfMonth, boolToInt(rule.Active), string(rule.Frequency))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rule %s: %w", rule.ID, core.ErrDuplicateID)
		}
		return fmt.Errorf("insert rule: %w", err)
	}
	return nil
}

// PutRule updates an existing rule; core.ErrNotFound when absent.
func (r *SQLiteRepository) PutRule(ctx context.Context, rule core.RecurringRule) error {
	if err := r.ready(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE recurring_rules SET type = ?, category = ?, amount_cents = ?, note = ?, account = ?, day_of_month = ?, active = ?, frequency = ? WHERE id = ?",
		string(rule.Type), rule.Category, rule.Amount.Cents, rule.Note,
		string(rule.Account), rule.DayOfMonth, boolToInt(rule.Active), string(rule.Frequency), rule.ID)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, core.ErrNotFound)
	}
	return nil
}

// ListPotOverrides implements services.Store.
func (r *SQLiteRepository) ListPotOverrides(ctx context.Context) ([]core.PotOverride, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT category, month, limit_cents FROM pot_overrides ORDER BY category, month")
	if err != nil {
		return nil, fmt.Errorf("query pot overrides: %w", err)
	}
	defer rows.Close()

	var overrides []core.PotOverride
	for rows.Next() {
		var (
			o     core.PotOverride
			month string
		)
		if err := rows.Scan(&o.Category, &month, &o.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan pot override: %w", err)
		}
		if month != "" {
			m, err := core.ParseMonth(month)
			if err != nil {
				return nil, fmt.Errorf("pot override month: %w", err)
			}
			o.Month = m
		}
		overrides = append(overrides, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pot overrides: %w", err)
	}
	return overrides, nil
}

// PutPotOverride upserts an override keyed by (category, month). A zero
// month stores the category default.
func (r *SQLiteRepository) PutPotOverride(ctx context.Context, o core.PotOverride) error {
	if err := r.ready(); err != nil {
		return err
	}

	month := ""
	if !o.Month.IsZero() {
		month = o.Month.String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pot_overrides (category, month, limit_cents) VALUES (?, ?, ?)
		 ON CONFLICT(category, month) DO UPDATE SET limit_cents = excluded.limit_cents`,
		o.Category, month, o.Limit.Cents)
	if err != nil {
		return fmt.Errorf("upsert pot override: %w", err)
	}
	return nil
}

func transactionArgs(t core.Transaction) []any {
	var recurringID any
	if t.RecurringID != "" {
		recurringID = t.RecurringID
	}
	return []any{
		t.ID,
		t.Date.String(),
		t.Amount.Cents,
		string(t.Type),
		t.Category,
		string(t.Account),
		string(t.Status),
		boolToInt(t.IsRecurring),
		recurringID,
		t.Note,
		t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t           core.Transaction
		date        string
		isRecurring int
		recurringID sql.NullString
		createdAt   string
	)
	if err := rows.Scan(&t.ID, &date, &t.Amount.Cents, &t.Type, &t.Category,
		&t.Account, &t.Status, &isRecurring, &recurringID, &t.Note, &createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	t.Date = parsed
	t.IsRecurring = isRecurring != 0
	t.RecurringID = recurringID.String
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		t.CreatedAt = ts
	} else {
		// CreatedAt is audit metadata, never financial input; a bad value
		// stays zero but must not pass silently.
		slog.Warn("Unparseable created_at, keeping zero value",
			"id", t.ID, "created_at", createdAt)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
