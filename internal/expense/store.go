package expense

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/expensebot/core/logger"
	"log/slog"
)

const insertStmt = `
	INSERT INTO expenses (
		owner, correlation_id, occurred_at, description, amount,
		shop, location, purpose, payment, verified
	) VALUES (
		:owner, :correlation_id, :occurred_at, :description, :amount,
		:shop, :location, :purpose, :payment, :verified
	)`

// Store is the append-only persistence adapter for expense records.
// Writes are serialized; reads may run concurrently.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Append writes exactly one record. Rows are never updated or deleted.
func (s *Store) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if _, err := s.db.NamedExecContext(ctx, insertStmt, rec); err != nil {
		logger.Error(ctx, "store", "expense.append",
			slog.Int64("correlation_id", rec.CorrelationID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("append expense %d: %w", rec.CorrelationID, err)
	}
	logger.Debug(ctx, "store", "expense.append",
		slog.Int64("correlation_id", rec.CorrelationID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// Filter narrows a Query. Zero values leave the corresponding column
// unconstrained.
type Filter struct {
	Owner    int64
	Verified string
	Since    string
	Limit    int
}

// Query returns records matching the filter, newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Owner != 0 {
		args = append(args, f.Owner)
		where = append(where, fmt.Sprintf("owner = $%d", len(args)))
	}
	if f.Verified != "" {
		args = append(args, f.Verified)
		where = append(where, fmt.Sprintf("verified = $%d", len(args)))
	}
	if f.Since != "" {
		args = append(args, f.Since)
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}

	query := "SELECT * FROM expenses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var out []Record
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	return out, nil
}

// Recent returns the latest limit records for the owner.
func (s *Store) Recent(ctx context.Context, owner int64, limit int) ([]Record, error) {
	return s.Query(ctx, Filter{Owner: owner, Limit: limit})
}
