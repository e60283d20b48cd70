package base

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Session wraps a *sql.Tx for the lifetime of one repository operation.
type Session struct {
	tx        *sql.Tx
	committed bool
	closed    bool
}

// Begin начинает транзакцию и возвращает сессию
func Begin(ctx context.Context, db *sql.DB) (*Session, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Session{tx: tx}, nil
}

func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.tx.ExecContext(ctx, query, args...)
}

func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.tx.QueryContext(ctx, query, args...)
}

func (s *Session) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.tx.QueryRowContext(ctx, query, args...)
}

// Commit фиксирует транзакцию
func (s *Session) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return err
	}
	s.committed = true
	return nil
}

// Close откатывает транзакцию, если она не была зафиксирована
func (s *Session) Close() error {
	if s.committed || s.closed {
		return nil
	}
	s.closed = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
