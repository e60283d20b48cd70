package base

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/core/query"
)

// SQLAdapter holds the database/sql pool and the parts every backend
// shares: lifecycle, sessions and metadata. Backends embed it and add
// their catalog queries.
type SQLAdapter struct {
	db      *sql.DB
	dbType  string
	dialect query.Dialect
	config  adapters.Config
}

// NewSQLAdapter создает SQLAdapter для указанного типа СУБД
func NewSQLAdapter(dbType string, dialect query.Dialect) *SQLAdapter {
	return &SQLAdapter{
		dbType:  dbType,
		dialect: dialect,
	}
}

// OpenDB opens the pool with driverName and verifies it with a ping.
func (a *SQLAdapter) OpenDB(ctx context.Context, driverName string, cfg adapters.Config) error {
	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	return a.Attach(ctx, db, cfg)
}

// Attach adopts an already opened pool.
func (a *SQLAdapter) Attach(ctx context.Context, db *sql.DB, cfg adapters.Config) error {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	a.config = cfg
	return nil
}

// Close закрывает соединение с БД
func (a *SQLAdapter) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping проверяет доступность БД
func (a *SQLAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.db.PingContext(ctx)
}

// Open начинает сессию (транзакцию) для одной операции
func (a *SQLAdapter) Open(ctx context.Context) (adapters.Session, error) {
	if a.db == nil {
		return nil, fmt.Errorf("adapter not connected")
	}
	return Begin(ctx, a.db)
}

// GetDatabaseType возвращает тип СУБД
func (a *SQLAdapter) GetDatabaseType() string {
	return a.dbType
}

// Dialect returns the backend's SQL dialect.
func (a *SQLAdapter) Dialect() query.Dialect {
	return a.dialect
}

// DB возвращает *sql.DB для прямого доступа (helper метод)
func (a *SQLAdapter) DB() *sql.DB {
	return a.db
}

// Config returns the configuration the adapter was connected with.
func (a *SQLAdapter) Config() adapters.Config {
	return a.config
}

// SchemaOr returns the configured schema, or def when none is set.
func (a *SQLAdapter) SchemaOr(def string) string {
	if a.config.Schema != "" {
		return a.config.Schema
	}
	return def
}

// QueryStrings runs a catalog query returning one text column.
func (a *SQLAdapter) QueryStrings(ctx context.Context, q string, args ...any) ([]string, error) {
	if a.db == nil {
		return nil, fmt.Errorf("adapter not connected")
	}

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
