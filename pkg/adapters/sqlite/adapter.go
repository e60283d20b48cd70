package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/adapters/base"
	"github.com/ruslano69/rowmap/pkg/core/query"
)

const driverSqlite = "sqlite"

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register("sqlite", func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с SQLite
// Реализует интерфейс adapters.Adapter
type Adapter struct {
	*base.SQLAdapter
}

// Connect устанавливает подключение к SQLite
// Реализует интерфейс adapters.Adapter
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	// In-memory база живет в одном соединении: второе соединение увидит пустую БД
	if isMemoryDSN(cfg.DSN) {
		cfg.MaxConns = 1
	}

	a.SQLAdapter = base.NewSQLAdapter("sqlite", query.SQLite())
	if err := a.OpenDB(ctx, driverSqlite, cfg); err != nil {
		return err
	}

	a.applyPragmas(ctx)
	return nil
}

// NewAdapter создает и подключает адаптер для файла SQLite
func NewAdapter(ctx context.Context, dsn string) (*Adapter, error) {
	adapter := &Adapter{}
	err := adapter.Connect(ctx, adapters.Config{
		Type: "sqlite",
		DSN:  dsn,
	})
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// applyPragmas применяет PRAGMA настройки соединения
func (a *Adapter) applyPragmas(ctx context.Context) {
	pragmas := []string{
		// WAL mode: Write-Ahead Logging
		"PRAGMA journal_mode = WAL",

		// Synchronous NORMAL: безопасно при WAL mode
		"PRAGMA synchronous = NORMAL",

		// Temp store в памяти
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		// journal_mode не меняется для :memory:, это не ошибка
		_, _ = a.DB().ExecContext(ctx, pragma)
	}
}

// GetDatabaseVersion возвращает версию SQLite
// Реализует интерфейс adapters.Adapter
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.DB().QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "SQLite " + version, nil
}

// TableExists проверяет существование таблицы
// Реализует интерфейс adapters.Adapter
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type='table' AND name=?
	`

	var count int
	err := a.DB().QueryRowContext(ctx, query, tableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}

	return count > 0, nil
}

// GetTableNames возвращает список всех таблиц в БД
// Реализует интерфейс adapters.Adapter
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	tables, err := a.QueryStrings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	return tables, nil
}

// DescribeColumns читает колонки через PRAGMA table_info
// Реализует интерфейс adapters.Adapter
func (a *Adapter) DescribeColumns(ctx context.Context, tableName string) ([]adapters.ColumnInfo, error) {
	q := fmt.Sprintf("PRAGMA table_info(%s)", a.Dialect().QuoteIdentifier(tableName))

	rows, err := a.DB().QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}
	defer rows.Close()

	var (
		columns  []adapters.ColumnInfo
		pkCount  int
		rowidIdx = -1
	)

	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     any
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}

		if pk > 0 {
			pkCount++
			if strings.EqualFold(strings.TrimSpace(declType), "INTEGER") {
				rowidIdx = len(columns)
			}
		}

		columns = append(columns, adapters.ColumnInfo{
			Name:         name,
			NativeType:   CanonicalType(declType),
			CatalogType:  declType,
			Nullable:     notNull == 0 && pk == 0,
			IsPrimaryKey: pk > 0,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", tableName)
	}

	// Автоинкремент только при явном AUTOINCREMENT: обычный алиас rowid
	// принимает ключ из записи
	if pkCount == 1 && rowidIdx >= 0 {
		auto, err := a.declaresAutoincrement(ctx, tableName)
		if err != nil {
			return nil, err
		}
		columns[rowidIdx].IsAutoIncr = auto
	}

	return columns, nil
}

// declaresAutoincrement ищет ключевое слово AUTOINCREMENT в DDL таблицы
func (a *Adapter) declaresAutoincrement(ctx context.Context, tableName string) (bool, error) {
	var ddl string
	err := a.DB().QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE`,
		tableName).Scan(&ddl)
	if err != nil {
		return false, fmt.Errorf("failed to read DDL of %s: %w", tableName, err)
	}
	return strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT"), nil
}

// IsUniqueViolation распознает нарушение PRIMARY KEY / UNIQUE
func (a *Adapter) IsUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
