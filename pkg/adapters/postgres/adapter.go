package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/adapters/base"
	"github.com/ruslano69/rowmap/pkg/core/query"
)

// unique_violation
const codeUniqueViolation = "23505"

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register("postgres", func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с PostgreSQL.
// Запросы к каталогу идут через pgxpool, сессии репозитория - через
// database/sql поверх того же пула.
type Adapter struct {
	*base.SQLAdapter
	pool   *pgxpool.Pool
	schema string // public, custom, etc.
}

// Connect устанавливает подключение к PostgreSQL
// Реализует интерфейс adapters.Adapter
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	// Парсим connection string
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Настраиваем pool из конфига
	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	} else {
		config.MaxConns = 10 // default
	}

	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	} else {
		config.MinConns = 2 // default
	}

	// Создаем connection pool
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Пул настроен выше, database/sql лимиты не нужны
	cfg.MaxConns, cfg.MinConns = 0, 0

	a.SQLAdapter = base.NewSQLAdapter("postgres", query.Postgres())
	if err := a.Attach(ctx, stdlib.OpenDBFromPool(pool), cfg); err != nil {
		pool.Close()
		return err
	}

	a.pool = pool
	a.schema = a.SchemaOr("public")

	return nil
}

// Close закрывает database/sql обертку и connection pool
// Реализует интерфейс adapters.Adapter
func (a *Adapter) Close(ctx context.Context) error {
	var err error
	if a.SQLAdapter != nil {
		err = a.SQLAdapter.Close(ctx)
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return err
}

// Pool возвращает pgxpool для прямого доступа (helper метод)
func (a *Adapter) Pool() *pgxpool.Pool {
	return a.pool
}

// Schema возвращает текущую схему
func (a *Adapter) Schema() string {
	return a.schema
}

// TableExists проверяет существование таблицы в текущей схеме
// Реализует интерфейс adapters.Adapter
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = $1
			  AND table_name = $2
		)
	`

	var exists bool
	err := a.pool.QueryRow(ctx, q, a.schema, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}

	return exists, nil
}

// GetTableNames возвращает список всех таблиц в текущей схеме
// Реализует интерфейс adapters.Adapter
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	q := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := a.pool.Query(ctx, q, a.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	return tables, nil
}

// DescribeColumns читает колонки через information_schema.columns
// Реализует интерфейс adapters.Adapter
func (a *Adapter) DescribeColumns(ctx context.Context, tableName string) ([]adapters.ColumnInfo, error) {
	q := `
		SELECT
			column_name,
			data_type,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_default,
			is_identity
		FROM information_schema.columns
		WHERE table_schema = $1
		  AND table_name = $2
		ORDER BY ordinal_position
	`

	pkColumns, err := a.getPrimaryKeyColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary keys: %w", err)
	}

	rows, err := a.pool.Query(ctx, q, a.schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []adapters.ColumnInfo
	for rows.Next() {
		var (
			columnName   string
			dataType     string
			charMaxLen   *int32
			numPrecision *int32
			numScale     *int32
			isNullable   string
			columnDef    *string
			isIdentity   string
		)

		if err := rows.Scan(&columnName, &dataType, &charMaxLen, &numPrecision, &numScale,
			&isNullable, &columnDef, &isIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}

		// Формируем полный тип для канонизации
		fullType := dataType
		if charMaxLen != nil {
			fullType = fmt.Sprintf("%s(%d)", dataType, *charMaxLen)
		} else if numPrecision != nil && numScale != nil && dataType == "numeric" {
			fullType = fmt.Sprintf("%s(%d,%d)", dataType, *numPrecision, *numScale)
		}

		serial := columnDef != nil && strings.HasPrefix(*columnDef, "nextval(")

		columns = append(columns, adapters.ColumnInfo{
			Name:         columnName,
			NativeType:   CanonicalType(fullType),
			CatalogType:  fullType,
			Nullable:     isNullable == "YES",
			IsPrimaryKey: pkColumns[columnName],
			IsAutoIncr:   serial || isIdentity == "YES",
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found or has no columns", a.schema, tableName)
	}

	return columns, nil
}

// getPrimaryKeyColumns возвращает множество колонок Primary Key
func (a *Adapter) getPrimaryKeyColumns(ctx context.Context, tableName string) (map[string]bool, error) {
	q := `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = (quote_ident($1) || '.' || quote_ident($2))::regclass
		  AND i.indisprimary
	`

	pk := make(map[string]bool)

	rows, err := a.pool.Query(ctx, q, a.schema, tableName)
	if err != nil {
		// Если таблица не найдена, возвращаем пустое множество
		return pk, nil
	}
	defer rows.Close()

	for rows.Next() {
		var colName string
		if err := rows.Scan(&colName); err != nil {
			return nil, err
		}
		pk[colName] = true
	}

	// regclass падает на несуществующей таблице уже при чтении
	if err := rows.Err(); err != nil {
		return map[string]bool{}, nil
	}
	return pk, nil
}

// GetDatabaseVersion возвращает версию PostgreSQL
// Реализует интерфейс adapters.Adapter
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.pool.QueryRow(ctx, "SELECT version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// IsUniqueViolation распознает SQLSTATE 23505
func (a *Adapter) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
