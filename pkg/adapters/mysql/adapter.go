package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/adapters/base"
	"github.com/ruslano69/rowmap/pkg/core/query"
)

// AdapterType идентификатор MySQL адаптера
const AdapterType = "mysql"

// ER_DUP_ENTRY
const errDuplicateEntry = 1062

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter реализует adapters.Adapter для MySQL
type Adapter struct {
	*base.SQLAdapter
}

func init() {
	// Регистрируем MySQL адаптер в фабрике
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Connect подключается к MySQL базе данных
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	a.SQLAdapter = base.NewSQLAdapter(AdapterType, query.MySQL())
	return a.OpenDB(ctx, "mysql", cfg)
}

// GetDatabaseVersion возвращает версию MySQL
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.DB().QueryRowContext(ctx, "SELECT VERSION()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// GetTableNames возвращает список всех таблиц в базе данных
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	tables, err := a.QueryStrings(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

// TableExists проверяет существование таблицы
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	q := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
	`

	var count int
	err := a.DB().QueryRowContext(ctx, q, tableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}

	return count > 0, nil
}

// DescribeColumns читает колонки из information_schema.columns.
// COLUMN_TYPE MySQL уже является каноническим словарем типов.
func (a *Adapter) DescribeColumns(ctx context.Context, tableName string) ([]adapters.ColumnInfo, error) {
	q := `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY, EXTRA
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := a.DB().QueryContext(ctx, q, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []adapters.ColumnInfo
	for rows.Next() {
		var name, columnType, nullable, key, extra string
		if err := rows.Scan(&name, &columnType, &nullable, &key, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}

		columns = append(columns, adapters.ColumnInfo{
			Name:         name,
			NativeType:   strings.ToLower(columnType),
			CatalogType:  columnType,
			Nullable:     strings.EqualFold(nullable, "YES"),
			IsPrimaryKey: key == "PRI",
			IsAutoIncr:   strings.Contains(strings.ToLower(extra), "auto_increment"),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", tableName)
	}

	return columns, nil
}

// IsUniqueViolation распознает ER_DUP_ENTRY
func (a *Adapter) IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}
