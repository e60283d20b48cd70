/*
Package adapters предоставляет универсальный интерфейс для работы с различными СУБД.

# Архитектура двухуровневого адаптера

	┌─────────────────────────────────────────┐
	│    repository.Repository[T]             │
	│  - schema.Store                         │
	│  - query.Builder                        │
	│  - record.Binding                       │
	└─────────────────┬───────────────────────┘
	                  │
	┌─────────────────▼───────────────────────┐
	│  Level 1: Universal Adapter Interface   │  ← pkg/adapters/adapter.go
	│                                         │
	│  type Adapter interface {               │
	│    Connect(ctx, Config) error           │
	│    Open(ctx) (Session, error)           │
	│    DescribeColumns(ctx, table)          │
	│    IsUniqueViolation(err) bool          │
	│    ...                                  │
	│  }                                      │
	└─────────────────┬───────────────────────┘
	                  │
	     ┌────────────┼───────────┬───────────┐
	┌────▼─────┐ ┌────▼─────┐ ┌───▼──────┐ ┌──▼──────┐
	│ SQLite   │ │PostgreSQL│ │ MS SQL   │ │ MySQL   │  ← Level 2
	└──────────┘ └──────────┘ └──────────┘ └─────────┘

# Level 1: Универсальный интерфейс

  - Lifecycle: Connect, Close, Ping
  - Sessions: Open возвращает Session (транзакция), Commit фиксирует,
    Close без Commit откатывает
  - Introspection: DescribeColumns, TableExists, GetTableNames
  - Metadata: GetDatabaseVersion, GetDatabaseType, Dialect

DescribeColumns возвращает ColumnInfo с типом, приведенным к словарю MySQL
(varchar, tinyint, int, decimal, datetime). ToColumns и CatalogHints
переводят его в schema.Column и schema.Hint.

# Level 2: Специфичные реализации

  - pkg/adapters/sqlite - modernc.org/sqlite (без CGO)
  - pkg/adapters/postgres - pgx/v5 pool + database/sql через stdlib
  - pkg/adapters/mssql - go-mssqldb, плейсхолдеры @pN
  - pkg/adapters/mysql - go-sql-driver/mysql

Общая часть (database/sql, сессии, чтение строк) живет в pkg/adapters/base.

# Использование

	import (
		"github.com/ruslano69/rowmap/pkg/adapters"
		_ "github.com/ruslano69/rowmap/pkg/adapters/sqlite"
	)

	adapter, err := adapters.New(ctx, adapters.Config{
		Type: "sqlite",
		DSN:  "app.db",
	})
	if err != nil {
		return err
	}
	defer adapter.Close(ctx)

	infos, err := adapter.DescribeColumns(ctx, "Users")

Адаптер по умолчанию регистрируется через SetDefault и читается через Default.
*/
package adapters
