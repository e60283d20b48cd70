package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// KeyStrategy says how a backend hands back a generated primary key.
type KeyStrategy int

const (
	// KeyLastInsertID reads sql.Result.LastInsertId (SQLite, MySQL).
	KeyLastInsertID KeyStrategy = iota

	// KeyReturning appends RETURNING <pk> (PostgreSQL).
	KeyReturning

	// KeyOutput inserts OUTPUT INSERTED.<pk> before VALUES (MS SQL Server).
	KeyOutput
)

// Dialect covers the syntax differences between backends.
type Dialect interface {
	// Name возвращает тип СУБД: "sqlite", "mysql", "postgres", "mssql"
	Name() string

	// QuoteIdentifier экранирует имя таблицы/колонки
	QuoteIdentifier(identifier string) string

	// Placeholder returns the n-th (1-based) bind placeholder.
	Placeholder(n int) string

	// KeyStrategy returns how generated keys are read back.
	KeyStrategy() KeyStrategy

	// EmptyInsert returns the tail of an INSERT with no columns.
	EmptyInsert() string

	// BindValue converts a domain value into a driver argument.
	BindValue(v any, d schema.Domain) any
}

// StandardDialect реализует Dialect для стандартного SQL (SQLite, PostgreSQL, MySQL)
type StandardDialect struct {
	dbType      string
	quoteChar   string // '`' для MySQL, '"' для PostgreSQL/SQLite
	numbered    bool   // $1, $2 ... вместо ?
	keys        KeyStrategy
	nativeBool  bool
	nativeTime  bool
	emptyInsert string
}

// SQLite returns the SQLite dialect.
func SQLite() *StandardDialect {
	return &StandardDialect{
		dbType:      "sqlite",
		quoteChar:   `"`,
		keys:        KeyLastInsertID,
		emptyInsert: "DEFAULT VALUES",
	}
}

// MySQL returns the MySQL dialect.
func MySQL() *StandardDialect {
	return &StandardDialect{
		dbType:      "mysql",
		quoteChar:   "`",
		keys:        KeyLastInsertID,
		emptyInsert: "() VALUES ()",
	}
}

// Postgres returns the PostgreSQL dialect.
func Postgres() *StandardDialect {
	return &StandardDialect{
		dbType:      "postgres",
		quoteChar:   `"`,
		numbered:    true,
		keys:        KeyReturning,
		nativeBool:  true,
		nativeTime:  true,
		emptyInsert: "DEFAULT VALUES",
	}
}

func (d *StandardDialect) Name() string { return d.dbType }

func (d *StandardDialect) QuoteIdentifier(identifier string) string {
	escaped := strings.ReplaceAll(identifier, d.quoteChar, d.quoteChar+d.quoteChar)
	return d.quoteChar + escaped + d.quoteChar
}

func (d *StandardDialect) Placeholder(n int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d *StandardDialect) KeyStrategy() KeyStrategy { return d.keys }

func (d *StandardDialect) EmptyInsert() string { return d.emptyInsert }

func (d *StandardDialect) BindValue(v any, dom schema.Domain) any {
	return bindValue(v, d.nativeBool, d.nativeTime)
}

// MSSQLDialect реализует Dialect для MS SQL Server
type MSSQLDialect struct{}

// MSSQL returns the SQL Server dialect.
func MSSQL() *MSSQLDialect {
	return &MSSQLDialect{}
}

func (d *MSSQLDialect) Name() string { return "mssql" }

// QuoteIdentifier квотирует идентификатор для SQL Server
func (d *MSSQLDialect) QuoteIdentifier(identifier string) string {
	return "[" + strings.ReplaceAll(identifier, "]", "]]") + "]"
}

func (d *MSSQLDialect) Placeholder(n int) string {
	return fmt.Sprintf("@p%d", n)
}

func (d *MSSQLDialect) KeyStrategy() KeyStrategy { return KeyOutput }

func (d *MSSQLDialect) EmptyInsert() string { return "DEFAULT VALUES" }

func (d *MSSQLDialect) BindValue(v any, dom schema.Domain) any {
	return bindValue(v, true, false)
}

func bindValue(v any, nativeBool, nativeTime bool) any {
	switch x := v.(type) {
	case bool:
		if nativeBool {
			return x
		}
		if x {
			return 1
		}
		return 0
	case time.Time:
		// даты хранятся в UTC
		x = x.UTC()
		if nativeTime {
			return x
		}
		// SQLite, MySQL и MSSQL получают дату строкой
		return x.Format(schema.DateTimeLayout)
	default:
		return v
	}
}

// ForType returns the dialect registered for a database type.
func ForType(dbType string) (Dialect, error) {
	switch dbType {
	case "sqlite":
		return SQLite(), nil
	case "mysql":
		return MySQL(), nil
	case "postgres", "postgresql":
		return Postgres(), nil
	case "mssql", "sqlserver":
		return MSSQL(), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", dbType)
	}
}
