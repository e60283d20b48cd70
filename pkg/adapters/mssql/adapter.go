package mssql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sqlserver "github.com/denisenkom/go-mssqldb" // MS SQL Server driver

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/adapters/base"
	"github.com/ruslano69/rowmap/pkg/core/query"
)

// AdapterType identifies the SQL Server adapter in the factory.
const AdapterType = "mssql"

// SQL Server error numbers for key violations.
const (
	errPrimaryKeyViolation  = 2627
	errUniqueIndexViolation = 2601
)

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	// Register MS SQL Server adapter in factory
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{}
	})
}

// Adapter implements the adapters.Adapter interface for Microsoft SQL Server.
type Adapter struct {
	*base.SQLAdapter

	// Version information
	serverVersion    int    // Major version: 11=2012, 13=2016, 14=2017, 15=2019, 16=2022
	serverVersionStr string // Full version string
}

// Connect implements adapters.Adapter interface.
// Connects to MS SQL Server and detects the server version.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	a.SQLAdapter = base.NewSQLAdapter(AdapterType, query.MSSQL())
	if err := a.OpenDB(ctx, "sqlserver", cfg); err != nil {
		return err
	}

	if err := a.detectVersion(ctx); err != nil {
		a.SQLAdapter.Close(ctx)
		return fmt.Errorf("failed to detect server version: %w", err)
	}

	return nil
}

// detectVersion reads SERVERPROPERTY('ProductVersion').
func (a *Adapter) detectVersion(ctx context.Context) error {
	var version string
	err := a.DB().QueryRowContext(ctx, "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))").Scan(&version)
	if err != nil {
		return err
	}

	a.serverVersionStr = version
	a.serverVersion = parseServerVersion(version)
	return nil
}

// parseServerVersion parses SQL Server version string to major version number.
// Examples:
//   - "11.0.2100.60" → 11 (SQL Server 2012)
//   - "15.0.2000.5"  → 15 (SQL Server 2019)
func parseServerVersion(version string) int {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// serverVersionName returns human-readable server version name.
func serverVersionName(major int) string {
	switch major {
	case 11:
		return "SQL Server 2012"
	case 12:
		return "SQL Server 2014"
	case 13:
		return "SQL Server 2016"
	case 14:
		return "SQL Server 2017"
	case 15:
		return "SQL Server 2019"
	case 16:
		return "SQL Server 2022"
	default:
		return fmt.Sprintf("SQL Server (version %d)", major)
	}
}

// GetDatabaseVersion returns the SQL Server version string.
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	return fmt.Sprintf("%s (%s)", serverVersionName(a.serverVersion), a.serverVersionStr), nil
}

// parseTableName splits "schema.table"; without a schema part defSchema is used.
func parseTableName(tableName, defSchema string) (string, string) {
	if schemaName, table, ok := strings.Cut(tableName, "."); ok {
		return strings.Trim(schemaName, "[]"), strings.Trim(table, "[]")
	}
	return defSchema, strings.Trim(tableName, "[]")
}

// GetTableNames returns all table names in the current schema.
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	q := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	tables, err := a.QueryStrings(ctx, q, a.SchemaOr("dbo"))
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

// TableExists checks if a table exists in the current schema.
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	schemaName, table := parseTableName(tableName, a.SchemaOr("dbo"))

	q := `
		SELECT COUNT(*)
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1
		  AND TABLE_NAME = @p2
		  AND TABLE_TYPE = 'BASE TABLE'
	`

	var count int
	err := a.DB().QueryRowContext(ctx, q, schemaName, table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}

	return count > 0, nil
}

// DescribeColumns reads column metadata from INFORMATION_SCHEMA.
func (a *Adapter) DescribeColumns(ctx context.Context, tableName string) ([]adapters.ColumnInfo, error) {
	schemaName, table := parseTableName(tableName, a.SchemaOr("dbo"))

	q := `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			c.CHARACTER_MAXIMUM_LENGTH,
			c.NUMERIC_PRECISION,
			c.NUMERIC_SCALE,
			c.IS_NULLABLE,
			CASE
				WHEN pk.COLUMN_NAME IS NOT NULL THEN 1
				ELSE 0
			END AS IS_PRIMARY_KEY,
			COLUMNPROPERTY(OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME), c.COLUMN_NAME, 'IsIdentity') AS IS_IDENTITY
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT ku.TABLE_SCHEMA, ku.TABLE_NAME, ku.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			INNER JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku
				ON tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
				AND tc.CONSTRAINT_NAME = ku.CONSTRAINT_NAME
				AND tc.TABLE_SCHEMA = ku.TABLE_SCHEMA
				AND tc.TABLE_NAME = ku.TABLE_NAME
		) pk ON c.TABLE_SCHEMA = pk.TABLE_SCHEMA
			AND c.TABLE_NAME = pk.TABLE_NAME
			AND c.COLUMN_NAME = pk.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION
	`

	rows, err := a.DB().QueryContext(ctx, q, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query table schema: %w", err)
	}
	defer rows.Close()

	var columns []adapters.ColumnInfo
	for rows.Next() {
		var (
			columnName   string
			dataType     string
			length       *int64
			precision    *int64
			scale        *int64
			isNullable   string
			isPrimaryKey int
			isIdentity   *int64
		)

		if err := rows.Scan(&columnName, &dataType, &length, &precision, &scale,
			&isNullable, &isPrimaryKey, &isIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}

		fullType := dataType
		switch {
		case length != nil && *length > 0:
			fullType = fmt.Sprintf("%s(%d)", dataType, *length)
		case length != nil && *length == -1:
			fullType = dataType + "(max)"
		case precision != nil && scale != nil && isExactNumeric(dataType):
			fullType = fmt.Sprintf("%s(%d,%d)", dataType, *precision, *scale)
		}

		columns = append(columns, adapters.ColumnInfo{
			Name:         columnName,
			NativeType:   CanonicalType(fullType),
			CatalogType:  fullType,
			Nullable:     strings.EqualFold(isNullable, "YES"),
			IsPrimaryKey: isPrimaryKey == 1,
			IsAutoIncr:   isIdentity != nil && *isIdentity == 1,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s.%s not found or has no columns", schemaName, table)
	}

	return columns, nil
}

// IsUniqueViolation recognizes errors 2627 and 2601.
func (a *Adapter) IsUniqueViolation(err error) bool {
	var msErr sqlserver.Error
	if !errors.As(err, &msErr) {
		return false
	}
	return msErr.Number == errPrimaryKeyViolation || msErr.Number == errUniqueIndexViolation
}
