package mssql

import (
	"strings"
)

// Type mapping for MS SQL Server 2012+
//
// SQL Server Type              Canonical        Domain
// ──────────────────────────────────────────────────────
// INT, BIGINT, SMALLINT        int(11), bigint  INT
// TINYINT (0..255)             smallint         INT
// BIT                          tinyint(1)       BOOL
// DECIMAL, NUMERIC, MONEY      decimal(p,s)     DOUBLE
// FLOAT, REAL                  decimal(18,2)    DOUBLE
// DATE, DATETIME, DATETIME2    datetime         DATE
// VARCHAR, NVARCHAR, CHAR      varchar(n)       STRING
// everything else              text             STRING

// CanonicalType converts a SQL Server type to the MySQL-style type string
// the domain mapping understands.
func CanonicalType(sqlType string) string {
	sqlType = strings.ToLower(strings.TrimSpace(sqlType))
	baseType, params := splitType(sqlType)

	switch baseType {
	case "int", "smallint":
		return "int(11)"
	case "bigint":
		return "bigint"
	case "tinyint":
		// tinyint in SQL Server is a byte, not a flag
		return "smallint"
	case "bit":
		return "tinyint(1)"
	case "decimal", "numeric":
		if params != "" {
			return "decimal(" + params + ")"
		}
		return "decimal(18,0)"
	case "money":
		return "decimal(19,4)"
	case "smallmoney":
		return "decimal(10,4)"
	case "float", "real":
		return "decimal(18,2)"
	case "date", "datetime", "datetime2", "smalldatetime", "datetimeoffset":
		return "datetime"
	case "varchar", "nvarchar", "char", "nchar":
		if params == "" || params == "max" {
			return "varchar(8000)"
		}
		return "varchar(" + params + ")"
	default:
		// text, ntext, uniqueidentifier, xml, varbinary...
		return "text"
	}
}

func isExactNumeric(dataType string) bool {
	switch strings.ToLower(dataType) {
	case "decimal", "numeric":
		return true
	}
	return false
}

// splitType extracts base type and parameters from parentheses.
func splitType(sqlType string) (baseType, params string) {
	if idx := strings.Index(sqlType, "("); idx != -1 {
		params = strings.TrimSuffix(strings.TrimSpace(sqlType[idx+1:]), ")")
		sqlType = sqlType[:idx]
	}
	return strings.TrimSpace(sqlType), strings.ReplaceAll(params, " ", "")
}
