package sqlite

import (
	"strings"
)

// CanonicalType переводит объявленный тип SQLite в словарь типов MySQL,
// по которому определяется домен колонки.
//
//	INTEGER, BIGINT          → int(11), bigint
//	BOOLEAN, BOOL, TINYINT   → tinyint(1)
//	REAL, DOUBLE, NUMERIC    → decimal(...)
//	DATE, DATETIME           → datetime
//	VARCHAR(n), CHAR(n)      → varchar(n)
//	всё остальное            → text
func CanonicalType(declared string) string {
	declared = strings.ToUpper(strings.TrimSpace(declared))
	baseType, params := splitType(declared)

	switch baseType {
	case "BOOLEAN", "BOOL", "TINYINT":
		return "tinyint(1)"
	case "BIGINT", "UNSIGNED BIG INT", "INT8":
		return "bigint"
	case "INTEGER", "INT", "SMALLINT", "MEDIUMINT", "INT2":
		return "int(11)"
	case "REAL", "FLOAT", "DOUBLE", "DOUBLE PRECISION", "NUMERIC", "DECIMAL":
		if params != "" {
			return "decimal(" + params + ")"
		}
		return "decimal(18,2)"
	case "DATE", "DATETIME", "TIMESTAMP":
		return "datetime"
	case "VARCHAR", "CHAR", "CHARACTER", "NVARCHAR", "NCHAR", "VARYING CHARACTER":
		if params != "" {
			return "varchar(" + params + ")"
		}
		return "varchar(255)"
	default:
		// SQLite динамическая типизация - по умолчанию TEXT
		return "text"
	}
}

// splitType извлекает базовый тип и параметры из скобок
func splitType(sqliteType string) (baseType, params string) {
	if idx := strings.Index(sqliteType, "("); idx != -1 {
		params = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sqliteType[idx+1:]), ")"))
		sqliteType = sqliteType[:idx]
	}
	return strings.TrimSpace(sqliteType), strings.ReplaceAll(params, " ", "")
}
