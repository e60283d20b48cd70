package postgres

import (
	"strings"
)

// CanonicalType переводит тип PostgreSQL (как его отдает information_schema,
// с параметрами в скобках) в словарь типов MySQL.
func CanonicalType(pgType string) string {
	pgType = strings.ToLower(strings.TrimSpace(pgType))
	baseType, params := splitType(pgType)

	switch baseType {
	// Integer types
	case "smallint", "int2", "integer", "int", "int4", "serial", "serial4":
		return "int(11)"
	case "bigint", "int8", "bigserial", "serial8":
		return "bigint"

	// Boolean
	case "boolean", "bool":
		return "tinyint(1)"

	// Numeric/Decimal и плавающая точка
	case "numeric", "decimal", "real", "float4", "double precision", "float8", "money":
		if params != "" {
			return "decimal(" + params + ")"
		}
		return "decimal(18,2)"

	// Date/Time types
	case "date", "timestamp", "timestamp without time zone",
		"timestamp with time zone", "timestamptz":
		return "datetime"

	// Text types
	case "character varying", "varchar", "character", "char":
		if params != "" {
			return "varchar(" + params + ")"
		}
		return "varchar(255)"

	default:
		// text, uuid, json, jsonb, bytea, массивы - как текст
		return "text"
	}
}

// splitType извлекает базовый тип и параметры из скобок
func splitType(pgType string) (baseType, params string) {
	if idx := strings.Index(pgType, "("); idx != -1 {
		params = strings.TrimSuffix(strings.TrimSpace(pgType[idx+1:]), ")")
		pgType = pgType[:idx]
	}
	return strings.TrimSpace(pgType), strings.ReplaceAll(params, " ", "")
}
