package base

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// UniversalTypeConverter - универсальный конвертер значений БД в текст
// Устраняет дублирование кода конвертации между адаптерами
type UniversalTypeConverter struct{}

// NewUniversalTypeConverter создает новый UniversalTypeConverter
func NewUniversalTypeConverter() *UniversalTypeConverter {
	return &UniversalTypeConverter{}
}

// DBValueToString конвертирует значение БД в строку для последующей обработки
// Общий метод с поддержкой специфичных типов для разных СУБД. NULL → "".
func (c *UniversalTypeConverter) DBValueToString(value any, dbType string) string {
	switch dbType {
	case "postgres":
		return c.pgValueToString(value)
	case "mssql":
		return c.mssqlValueToString(value)
	default:
		return c.genericValueToString(value)
	}
}

// pgValueToString конвертирует pgx значение в сырую строку
// PostgreSQL-специфичные типы: UUID, JSONB, NUMERIC
func (c *UniversalTypeConverter) pgValueToString(val any) string {
	switch v := val.(type) {
	case [16]byte:
		// UUID как массив байт
		return fmt.Sprintf("%x-%x-%x-%x-%x",
			v[0:4], v[4:6], v[6:8], v[8:10], v[10:16])

	case map[string]any, []any:
		// JSON/JSONB - конвертируем в JSON строку
		jsonBytes, _ := json.Marshal(v)
		return string(jsonBytes)

	case pgtype.Numeric:
		// PostgreSQL NUMERIC/DECIMAL - конвертируем через Float64
		if !v.Valid {
			return ""
		}
		if v.NaN {
			return "NaN"
		}
		if v.InfinityModifier != 0 {
			if v.InfinityModifier > 0 {
				return "Infinity"
			}
			return "-Infinity"
		}
		f64, err := v.Float64Value()
		if err == nil && f64.Valid {
			return fmt.Sprintf("%v", f64.Float64)
		}
		return v.Int.String()

	default:
		return c.genericValueToString(val)
	}
}

// mssqlValueToString конвертирует MS SQL значение в строку
// DECIMAL и MONEY приходят как []byte с текстом числа
func (c *UniversalTypeConverter) mssqlValueToString(val any) string {
	if v, ok := val.([]byte); ok {
		return string(v)
	}
	return c.genericValueToString(val)
}

// genericValueToString конвертирует общее значение БД в строку
func (c *UniversalTypeConverter) genericValueToString(val any) string {
	if val == nil {
		return ""
	}

	switch v := val.(type) {
	case []byte:
		return string(v)

	case string:
		return v

	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)

	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)

	case float32, float64:
		return fmt.Sprintf("%v", v)

	case bool:
		if v {
			return "1"
		}
		return "0"

	case time.Time:
		return v.UTC().Format(schema.DateTimeLayout)

	default:
		if s, ok := val.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v)
	}
}

// ReadStrings drains rows into text cells, one slice per row, using the
// conversion rules of dbType. The caller still owns rows.
func (c *UniversalTypeConverter) ReadStrings(rows *sql.Rows, dbType string) ([]string, [][]string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	var out [][]string
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = c.DBValueToString(v, dbType)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error reading rows: %w", err)
	}

	return columns, out, nil
}
