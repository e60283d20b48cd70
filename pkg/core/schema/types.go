package schema

import (
	"fmt"
	"strings"
)

// Domain - один из пяти скалярных видов значения колонки или атрибута
type Domain int

const (
	String Domain = iota
	Int
	Bool
	Double
	Date
)

// String возвращает имя домена в верхнем регистре
func (d Domain) String() string {
	switch d {
	case String:
		return "STRING"
	case Int:
		return "INT"
	case Bool:
		return "BOOL"
	case Double:
		return "DOUBLE"
	case Date:
		return "DATE"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// ParseDomain разбирает имя домена ("int", "STRING", ...)
func ParseDomain(name string) (Domain, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "STRING", "TEXT":
		return String, nil
	case "INT", "INTEGER":
		return Int, nil
	case "BOOL", "BOOLEAN":
		return Bool, nil
	case "DOUBLE", "DECIMAL", "FLOAT":
		return Double, nil
	case "DATE", "DATETIME":
		return Date, nil
	default:
		return String, fmt.Errorf("unknown domain: %q", name)
	}
}

// DomainFromNativeType определяет домен по типу из каталога.
// Порядок проверок важен: "tinyint" раньше общего "int".
func DomainFromNativeType(native string) Domain {
	t := strings.ToLower(native)
	switch {
	case strings.Contains(t, "varchar"):
		return String
	case strings.Contains(t, "tinyint"):
		return Bool
	case strings.Contains(t, "int"):
		return Int
	case strings.Contains(t, "decimal"):
		return Double
	case strings.Contains(t, "datetime"):
		return Date
	default:
		return String
	}
}

// Column описывает колонку таблицы и атрибут записи, который она заполняет
type Column struct {
	// Name - имя колонки в таблице
	Name string

	// Attribute - имя атрибута записи. Совпадает с Name, если при
	// сопоставлении не было переопределения.
	Attribute string

	Domain        Domain
	PrimaryKey    bool
	AutoIncrement bool
	Required      bool

	// NativeType - тип из каталога; пусто для объявленных колонок
	NativeType string
}

func (c Column) String() string {
	return fmt.Sprintf("%s (%s)", c.Attribute, c.Domain)
}

// CoercionError - значение не разбирается для домена
type CoercionError struct {
	Domain Domain
	Value  string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s: %v", e.Value, e.Domain, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}
