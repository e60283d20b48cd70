package adapters

import (
	"fmt"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// ColumnInfo - информация о колонке из каталога БД
type ColumnInfo struct {
	Name         string // Имя колонки
	NativeType   string // Канонический тип в стиле MySQL: "varchar(40)", "int(11)", "tinyint(1)"...
	CatalogType  string // Тип как его вернул каталог СУБД
	Nullable     bool   // Допускает NULL
	IsPrimaryKey bool   // Является ли Primary Key
	IsAutoIncr   bool   // Auto increment/SERIAL/IDENTITY
}

func (c ColumnInfo) String() string {
	flags := ""
	if c.IsPrimaryKey {
		flags += " PK"
	}
	if c.IsAutoIncr {
		flags += " AUTO"
	}
	if !c.Nullable {
		flags += " NOT NULL"
	}
	return fmt.Sprintf("%s %s%s", c.Name, c.NativeType, flags)
}

// ToColumns maps catalog columns to schema columns, resolving each native
// type to a domain. The first column is marked as primary key by convention;
// auto-increment flags are taken from the catalog, which reports only
// columns the backend generates itself (AUTO_INCREMENT, IDENTITY, serial,
// SQLite AUTOINCREMENT).
func ToColumns(infos []ColumnInfo) []schema.Column {
	b := schema.NewBuilder()
	for _, info := range infos {
		b.AddNative(info.Name, info.NativeType)
	}
	cols := b.Build()
	for i, info := range infos {
		cols[i].AutoIncrement = info.IsAutoIncr
	}
	return cols
}

// CatalogHints returns a primary-key hint for the key column the catalog
// reports, keyed by column name. Used when no record type declares a key.
// Composite keys yield the first key column only.
func CatalogHints(infos []ColumnInfo) []schema.Hint {
	for _, info := range infos {
		if info.IsPrimaryKey {
			return []schema.Hint{{Attribute: info.Name, PrimaryKey: true}}
		}
	}
	return nil
}
