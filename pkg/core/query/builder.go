package query

import (
	"fmt"
	"strings"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// Kind identifies the operation a statement was built for.
type Kind int

const (
	KindSelectAll Kind = iota
	KindSelectBy
	KindMaxKey
	KindInsert
	KindUpdateField
	KindUpdateRecord
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelectAll:
		return "select-all"
	case KindSelectBy:
		return "select-by-column"
	case KindMaxKey:
		return "max-key"
	case KindInsert:
		return "insert"
	case KindUpdateField:
		return "update-field"
	case KindUpdateRecord:
		return "update-record"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Statement is a parameterized SQL template plus its ordered arguments.
type Statement struct {
	Kind Kind
	SQL  string
	Args []any

	// Columns lists the bound columns in argument order (insert and
	// update-record only).
	Columns []string

	// ReturnsKey is set when executing the statement yields the generated
	// key as a one-column result row.
	ReturnsKey bool

	// ReadsInsertID is set when the generated key must be taken from
	// sql.Result.LastInsertId.
	ReadsInsertID bool
}

// Builder produces statements for one table from its column metadata.
type Builder struct {
	table     string
	store     *schema.Store
	dialect   Dialect
	converter *schema.Converter
}

// NewBuilder создает построитель запросов для таблицы
func NewBuilder(table string, store *schema.Store, dialect Dialect, converter *schema.Converter) *Builder {
	if converter == nil {
		converter = schema.NewConverter()
	}
	return &Builder{
		table:     table,
		store:     store,
		dialect:   dialect,
		converter: converter,
	}
}

// Dialect returns the dialect statements are rendered with.
func (b *Builder) Dialect() Dialect {
	return b.dialect
}

func (b *Builder) quotedTable() string {
	return b.dialect.QuoteIdentifier(b.table)
}

// SelectAll строит SELECT * FROM table
func (b *Builder) SelectAll() Statement {
	return Statement{
		Kind: KindSelectAll,
		SQL:  "SELECT * FROM " + b.quotedTable(),
	}
}

// SelectBy builds a lookup on one column. The value is always bound as text.
func (b *Builder) SelectBy(column, value string) Statement {
	return Statement{
		Kind: KindSelectBy,
		SQL: fmt.Sprintf("SELECT * FROM %s WHERE %s = %s",
			b.quotedTable(), b.dialect.QuoteIdentifier(column), b.dialect.Placeholder(1)),
		Args: []any{value},
	}
}

// SelectByPrimaryKey looks a row up by the store's primary-key column.
func (b *Builder) SelectByPrimaryKey(value string) Statement {
	return b.SelectBy(b.store.PrimaryKey().Name, value)
}

// MaxPrimaryKey строит SELECT MAX(pk) для синтеза следующего ключа
func (b *Builder) MaxPrimaryKey() Statement {
	return Statement{
		Kind: KindMaxKey,
		SQL: fmt.Sprintf("SELECT MAX(%s) FROM %s",
			b.dialect.QuoteIdentifier(b.store.PrimaryKey().Name), b.quotedTable()),
	}
}

// Insert builds an INSERT from values aligned with the store's columns.
//
// A column is used when it is required or its value has content. A column
// that is both primary key and auto-increment is never used. A required
// column without a value is bound as its domain's empty literal.
func (b *Builder) Insert(values []any) (Statement, error) {
	if len(values) != b.store.Len() {
		return Statement{}, fmt.Errorf("insert: got %d values for %d columns", len(values), b.store.Len())
	}

	var (
		columns []string
		quoted  []string
		holders []string
		args    []any
	)

	for i, col := range b.store.Columns() {
		if col.PrimaryKey && col.AutoIncrement {
			continue
		}

		v := values[i]
		if !col.Required && !schema.HasContent(v, col.Domain) {
			continue
		}
		if v == nil {
			v = b.emptyValue(col.Domain)
		}

		columns = append(columns, col.Name)
		quoted = append(quoted, b.dialect.QuoteIdentifier(col.Name))
		holders = append(holders, b.dialect.Placeholder(len(args)+1))
		if v == nil {
			args = append(args, nil)
		} else {
			args = append(args, b.dialect.BindValue(v, col.Domain))
		}
	}

	pk := b.store.PrimaryKey()
	st := Statement{Kind: KindInsert, Args: args, Columns: columns}

	var output, returning string
	if pk.AutoIncrement {
		switch b.dialect.KeyStrategy() {
		case KeyReturning:
			returning = " RETURNING " + b.dialect.QuoteIdentifier(pk.Name)
			st.ReturnsKey = true
		case KeyOutput:
			output = " OUTPUT INSERTED." + b.dialect.QuoteIdentifier(pk.Name)
			st.ReturnsKey = true
		default:
			st.ReadsInsertID = true
		}
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.quotedTable())
	if len(columns) == 0 {
		sb.WriteString(output)
		sb.WriteString(" ")
		sb.WriteString(b.dialect.EmptyInsert())
	} else {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString(")")
		sb.WriteString(output)
		sb.WriteString(" VALUES (")
		sb.WriteString(strings.Join(holders, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(returning)

	st.SQL = sb.String()
	return st, nil
}

// emptyValue turns the empty literal of a domain into a bind value.
// The STRING literal "null" means SQL NULL.
func (b *Builder) emptyValue(d schema.Domain) any {
	if d == schema.String {
		return nil
	}
	return b.converter.Parse(b.converter.EmptyLiteral(d), d)
}

// UpdateField строит UPDATE одной колонки по первичному ключу.
// Новое значение идет первым параметром, ключ вторым.
func (b *Builder) UpdateField(key, column string, value any, d schema.Domain) Statement {
	pk := b.store.PrimaryKey()
	return Statement{
		Kind: KindUpdateField,
		SQL: fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
			b.quotedTable(),
			b.dialect.QuoteIdentifier(column), b.dialect.Placeholder(1),
			b.dialect.QuoteIdentifier(pk.Name), b.dialect.Placeholder(2)),
		Args:    []any{b.dialect.BindValue(value, d), key},
		Columns: []string{column},
	}
}

// UpdateRecord rewrites every non-key column. Unlike Insert no column is
// skipped for lack of content.
func (b *Builder) UpdateRecord(values []any) (Statement, error) {
	if len(values) != b.store.Len() {
		return Statement{}, fmt.Errorf("update: got %d values for %d columns", len(values), b.store.Len())
	}

	var (
		sets    []string
		columns []string
		args    []any
	)

	for i, col := range b.store.Columns() {
		if col.PrimaryKey {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s",
			b.dialect.QuoteIdentifier(col.Name), b.dialect.Placeholder(len(args)+1)))
		columns = append(columns, col.Name)
		if values[i] == nil {
			args = append(args, nil)
		} else {
			args = append(args, b.dialect.BindValue(values[i], col.Domain))
		}
	}

	if len(sets) == 0 {
		return Statement{}, fmt.Errorf("update: table %s has no non-key columns", b.table)
	}

	pkIdx := b.store.PrimaryKeyIndex()
	pk := b.store.At(pkIdx)
	args = append(args, b.dialect.BindValue(values[pkIdx], pk.Domain))

	return Statement{
		Kind: KindUpdateRecord,
		SQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
			b.quotedTable(),
			strings.Join(sets, ", "),
			b.dialect.QuoteIdentifier(pk.Name), b.dialect.Placeholder(len(args))),
		Args:    args,
		Columns: columns,
	}, nil
}

// Delete строит DELETE по первичному ключу; ключ передается строкой
func (b *Builder) Delete(key string) Statement {
	return Statement{
		Kind: KindDelete,
		SQL: fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
			b.quotedTable(),
			b.dialect.QuoteIdentifier(b.store.PrimaryKey().Name), b.dialect.Placeholder(1)),
		Args: []any{key},
	}
}
