package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// ErrMissingAttribute is returned when a column has no record attribute
// to read from or write to. It aborts the current operation only.
var ErrMissingAttribute = errors.New("missing record attribute")

// Binding maps every column of a store to the field that feeds it.
// It is computed once by Bind and is read-only afterwards.
type Binding[T any] struct {
	desc   *Descriptor[T]
	store  *schema.Store
	conv   *schema.Converter
	fields []*Field[T] // by column index, nil when unbound
}

// Bind precomputes the column-to-field index. Columns are matched to
// fields by case-insensitive equality of the column's attribute name.
// Unmatched columns stay unbound and fail only the operations that need
// them.
func Bind[T any](desc *Descriptor[T], store *schema.Store, conv *schema.Converter) (*Binding[T], error) {
	if desc == nil {
		return nil, fmt.Errorf("record: nil descriptor")
	}
	if store == nil {
		return nil, fmt.Errorf("record: nil store")
	}
	if conv == nil {
		conv = schema.NewConverter()
	}

	b := &Binding[T]{
		desc:   desc,
		store:  store,
		conv:   conv,
		fields: make([]*Field[T], store.Len()),
	}
	for i, col := range store.Columns() {
		f := desc.field(col.Attribute)
		if f == nil && desc.open != nil {
			f = desc.open(col)
		}
		b.fields[i] = f
	}
	return b, nil
}

// Store returns the bound store.
func (b *Binding[T]) Store() *schema.Store {
	return b.store
}

func (b *Binding[T]) missing(i int) error {
	col := b.store.At(i)
	return fmt.Errorf("%w: column %s (attribute %s)", ErrMissingAttribute, col.Name, col.Attribute)
}

// Materialize builds one record from raw column values in store order.
// A short sequence or an unparsable value leaves the attribute at its
// domain's zero value.
func (b *Binding[T]) Materialize(values []string) (*T, error) {
	rec := b.desc.New()
	for i, col := range b.store.Columns() {
		f := b.fields[i]
		if f == nil {
			return nil, b.missing(i)
		}

		v := schema.Zero(col.Domain)
		if i < len(values) {
			v = b.conv.Parse(values[i], col.Domain)
		}
		b.assign(f, rec, v)
	}
	return rec, nil
}

// assign converts v to the field's own domain; on failure the field gets
// its zero value.
func (b *Binding[T]) assign(f *Field[T], rec *T, v any) {
	cv, err := b.conv.Coerce(v, f.domain)
	if err != nil {
		cv = schema.Zero(f.domain)
	}
	f.set(rec, cv)
}

// Align reorders a result row to store order when the result columns are
// exactly the store's columns in some order. Otherwise the row is taken
// positionally.
func (b *Binding[T]) Align(columns, row []string) []string {
	if len(columns) != b.store.Len() {
		return row
	}
	out := make([]string, b.store.Len())
	for j, name := range columns {
		_, i, ok := b.store.Lookup(name)
		if !ok || j >= len(row) {
			return row
		}
		out[i] = row[j]
	}
	return out
}

// Values reads the record's attributes in store order, coerced to each
// column's domain. Unset values (nil) stay nil.
func (b *Binding[T]) Values(rec *T) ([]any, error) {
	values := make([]any, b.store.Len())
	for i, col := range b.store.Columns() {
		v, err := b.value(rec, i, col)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (b *Binding[T]) value(rec *T, i int, col schema.Column) (any, error) {
	f := b.fields[i]
	if f == nil {
		return nil, b.missing(i)
	}
	v := f.get(rec)
	if v == nil {
		return nil, nil
	}
	// пустая строка в не-строковой колонке = значение не задано
	if s, ok := v.(string); ok && s == "" && col.Domain != schema.String {
		return nil, nil
	}
	cv, err := b.conv.Coerce(v, col.Domain)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col.Name, err)
	}
	// нулевое время - тоже "не задано", обязательная колонка получит литерал
	if t, ok := cv.(time.Time); ok && t.IsZero() {
		return nil, nil
	}
	return cv, nil
}

// Key returns the record's primary-key value in the key column's domain.
func (b *Binding[T]) Key(rec *T) (any, error) {
	i := b.store.PrimaryKeyIndex()
	return b.value(rec, i, b.store.At(i))
}

// KeyString renders the primary-key value as text. An unset key is
// ErrMissingAttribute, never an empty string.
func (b *Binding[T]) KeyString(rec *T) (string, error) {
	v, err := b.Key(rec)
	if err != nil {
		return "", err
	}
	pk := b.store.PrimaryKey()
	if v == nil {
		return "", fmt.Errorf("%w: no value for key column %s", ErrMissingAttribute, pk.Name)
	}
	return b.conv.Format(v, pk.Domain), nil
}

// SetKey writes a generated key into the record's primary-key attribute.
func (b *Binding[T]) SetKey(rec *T, v any) error {
	i := b.store.PrimaryKeyIndex()
	f := b.fields[i]
	if f == nil {
		return b.missing(i)
	}
	cv, err := b.conv.Coerce(v, f.domain)
	if err != nil {
		return err
	}
	f.set(rec, cv)
	return nil
}

// Format renders column i of rec for display. Unbound columns render empty.
func (b *Binding[T]) Format(rec *T, i int) string {
	f := b.fields[i]
	if f == nil {
		return ""
	}
	return b.conv.Format(f.get(rec), b.store.At(i).Domain)
}

// Strings renders every column of rec in store order.
func (b *Binding[T]) Strings(rec *T) []string {
	out := make([]string, b.store.Len())
	for i := range out {
		out[i] = b.Format(rec, i)
	}
	return out
}

// Unbound lists columns without a field, for diagnostics at setup.
func (b *Binding[T]) Unbound() []string {
	var names []string
	for i, f := range b.fields {
		if f == nil {
			names = append(names, b.store.At(i).Name)
		}
	}
	return names
}

// String describes the binding as "column→attribute" pairs.
func (b *Binding[T]) String() string {
	parts := make([]string, b.store.Len())
	for i, col := range b.store.Columns() {
		attr := "?"
		if f := b.fields[i]; f != nil {
			attr = f.name
		}
		parts[i] = col.Name + "→" + attr
	}
	return strings.Join(parts, ", ")
}
