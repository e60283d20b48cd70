package record

import (
	"fmt"
	"strings"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// Descriptor is the setup-time description of a record shape: the ordered
// attributes of T with their accessors and declarative flags.
type Descriptor[T any] struct {
	fields []*Field[T]
	newFn  func() *T

	// open descriptors bind columns no field claims (see Rows).
	open func(col schema.Column) *Field[T]
}

// Describe builds a descriptor from registered fields.
//
//	desc, err := record.Describe(
//		record.Int("Num", func(p *Product) *int { return &p.Num }).PrimaryKey(),
//		record.String("Name", func(p *Product) *string { return &p.Name }),
//	)
func Describe[T any](fields ...*Field[T]) (*Descriptor[T], error) {
	seen := make(map[string]bool, len(fields))
	keys := 0
	for _, f := range fields {
		if f == nil || f.name == "" {
			return nil, fmt.Errorf("record: field without name")
		}
		lower := strings.ToLower(f.name)
		if seen[lower] {
			return nil, fmt.Errorf("record: duplicate field %q", f.name)
		}
		seen[lower] = true
		if f.pk {
			keys++
		}
	}
	if keys > 1 {
		return nil, fmt.Errorf("record: %d fields designated as primary key", keys)
	}

	return &Descriptor[T]{
		fields: fields,
		newFn:  func() *T { return new(T) },
	}, nil
}

// MustDescribe is like Describe but panics on error. Meant for package-level
// descriptors.
func MustDescribe[T any](fields ...*Field[T]) *Descriptor[T] {
	d, err := Describe(fields...)
	if err != nil {
		panic(err)
	}
	return d
}

// Fields returns the registered fields in declaration order.
func (d *Descriptor[T]) Fields() []*Field[T] {
	out := make([]*Field[T], len(d.fields))
	copy(out, d.fields)
	return out
}

// Hints returns the correlation metadata of every field.
func (d *Descriptor[T]) Hints() []schema.Hint {
	hints := make([]schema.Hint, 0, len(d.fields))
	for _, f := range d.fields {
		hints = append(hints, f.hint())
	}
	return hints
}

// Decls returns a static column declaration derived from the fields, in
// declaration order. Useful when the table cannot be introspected.
func (d *Descriptor[T]) Decls() []schema.Decl {
	decls := make([]schema.Decl, 0, len(d.fields))
	for _, f := range d.fields {
		decls = append(decls, schema.Decl{Name: f.ColumnName(), Domain: f.domain})
	}
	return decls
}

// New allocates an empty record.
func (d *Descriptor[T]) New() *T {
	return d.newFn()
}

func (d *Descriptor[T]) field(attr string) *Field[T] {
	for _, f := range d.fields {
		if strings.EqualFold(f.name, attr) {
			return f
		}
	}
	return nil
}
