package record

import (
	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// Row is a record without a static shape. Keys are attribute names,
// values are domain Go values.
type Row map[string]any

// RowField declares an attribute of a Row, so it can carry flags.
func RowField(name string, d schema.Domain) *Field[Row] {
	return &Field[Row]{
		name:   name,
		domain: d,
		get:    func(r *Row) any { return (*r)[name] },
		set:    func(r *Row, v any) { (*r)[name] = v },
	}
}

// Rows returns a descriptor for Row. Declared fields keep their flags;
// every other column is bound on the fly under its attribute name.
func Rows(fields ...*Field[Row]) (*Descriptor[Row], error) {
	d, err := Describe(fields...)
	if err != nil {
		return nil, err
	}
	d.newFn = func() *Row {
		r := Row{}
		return &r
	}
	d.open = func(col schema.Column) *Field[Row] {
		return RowField(col.Attribute, col.Domain)
	}
	return d, nil
}
