package record

import (
	"time"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// Field is one registered attribute of T: a name, a domain, the
// declarative flags and an accessor pair.
//
// get returns the attribute as its domain's Go value (string, int64,
// bool, float64, time.Time); set accepts exactly that value.
type Field[T any] struct {
	name   string
	column string
	domain schema.Domain

	pk       bool
	autoIncr bool
	required bool

	get func(*T) any
	set func(*T, any)
}

// Column overrides the column the attribute maps to.
func (f *Field[T]) Column(name string) *Field[T] {
	f.column = name
	return f
}

// PrimaryKey designates the attribute as the primary key.
func (f *Field[T]) PrimaryKey() *Field[T] {
	f.pk = true
	return f
}

// AutoIncrement marks the key as generated by the database.
func (f *Field[T]) AutoIncrement() *Field[T] {
	f.autoIncr = true
	return f
}

// Required forces the column into every INSERT.
func (f *Field[T]) Required() *Field[T] {
	f.required = true
	return f
}

// Name returns the attribute name.
func (f *Field[T]) Name() string { return f.name }

// Domain returns the attribute's own domain.
func (f *Field[T]) Domain() schema.Domain { return f.domain }

// ColumnName returns the override column, or the attribute name.
func (f *Field[T]) ColumnName() string {
	if f.column != "" {
		return f.column
	}
	return f.name
}

func (f *Field[T]) hint() schema.Hint {
	return schema.Hint{
		Attribute:     f.name,
		Column:        f.column,
		PrimaryKey:    f.pk,
		AutoIncrement: f.autoIncr,
		Required:      f.required,
	}
}

// String registers a STRING attribute.
func String[T any, V ~string](name string, ptr func(*T) *V) *Field[T] {
	return &Field[T]{
		name:   name,
		domain: schema.String,
		get:    func(r *T) any { return string(*ptr(r)) },
		set:    func(r *T, v any) { *ptr(r) = V(v.(string)) },
	}
}

// Int registers an INT attribute.
func Int[T any, V ~int | ~int8 | ~int16 | ~int32 | ~int64](name string, ptr func(*T) *V) *Field[T] {
	return &Field[T]{
		name:   name,
		domain: schema.Int,
		get:    func(r *T) any { return int64(*ptr(r)) },
		set:    func(r *T, v any) { *ptr(r) = V(v.(int64)) },
	}
}

// Bool registers a BOOL attribute.
func Bool[T any, V ~bool](name string, ptr func(*T) *V) *Field[T] {
	return &Field[T]{
		name:   name,
		domain: schema.Bool,
		get:    func(r *T) any { return bool(*ptr(r)) },
		set:    func(r *T, v any) { *ptr(r) = V(v.(bool)) },
	}
}

// Double registers a DOUBLE attribute.
func Double[T any, V ~float32 | ~float64](name string, ptr func(*T) *V) *Field[T] {
	return &Field[T]{
		name:   name,
		domain: schema.Double,
		get:    func(r *T) any { return float64(*ptr(r)) },
		set:    func(r *T, v any) { *ptr(r) = V(v.(float64)) },
	}
}

// Date registers a DATE attribute.
func Date[T any](name string, ptr func(*T) *time.Time) *Field[T] {
	return &Field[T]{
		name:   name,
		domain: schema.Date,
		get:    func(r *T) any { return *ptr(r) },
		set:    func(r *T, v any) { *ptr(r) = v.(time.Time) },
	}
}
