package record

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// TagName is the struct tag FromTags reads.
const TagName = "rowmap"

var timeType = reflect.TypeOf(time.Time{})

// FromTags builds a descriptor from the exported fields of struct T.
//
// The tag format is `rowmap:"column,pk,autoincrement,required"`: the first
// element overrides the column name (may be empty), the rest are flags.
// `rowmap:"-"` skips a field. Untagged fields of a supported kind are
// included under their Go name.
//
// Reflection happens here, once. The accessors only index into the
// struct by the field position found at setup.
func FromTags[T any]() (*Descriptor[T], error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record: %s is not a struct", rt)
	}

	var fields []*Field[T]
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag, tagged := sf.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}

		d, ok := domainOf(sf.Type)
		if !ok {
			if tagged {
				return nil, fmt.Errorf("record: field %s has unsupported type %s", sf.Name, sf.Type)
			}
			continue
		}

		f := reflectField[T](sf.Name, i, d)

		parts := strings.Split(tag, ",")
		if col := strings.TrimSpace(parts[0]); col != "" {
			f.Column(col)
		}
		for _, opt := range parts[1:] {
			switch strings.ToLower(strings.TrimSpace(opt)) {
			case "pk", "primarykey":
				f.PrimaryKey()
			case "autoincrement", "autoinc":
				f.AutoIncrement()
			case "required":
				f.Required()
			case "":
			default:
				return nil, fmt.Errorf("record: field %s: unknown tag option %q", sf.Name, opt)
			}
		}

		fields = append(fields, f)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("record: %s has no mappable fields", rt)
	}
	return Describe(fields...)
}

func domainOf(t reflect.Type) (schema.Domain, bool) {
	if t == timeType {
		return schema.Date, true
	}
	switch t.Kind() {
	case reflect.String:
		return schema.String, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return schema.Int, true
	case reflect.Bool:
		return schema.Bool, true
	case reflect.Float32, reflect.Float64:
		return schema.Double, true
	}
	return schema.String, false
}

func reflectField[T any](name string, index int, d schema.Domain) *Field[T] {
	at := func(r *T) reflect.Value {
		return reflect.ValueOf(r).Elem().Field(index)
	}

	f := &Field[T]{name: name, domain: d}
	switch d {
	case schema.String:
		f.get = func(r *T) any { return at(r).String() }
		f.set = func(r *T, v any) { at(r).SetString(v.(string)) }
	case schema.Int:
		f.get = func(r *T) any { return at(r).Int() }
		f.set = func(r *T, v any) { at(r).SetInt(v.(int64)) }
	case schema.Bool:
		f.get = func(r *T) any { return at(r).Bool() }
		f.set = func(r *T, v any) { at(r).SetBool(v.(bool)) }
	case schema.Double:
		f.get = func(r *T) any { return at(r).Float() }
		f.set = func(r *T, v any) { at(r).SetFloat(v.(float64)) }
	case schema.Date:
		f.get = func(r *T) any { return at(r).Interface().(time.Time) }
		f.set = func(r *T, v any) { at(r).Set(reflect.ValueOf(v.(time.Time))) }
	}
	return f
}
