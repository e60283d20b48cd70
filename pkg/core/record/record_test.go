package record

import (
	"errors"
	"testing"
	"time"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

type product struct {
	Num   int
	Name  string
	Price float64
	Stock bool
	Added time.Time
}

func productDescriptor(t *testing.T) *Descriptor[product] {
	t.Helper()
	desc, err := Describe(
		Int("Num", func(p *product) *int { return &p.Num }).PrimaryKey(),
		String("Name", func(p *product) *string { return &p.Name }),
		Double("Price", func(p *product) *float64 { return &p.Price }),
		Bool("Stock", func(p *product) *bool { return &p.Stock }),
		Date("Added", func(p *product) *time.Time { return &p.Added }),
	)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	return desc
}

func productStore(t *testing.T) *schema.Store {
	t.Helper()
	store, err := schema.Correlate(schema.Declare(
		schema.Decl{Name: "num", Domain: schema.Int},
		schema.Decl{Name: "name", Domain: schema.String},
		schema.Decl{Name: "price", Domain: schema.Double},
		schema.Decl{Name: "stock", Domain: schema.Bool},
		schema.Decl{Name: "added", Domain: schema.Date},
	), nil)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	return store
}

func TestDescribe(t *testing.T) {
	t.Run("duplicate field", func(t *testing.T) {
		_, err := Describe(
			String("Name", func(p *product) *string { return &p.Name }),
			String("name", func(p *product) *string { return &p.Name }),
		)
		if err == nil {
			t.Error("expected duplicate field error")
		}
	})

	t.Run("two primary keys", func(t *testing.T) {
		_, err := Describe(
			Int("Num", func(p *product) *int { return &p.Num }).PrimaryKey(),
			String("Name", func(p *product) *string { return &p.Name }).PrimaryKey(),
		)
		if err == nil {
			t.Error("expected primary key error")
		}
	})

	t.Run("hints and decls", func(t *testing.T) {
		desc, err := Describe(
			Int("ID", func(p *product) *int { return &p.Num }).Column("num").PrimaryKey().AutoIncrement(),
			String("Name", func(p *product) *string { return &p.Name }).Required(),
		)
		if err != nil {
			t.Fatalf("Describe failed: %v", err)
		}

		hints := desc.Hints()
		if len(hints) != 2 {
			t.Fatalf("expected 2 hints, got %d", len(hints))
		}
		want := schema.Hint{Attribute: "ID", Column: "num", PrimaryKey: true, AutoIncrement: true}
		if hints[0] != want {
			t.Errorf("hint[0] = %+v, want %+v", hints[0], want)
		}
		if !hints[1].Required {
			t.Errorf("hint[1] should be required: %+v", hints[1])
		}

		decls := desc.Decls()
		if decls[0].Name != "num" || decls[0].Domain != schema.Int {
			t.Errorf("decl[0] = %+v", decls[0])
		}
		if decls[1].Name != "Name" || decls[1].Domain != schema.String {
			t.Errorf("decl[1] = %+v", decls[1])
		}
	})
}

func TestMaterialize(t *testing.T) {
	b, err := Bind(productDescriptor(t), productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	tests := []struct {
		name   string
		values []string
		want   product
	}{
		{
			name:   "full row",
			values: []string{"7", "Widget", "9.5", "1", "2024-03-01"},
			want: product{
				Num: 7, Name: "Widget", Price: 9.5, Stock: true,
				Added: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:   "short row falls back to zero",
			values: []string{"3", "Gadget"},
			want:   product{Num: 3, Name: "Gadget"},
		},
		{
			name:   "unparsable values become zero",
			values: []string{"x", "Thing", "cheap", "maybe", "yesterday"},
			want:   product{Name: "Thing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Materialize(tt.values)
			if err != nil {
				t.Fatalf("Materialize failed: %v", err)
			}
			if *got != tt.want {
				t.Errorf("Materialize() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestMaterialize_MissingAttribute(t *testing.T) {
	desc, err := Describe(
		Int("Num", func(p *product) *int { return &p.Num }),
	)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	b, err := Bind(desc, productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	if got := b.Unbound(); len(got) != 4 || got[0] != "name" {
		t.Errorf("Unbound() = %v", got)
	}

	if _, err := b.Materialize([]string{"1", "x"}); !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("expected ErrMissingAttribute, got %v", err)
	}
	if _, err := b.Values(&product{Num: 1}); !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("expected ErrMissingAttribute from Values, got %v", err)
	}

	// ключ привязан - операции по ключу работают
	key, err := b.KeyString(&product{Num: 42})
	if err != nil || key != "42" {
		t.Errorf("KeyString() = %q, %v", key, err)
	}

	rows, err := Rows()
	if err != nil {
		t.Fatal(err)
	}
	rb, err := Bind(rows, productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if key, err := rb.KeyString(&Row{"Name": "x"}); !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("KeyString() without key = %q, %v; want ErrMissingAttribute", key, err)
	}
}

func TestValues(t *testing.T) {
	b, err := Bind(productDescriptor(t), productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	added := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	values, err := b.Values(&product{Num: 5, Name: "Bolt", Price: 0.25, Stock: true, Added: added})
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}

	want := []any{int64(5), "Bolt", 0.25, true, added}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %#v, want %#v", i, values[i], want[i])
		}
	}
}

func TestValues_CrossDomain(t *testing.T) {
	type legacy struct {
		Code  string
		Label string
	}

	desc, err := Describe(
		String("Code", func(l *legacy) *string { return &l.Code }),
		String("Label", func(l *legacy) *string { return &l.Label }),
	)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	store, err := schema.Correlate(schema.Declare(
		schema.Decl{Name: "code", Domain: schema.Int},
		schema.Decl{Name: "label", Domain: schema.Date},
	), nil)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	b, err := Bind(desc, store, nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	values, err := b.Values(&legacy{Code: "12"})
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if values[0] != int64(12) {
		t.Errorf("code = %#v, want int64(12)", values[0])
	}
	if values[1] != nil {
		t.Errorf("empty label should stay unset, got %#v", values[1])
	}

	var ce *schema.CoercionError
	if _, err := b.Values(&legacy{Code: "twelve"}); !errors.As(err, &ce) {
		t.Errorf("expected CoercionError, got %v", err)
	}

	rec, err := b.Materialize([]string{"12", "2024-05-06 07:08:09"})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if rec.Code != "12" || rec.Label != "2024-05-06 07:08:09" {
		t.Errorf("Materialize() = %+v", *rec)
	}
}

func TestSetKey(t *testing.T) {
	b, err := Bind(productDescriptor(t), productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	p := &product{Name: "Nut"}
	if err := b.SetKey(p, int64(17)); err != nil {
		t.Fatalf("SetKey failed: %v", err)
	}
	if p.Num != 17 {
		t.Errorf("Num = %d, want 17", p.Num)
	}

	key, err := b.Key(p)
	if err != nil || key != int64(17) {
		t.Errorf("Key() = %#v, %v", key, err)
	}
}

func TestAlign(t *testing.T) {
	b, err := Bind(productDescriptor(t), productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	got := b.Align(
		[]string{"NAME", "num", "stock", "added", "price"},
		[]string{"Widget", "1", "0", "2024-01-01", "2.5"},
	)
	want := []string{"1", "Widget", "2.5", "0", "2024-01-01"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Align()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// другой набор колонок - позиционно
	row := []string{"1", "Widget"}
	if got := b.Align([]string{"a", "b"}, row); len(got) != 2 || got[0] != "1" {
		t.Errorf("positional Align() = %v", got)
	}
}

type tagged struct {
	ID      int64     `rowmap:"num,pk,autoincrement"`
	Title   string    `rowmap:"name,required"`
	Rating  float32   `rowmap:""`
	Visible bool      `rowmap:"shown"`
	Created time.Time `rowmap:"created_at"`
	Ignored string    `rowmap:"-"`
	Extra   []byte
	hidden  int
}

func TestFromTags(t *testing.T) {
	desc, err := FromTags[tagged]()
	if err != nil {
		t.Fatalf("FromTags failed: %v", err)
	}

	fields := desc.Fields()
	if len(fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(fields))
	}

	hints := desc.Hints()
	if h := hints[0]; h.Attribute != "ID" || h.Column != "num" || !h.PrimaryKey || !h.AutoIncrement {
		t.Errorf("ID hint = %+v", h)
	}
	if h := hints[1]; h.Column != "name" || !h.Required {
		t.Errorf("Title hint = %+v", h)
	}
	if fields[2].Domain() != schema.Double || fields[2].ColumnName() != "Rating" {
		t.Errorf("Rating field = %s/%s", fields[2].ColumnName(), fields[2].Domain())
	}

	cols := schema.NewBuilder().
		AddInt("num").AddString("name").AddDouble("rating").AddBool("shown").AddDate("created_at").
		Build()
	store, err := schema.Correlate(cols, desc.Hints())
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	b, err := Bind(desc, store, nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if u := b.Unbound(); len(u) != 0 {
		t.Fatalf("unbound columns: %v (%s)", u, b)
	}

	rec, err := b.Materialize([]string{"9", "Post", "4.5", "true", "2023-12-31 23:59:59"})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if rec.ID != 9 || rec.Title != "Post" || rec.Rating != 4.5 || !rec.Visible {
		t.Errorf("Materialize() = %+v", *rec)
	}
	if rec.Created != time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC) {
		t.Errorf("Created = %v", rec.Created)
	}
	_ = rec.hidden
}

func TestFromTags_Errors(t *testing.T) {
	type badType struct {
		Data []byte `rowmap:"data"`
	}
	if _, err := FromTags[badType](); err == nil {
		t.Error("expected error for unsupported tagged type")
	}

	type badOption struct {
		ID int `rowmap:"id,primary"`
	}
	if _, err := FromTags[badOption](); err == nil {
		t.Error("expected error for unknown option")
	}

	if _, err := FromTags[int](); err == nil {
		t.Error("expected error for non-struct")
	}
}

func TestRows(t *testing.T) {
	desc, err := Rows(RowField("num", schema.Int).PrimaryKey())
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}

	b, err := Bind(desc, productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if u := b.Unbound(); len(u) != 0 {
		t.Fatalf("dynamic rows should bind every column, unbound: %v", u)
	}

	row, err := b.Materialize([]string{"4", "Washer", "0.1", "0", "2024-02-02"})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if (*row)["num"] != int64(4) || (*row)["name"] != "Washer" || (*row)["stock"] != false {
		t.Errorf("row = %v", *row)
	}

	values, err := b.Values(&Row{"num": 8, "name": "Spring"})
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if values[0] != int64(8) || values[1] != "Spring" || values[2] != nil {
		t.Errorf("values = %#v", values)
	}

	if got := b.Strings(row); got[0] != "4" || got[3] != "0" || got[4] != "2024-02-02" {
		t.Errorf("Strings() = %v", got)
	}
}

func TestValues_ZeroDate(t *testing.T) {
	b, err := Bind(productDescriptor(t), productStore(t), nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	values, err := b.Values(&product{Num: 1})
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if values[4] != nil {
		t.Errorf("zero time should stay unset, got %#v", values[4])
	}
}
