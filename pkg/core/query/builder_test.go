package query

import (
	"strings"
	"testing"
	"time"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

func productStore(t *testing.T, hints ...schema.Hint) *schema.Store {
	t.Helper()
	cols := schema.Declare(
		schema.Decl{Name: "num", Domain: schema.Int},
		schema.Decl{Name: "name", Domain: schema.String},
		schema.Decl{Name: "price", Domain: schema.Double},
		schema.Decl{Name: "active", Domain: schema.Bool},
	)
	store, err := schema.Correlate(cols, hints)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	return store
}

func TestSelectStatements(t *testing.T) {
	tests := []struct {
		dialect  Dialect
		all      string
		selectBy string
		max      string
		del      string
	}{
		{
			SQLite(),
			`SELECT * FROM "product"`,
			`SELECT * FROM "product" WHERE "name" = ?`,
			`SELECT MAX("num") FROM "product"`,
			`DELETE FROM "product" WHERE "num" = ?`,
		},
		{
			MySQL(),
			"SELECT * FROM `product`",
			"SELECT * FROM `product` WHERE `name` = ?",
			"SELECT MAX(`num`) FROM `product`",
			"DELETE FROM `product` WHERE `num` = ?",
		},
		{
			Postgres(),
			`SELECT * FROM "product"`,
			`SELECT * FROM "product" WHERE "name" = $1`,
			`SELECT MAX("num") FROM "product"`,
			`DELETE FROM "product" WHERE "num" = $1`,
		},
		{
			MSSQL(),
			`SELECT * FROM [product]`,
			`SELECT * FROM [product] WHERE [name] = @p1`,
			`SELECT MAX([num]) FROM [product]`,
			`DELETE FROM [product] WHERE [num] = @p1`,
		},
	}

	store := productStore(t)

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			b := NewBuilder("product", store, tt.dialect, nil)

			if got := b.SelectAll().SQL; got != tt.all {
				t.Errorf("SelectAll = %q, want %q", got, tt.all)
			}

			st := b.SelectBy("name", "Sugar")
			if st.SQL != tt.selectBy {
				t.Errorf("SelectBy = %q, want %q", st.SQL, tt.selectBy)
			}
			if len(st.Args) != 1 || st.Args[0] != "Sugar" {
				t.Errorf("SelectBy args = %v", st.Args)
			}

			if got := b.MaxPrimaryKey().SQL; got != tt.max {
				t.Errorf("MaxPrimaryKey = %q, want %q", got, tt.max)
			}

			del := b.Delete("5")
			if del.SQL != tt.del {
				t.Errorf("Delete = %q, want %q", del.SQL, tt.del)
			}
			if del.Args[0] != "5" {
				t.Errorf("Delete must bind the key as text, got %#v", del.Args[0])
			}
		})
	}
}

func TestInsertSkipsEmptyColumns(t *testing.T) {
	b := NewBuilder("product", productStore(t), SQLite(), nil)

	st, err := b.Insert([]any{int64(1), "Sugar", 0.0, true})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	want := `INSERT INTO "product" ("num", "name", "active") VALUES (?, ?, ?)`
	if st.SQL != want {
		t.Errorf("SQL = %q, want %q", st.SQL, want)
	}
	if len(st.Args) != 3 {
		t.Fatalf("Expected 3 args, got %d", len(st.Args))
	}
	if st.Args[2] != 1 {
		t.Errorf("Expected bool bound as 1 for sqlite, got %#v", st.Args[2])
	}
	if st.ReturnsKey || st.ReadsInsertID {
		t.Error("Non-autoincrement key must not be read back")
	}
}

func TestInsertRequiredColumnAlwaysUsed(t *testing.T) {
	store := productStore(t, schema.Hint{Attribute: "price", Required: true})
	b := NewBuilder("product", store, SQLite(), nil)

	st, err := b.Insert([]any{int64(3), "", 0.0, false})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !strings.Contains(st.SQL, `"price"`) {
		t.Errorf("Required column missing from insert: %s", st.SQL)
	}
	if strings.Contains(st.SQL, `"name"`) {
		t.Errorf("Empty optional column must be skipped: %s", st.SQL)
	}
}

func TestInsertRequiredNilUsesEmptyLiteral(t *testing.T) {
	store := productStore(t,
		schema.Hint{Attribute: "price", Required: true},
		schema.Hint{Attribute: "name", Required: true},
	)
	b := NewBuilder("product", store, SQLite(), nil)

	st, err := b.Insert([]any{int64(3), nil, nil, nil})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	want := `INSERT INTO "product" ("num", "name", "price") VALUES (?, ?, ?)`
	if st.SQL != want {
		t.Fatalf("SQL = %q, want %q", st.SQL, want)
	}
	if st.Args[1] != nil {
		t.Errorf("Required STRING without value must bind NULL, got %#v", st.Args[1])
	}
	if st.Args[2] != float64(0) {
		t.Errorf("Required DOUBLE without value must bind 0, got %#v", st.Args[2])
	}
}

func TestInsertAutoIncrementKey(t *testing.T) {
	hint := schema.Hint{Attribute: "num", PrimaryKey: true, AutoIncrement: true}

	tests := []struct {
		dialect Dialect
		sql     string
		returns bool
	}{
		{SQLite(), `INSERT INTO "product" ("name") VALUES (?)`, false},
		{MySQL(), "INSERT INTO `product` (`name`) VALUES (?)", false},
		{Postgres(), `INSERT INTO "product" ("name") VALUES ($1) RETURNING "num"`, true},
		{MSSQL(), `INSERT INTO [product] ([name]) OUTPUT INSERTED.[num] VALUES (@p1)`, true},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			b := NewBuilder("product", productStore(t, hint), tt.dialect, nil)
			st, err := b.Insert([]any{int64(0), "Sugar", nil, nil})
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
			if st.SQL != tt.sql {
				t.Errorf("SQL = %q, want %q", st.SQL, tt.sql)
			}
			if st.ReturnsKey != tt.returns {
				t.Errorf("ReturnsKey = %v, want %v", st.ReturnsKey, tt.returns)
			}
			if st.ReadsInsertID == tt.returns {
				t.Errorf("ReadsInsertID = %v, want %v", st.ReadsInsertID, !tt.returns)
			}
		})
	}
}

func TestInsertWithoutColumns(t *testing.T) {
	hint := schema.Hint{Attribute: "num", PrimaryKey: true, AutoIncrement: true}

	tests := map[string]struct {
		dialect Dialect
		sql     string
	}{
		"sqlite":   {SQLite(), `INSERT INTO "product" DEFAULT VALUES`},
		"mysql":    {MySQL(), "INSERT INTO `product` () VALUES ()"},
		"postgres": {Postgres(), `INSERT INTO "product" DEFAULT VALUES RETURNING "num"`},
		"mssql":    {MSSQL(), `INSERT INTO [product] OUTPUT INSERTED.[num] DEFAULT VALUES`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b := NewBuilder("product", productStore(t, hint), tt.dialect, nil)
			st, err := b.Insert([]any{int64(0), "", 0.0, nil})
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
			if st.SQL != tt.sql {
				t.Errorf("SQL = %q, want %q", st.SQL, tt.sql)
			}
		})
	}
}

func TestInsertValueCountMismatch(t *testing.T) {
	b := NewBuilder("product", productStore(t), SQLite(), nil)
	if _, err := b.Insert([]any{int64(1)}); err == nil {
		t.Error("Expected error for wrong number of values")
	}
}

func TestUpdateField(t *testing.T) {
	b := NewBuilder("product", productStore(t), Postgres(), nil)

	st := b.UpdateField("1", "price", 2.5, schema.Double)
	want := `UPDATE "product" SET "price" = $1 WHERE "num" = $2`
	if st.SQL != want {
		t.Errorf("SQL = %q, want %q", st.SQL, want)
	}
	if st.Args[0] != 2.5 || st.Args[1] != "1" {
		t.Errorf("Unexpected args: %#v", st.Args)
	}
}

func TestUpdateRecord(t *testing.T) {
	b := NewBuilder("product", productStore(t), MySQL(), nil)

	st, err := b.UpdateRecord([]any{int64(7), "Salt", 0.0, false})
	if err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}

	want := "UPDATE `product` SET `name` = ?, `price` = ?, `active` = ? WHERE `num` = ?"
	if st.SQL != want {
		t.Errorf("SQL = %q, want %q", st.SQL, want)
	}
	if len(st.Args) != 4 {
		t.Fatalf("Expected 4 args, got %d", len(st.Args))
	}
	if st.Args[2] != 0 {
		t.Errorf("Expected false bound as 0 for mysql, got %#v", st.Args[2])
	}
	if st.Args[3] != int64(7) {
		t.Errorf("Expected key as last arg, got %#v", st.Args[3])
	}
}

func TestBindValueDates(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	if got := SQLite().BindValue(ts, schema.Date); got != "2024-01-15 10:30:00" {
		t.Errorf("sqlite date = %#v", got)
	}
	if got := Postgres().BindValue(ts, schema.Date); got != ts {
		t.Errorf("postgres must bind time natively, got %#v", got)
	}
	if got := MSSQL().BindValue(true, schema.Bool); got != true {
		t.Errorf("mssql must bind bool natively, got %#v", got)
	}

	// не-UTC время пишется в UTC
	msk := time.Date(2024, 3, 1, 9, 30, 0, 0, time.FixedZone("MSK", 3*60*60))
	if got := MySQL().BindValue(msk, schema.Date); got != "2024-03-01 06:30:00" {
		t.Errorf("mysql date in MSK = %#v", got)
	}
	if got, ok := Postgres().BindValue(msk, schema.Date).(time.Time); !ok || got.Location() != time.UTC || !got.Equal(msk) {
		t.Errorf("postgres date in MSK = %v", got)
	}
}

func TestForType(t *testing.T) {
	for _, name := range []string{"sqlite", "mysql", "postgres", "postgresql", "mssql", "sqlserver"} {
		if _, err := ForType(name); err != nil {
			t.Errorf("ForType(%q) failed: %v", name, err)
		}
	}
	if _, err := ForType("oracle"); err == nil {
		t.Error("Expected error for unknown database type")
	}
}

func TestQuoteIdentifierEscapes(t *testing.T) {
	if got := SQLite().QuoteIdentifier(`a"b`); got != `"a""b"` {
		t.Errorf("sqlite quote = %s", got)
	}
	if got := MSSQL().QuoteIdentifier("a]b"); got != "[a]]b]" {
		t.Errorf("mssql quote = %s", got)
	}
}
