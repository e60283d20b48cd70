package commands

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/rowmap/pkg/adapters"
	_ "github.com/ruslano69/rowmap/pkg/adapters/sqlite"
	"github.com/ruslano69/rowmap/pkg/audit"
)

// newEnv - SQLite файл с таблицей product и двумя строками
func newEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	adapter, err := adapters.New(ctx, adapters.Config{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "cli.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	t.Cleanup(func() { adapter.Close(ctx) })

	s, err := adapter.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE product (num INT PRIMARY KEY, name VARCHAR(40), price DECIMAL(10,2))`,
		`INSERT INTO product (num, name, price) VALUES (1, 'Widget', 2.5)`,
		`INSERT INTO product (num, name, price) VALUES (2, 'Bolt', 0.1)`,
	} {
		if _, err := s.Exec(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	s.Close()

	out := &bytes.Buffer{}
	return &Env{Adapter: adapter, Log: zerolog.Nop(), Out: out}, out
}

func TestListAndDescribe(t *testing.T) {
	ctx := context.Background()
	env, out := newEnv(t)

	if err := ListTables(ctx, env); err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if !strings.Contains(out.String(), "1. product") {
		t.Errorf("Unexpected list output:\n%s", out)
	}

	out.Reset()
	if err := DescribeTable(ctx, env, "product"); err != nil {
		t.Fatalf("DescribeTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header + 3 columns, got:\n%s", out)
	}
	if !strings.Contains(lines[1], "num") || !strings.Contains(lines[1], "PK") {
		t.Errorf("Key column not marked: %q", lines[1])
	}
	if strings.Contains(lines[1], "AUTO") {
		t.Errorf("INT PRIMARY KEY is not auto-increment: %q", lines[1])
	}
	if !strings.Contains(lines[3], "DOUBLE") {
		t.Errorf("price should map to DOUBLE: %q", lines[3])
	}

	if err := DescribeTable(ctx, env, "missing"); err == nil {
		t.Error("Expected error for missing table")
	}
}

func TestGetRow(t *testing.T) {
	ctx := context.Background()
	env, out := newEnv(t)

	tests := []struct {
		name string
		opts RowOptions
		want string
	}{
		{"by id", RowOptions{Table: "product", ID: 1}, "Widget"},
		{"by key", RowOptions{Table: "product", Key: "2"}, "Bolt"},
		{"by column", RowOptions{Table: "product", Column: "name", Value: "Bolt"}, "Bolt"},
		{"not found", RowOptions{Table: "product", ID: 9}, "No row found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := GetRow(ctx, env, tt.opts); err != nil {
				t.Fatalf("GetRow failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("Output does not contain %q:\n%s", tt.want, out)
			}
		})
	}

	if err := GetRow(ctx, env, RowOptions{Table: "product"}); !errors.Is(err, ErrNoSelector) {
		t.Errorf("Expected ErrNoSelector, got %v", err)
	}
}

func TestUpdateDeleteTruncate(t *testing.T) {
	ctx := context.Background()
	env, out := newEnv(t)

	mem := audit.NewMemoryAppender()
	env.Audit = mem

	if err := UpdateField(ctx, env, RowOptions{Table: "product", Key: "1", Column: "NAME", Value: "Gadget"}); err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if err := UpdateField(ctx, env, RowOptions{Table: "product", Key: "1", Column: "color", Value: "red"}); err == nil {
		t.Error("Expected error for unknown column")
	}

	out.Reset()
	if err := GetRow(ctx, env, RowOptions{Table: "product", ID: 1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Gadget") {
		t.Errorf("Update not visible:\n%s", out)
	}

	if err := DeleteRow(ctx, env, RowOptions{Table: "product", ID: 2}); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}
	out.Reset()
	if err := GetRow(ctx, env, RowOptions{Table: "product", ID: 2}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No row found") {
		t.Errorf("Row 2 still present:\n%s", out)
	}

	if err := TruncateTable(ctx, env, "product"); err != nil {
		t.Fatalf("TruncateTable failed: %v", err)
	}
	out.Reset()
	if err := PrintTable(ctx, env, "product"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "There are no records in this table") {
		t.Errorf("Table not empty:\n%s", out)
	}

	var ops []audit.Operation
	for _, e := range mem.Entries() {
		if e.Operation != audit.OpSelect {
			ops = append(ops, e.Operation)
		}
	}
	want := []audit.Operation{audit.OpUpdateField, audit.OpDelete, audit.OpTruncate}
	if len(ops) != len(want) {
		t.Fatalf("Audit operations = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("Audit operation %d = %s, want %s", i, ops[i], want[i])
		}
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	ctx := context.Background()
	env, out := newEnv(t)

	path := filepath.Join(t.TempDir(), "export", "product.xlsx")
	if err := ExportTableToXLSX(ctx, env, XLSXOptions{TableName: "product", OutputFile: path, SheetName: "product"}); err != nil {
		t.Fatalf("ExportTableToXLSX failed: %v", err)
	}

	if err := TruncateTable(ctx, env, "product"); err != nil {
		t.Fatal(err)
	}

	// имя таблицы берется из имени листа
	res, err := ImportXLSXToTable(ctx, env, XLSXOptions{InputFile: path, SheetName: "product"})
	if err != nil {
		t.Fatalf("ImportXLSXToTable failed: %v", err)
	}
	if res.Inserted != 2 || res.Failed != 0 {
		t.Errorf("Import result = %+v, want 2 inserted", res)
	}

	// повторный импорт упирается в ключи
	res, err = ImportXLSXToTable(ctx, env, XLSXOptions{InputFile: path, SheetName: "product", TableName: "product"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 0 || res.Failed != 2 {
		t.Errorf("Second import result = %+v, want 2 failed", res)
	}

	out.Reset()
	if err := PrintTable(ctx, env, "product"); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"(2 records)", "Widget", "Bolt", "2.5"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Output does not contain %q:\n%s", want, out)
		}
	}
}

func TestAuditCommands(t *testing.T) {
	ctx := context.Background()
	env, out := newEnv(t)

	da, err := audit.NewDatabaseAppender(ctx, audit.DatabaseAppenderConfig{
		Adapter:         env.Adapter,
		Level:           audit.LevelStandard,
		AutoCreateTable: true,
	})
	if err != nil {
		t.Fatalf("NewDatabaseAppender failed: %v", err)
	}
	env.Audit = da

	if err := UpdateField(ctx, env, RowOptions{Table: "product", ID: 2, Column: "price", Value: "0.2"}); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := ShowAudit(ctx, env, da, audit.QueryFilter{Operation: audit.OpUpdateField, Limit: 5}); err != nil {
		t.Fatalf("ShowAudit failed: %v", err)
	}
	if !strings.Contains(out.String(), "update-field success") || !strings.Contains(out.String(), "key=2") {
		t.Errorf("Unexpected audit output:\n%s", out)
	}

	if err := PurgeAudit(ctx, env, da, 0, time.Now()); err == nil {
		t.Error("Expected error for zero age")
	}
	if err := PurgeAudit(ctx, env, da, time.Hour, time.Now().Add(2*time.Hour)); err != nil {
		t.Fatalf("PurgeAudit failed: %v", err)
	}

	out.Reset()
	if err := ShowAudit(ctx, env, da, audit.QueryFilter{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No audit entries") {
		t.Errorf("Entries left after purge:\n%s", out)
	}
}
