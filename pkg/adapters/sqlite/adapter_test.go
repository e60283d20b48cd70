package sqlite

import (
	"context"
	"testing"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

func newMemoryAdapter(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	adapter, err := NewAdapter(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	t.Cleanup(func() { adapter.Close(ctx) })

	_, err = adapter.DB().ExecContext(ctx, `
		CREATE TABLE Users (
			ID INTEGER PRIMARY KEY AUTOINCREMENT,
			Name VARCHAR(100) NOT NULL,
			Active BOOLEAN,
			Balance DECIMAL(10,2),
			CreatedAt DATETIME,
			Notes TEXT
		)`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return adapter
}

func TestCanonicalType(t *testing.T) {
	tests := []struct {
		declared string
		expected string
		domain   schema.Domain
	}{
		{"INTEGER", "int(11)", schema.Int},
		{"BIGINT", "bigint", schema.Int},
		{"BOOLEAN", "tinyint(1)", schema.Bool},
		{"tinyint", "tinyint(1)", schema.Bool},
		{"DECIMAL(10, 2)", "decimal(10,2)", schema.Double},
		{"REAL", "decimal(18,2)", schema.Double},
		{"DATETIME", "datetime", schema.Date},
		{"DATE", "datetime", schema.Date},
		{"VARCHAR(40)", "varchar(40)", schema.String},
		{"TEXT", "text", schema.String},
		{"", "text", schema.String},
	}

	for _, tt := range tests {
		got := CanonicalType(tt.declared)
		if got != tt.expected {
			t.Errorf("CanonicalType(%q) = %q, want %q", tt.declared, got, tt.expected)
		}
		if d := schema.DomainFromNativeType(got); d != tt.domain {
			t.Errorf("domain of %q = %s, want %s", tt.declared, d, tt.domain)
		}
	}
}

func TestDescribeColumns(t *testing.T) {
	adapter := newMemoryAdapter(t)

	cols, err := adapter.DescribeColumns(context.Background(), "Users")
	if err != nil {
		t.Fatalf("DescribeColumns failed: %v", err)
	}

	if len(cols) != 6 {
		t.Fatalf("Expected 6 columns, got %d", len(cols))
	}

	id := cols[0]
	if id.Name != "ID" || !id.IsPrimaryKey || !id.IsAutoIncr {
		t.Errorf("Unexpected ID column: %+v", id)
	}
	if cols[1].Nullable {
		t.Error("Name should be NOT NULL")
	}
	if cols[2].NativeType != "tinyint(1)" {
		t.Errorf("Active native type = %q", cols[2].NativeType)
	}
	if cols[4].NativeType != "datetime" {
		t.Errorf("CreatedAt native type = %q", cols[4].NativeType)
	}
}

// Обычный INTEGER PRIMARY KEY не автоинкремент: ключ задает запись
func TestDescribeColumnsRowidAlias(t *testing.T) {
	adapter := newMemoryAdapter(t)
	ctx := context.Background()

	if _, err := adapter.DB().ExecContext(ctx,
		`CREATE TABLE product (num INTEGER PRIMARY KEY, name VARCHAR(40))`); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	cols, err := adapter.DescribeColumns(ctx, "product")
	if err != nil {
		t.Fatalf("DescribeColumns failed: %v", err)
	}
	if !cols[0].IsPrimaryKey || cols[0].IsAutoIncr {
		t.Errorf("Unexpected num column: %+v", cols[0])
	}
}

func TestDescribeColumnsUnknownTable(t *testing.T) {
	adapter := newMemoryAdapter(t)
	if _, err := adapter.DescribeColumns(context.Background(), "Missing"); err == nil {
		t.Error("Expected error for missing table")
	}
}

func TestTableNames(t *testing.T) {
	adapter := newMemoryAdapter(t)
	ctx := context.Background()

	names, err := adapter.GetTableNames(ctx)
	if err != nil {
		t.Fatalf("GetTableNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "Users" {
		t.Errorf("Unexpected tables: %v", names)
	}

	exists, err := adapter.TableExists(ctx, "Users")
	if err != nil || !exists {
		t.Errorf("TableExists(Users) = %v, %v", exists, err)
	}
	exists, _ = adapter.TableExists(ctx, "Orders")
	if exists {
		t.Error("TableExists(Orders) should be false")
	}
}

func TestSessionRollbackWithoutCommit(t *testing.T) {
	adapter := newMemoryAdapter(t)
	ctx := context.Background()

	s, err := adapter.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.Exec(ctx, `INSERT INTO Users (Name) VALUES (?)`, "ghost"); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var count int
	adapter.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM Users`).Scan(&count)
	if count != 0 {
		t.Errorf("Expected rollback, found %d rows", count)
	}

	s, _ = adapter.Open(ctx)
	s.Exec(ctx, `INSERT INTO Users (Name) VALUES (?)`, "kept")
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close after commit should be a no-op, got %v", err)
	}

	adapter.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM Users`).Scan(&count)
	if count != 1 {
		t.Errorf("Expected 1 committed row, found %d", count)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	adapter := newMemoryAdapter(t)
	ctx := context.Background()

	if _, err := adapter.DB().ExecContext(ctx, `INSERT INTO Users (ID, Name) VALUES (1, 'a')`); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	_, err := adapter.DB().ExecContext(ctx, `INSERT INTO Users (ID, Name) VALUES (1, 'b')`)
	if err == nil {
		t.Fatal("Expected duplicate key error")
	}
	if !adapter.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false", err)
	}

	_, err = adapter.DB().ExecContext(ctx, `INSERT INTO Users (Name) VALUES (NULL)`)
	if err == nil {
		t.Fatal("Expected NOT NULL error")
	}
	if adapter.IsUniqueViolation(err) {
		t.Error("NOT NULL violation is not a unique violation")
	}
}
