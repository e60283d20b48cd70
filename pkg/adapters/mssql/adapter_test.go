package mssql

import (
	"errors"
	"fmt"
	"testing"

	sqlserver "github.com/denisenkom/go-mssqldb"
)

func TestCanonicalType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"int", "int(11)"},
		{"BIGINT", "bigint"},
		{"tinyint", "smallint"},
		{"bit", "tinyint(1)"},
		{"decimal(10,2)", "decimal(10,2)"},
		{"numeric", "decimal(18,0)"},
		{"money", "decimal(19,4)"},
		{"float", "decimal(18,2)"},
		{"datetime2", "datetime"},
		{"date", "datetime"},
		{"nvarchar(50)", "varchar(50)"},
		{"nvarchar(max)", "varchar(8000)"},
		{"uniqueidentifier", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CanonicalType(tt.in); got != tt.want {
				t.Errorf("CanonicalType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseServerVersion(t *testing.T) {
	tests := []struct {
		version string
		want    int
		name    string
	}{
		{"11.0.2100.60", 11, "SQL Server 2012"},
		{"15.0.2000.5", 15, "SQL Server 2019"},
		{"16.0.1000.6", 16, "SQL Server 2022"},
		{"garbage", 0, "SQL Server (version 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got := parseServerVersion(tt.version)
			if got != tt.want {
				t.Errorf("parseServerVersion(%q) = %d, want %d", tt.version, got, tt.want)
			}
			if name := serverVersionName(got); name != tt.name {
				t.Errorf("serverVersionName(%d) = %q, want %q", got, name, tt.name)
			}
		})
	}
}

func TestParseTableName(t *testing.T) {
	tests := []struct {
		def        string
		in         string
		wantSchema string
		wantTable  string
	}{
		{"dbo", "Orders", "dbo", "Orders"},
		{"sales", "[Orders]", "sales", "Orders"},
		{"dbo", "hr.[Employees]", "hr", "Employees"},
		{"sales", "[hr].Employees", "hr", "Employees"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, tbl := parseTableName(tt.in, tt.def)
			if s != tt.wantSchema || tbl != tt.wantTable {
				t.Errorf("parseTableName(%q) = %s.%s, want %s.%s", tt.in, s, tbl, tt.wantSchema, tt.wantTable)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	a := &Adapter{}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"primary key", sqlserver.Error{Number: 2627}, true},
		{"unique index", fmt.Errorf("insert: %w", sqlserver.Error{Number: 2601}), true},
		{"null violation", sqlserver.Error{Number: 515}, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
