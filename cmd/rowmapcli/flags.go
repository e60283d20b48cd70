package main

import (
	"flag"
	"os"
)

// Flags holds all command-line flags
type Flags struct {
	// Commands
	List       *bool
	Describe   *string
	Get        *string
	Print      *string
	Update     *string
	Delete     *string
	Truncate   *string
	ExportXLSX *string
	ImportXLSX *string
	AuditQuery *bool
	AuditPurge *string
	AuditRetry *bool

	// Record selection
	ID     *int64
	Key    *string
	Column *string
	Value  *string

	// Options
	Config   *string
	Output   *string
	Table    *string // Target table name for --import-xlsx (default: sheet name)
	Sheet    *string
	Resource *string // Table filter for --audit
	Limit    *int
	Verbose  *bool

	// Config Creation
	CreateConfig *string

	// Misc
	Version *bool
	Help    *bool
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) *Flags {
	f := &Flags{}

	// Commands
	f.List = fs.Bool("list", false, "List all tables in database")
	f.Describe = fs.String("describe", "", "Show correlated columns of a table (table name)")
	f.Get = fs.String("get", "", "Fetch one row (table name; use with --id, --key or --column/--value)")
	f.Print = fs.String("print", "", "Print all rows of a table (table name)")
	f.Update = fs.String("update", "", "Set one column of a row (table name; use with --key, --column, --value)")
	f.Delete = fs.String("delete", "", "Delete a row by key (table name; use with --key or --id)")
	f.Truncate = fs.String("truncate", "", "Delete every row of a table (table name)")
	f.ExportXLSX = fs.String("export-xlsx", "", "Export table to XLSX (table name)")
	f.ImportXLSX = fs.String("import-xlsx", "", "Insert rows from an XLSX file (file path)")
	f.AuditQuery = fs.Bool("audit", false, "Show recent entries of the audit table")
	f.AuditPurge = fs.String("audit-purge", "", "Delete audit entries older than a duration, e.g. 720h")
	f.AuditRetry = fs.Bool("audit-replay", false, "Re-send audit entries kept in the dead-letter file")

	// Record selection
	f.ID = fs.Int64("id", 0, "Integer primary key value")
	f.Key = fs.String("key", "", "Primary key value as text")
	f.Column = fs.String("column", "", "Column name")
	f.Value = fs.String("value", "", "Column value")

	// Options
	f.Config = fs.String("config", "config.yaml", "Configuration file path")
	f.Output = fs.String("output", "", "Output file path (default: auto-generated)")
	f.Table = fs.String("table", "", "Target table name for --import-xlsx (default: sheet name)")
	f.Sheet = fs.String("sheet", "Sheet1", "Excel sheet name for XLSX operations")
	f.Resource = fs.String("resource", "", "Only audit entries of this table (use with --audit)")
	f.Limit = fs.Int("limit", 20, "Maximum audit entries to show (use with --audit)")
	f.Verbose = fs.Bool("v", false, "Debug logging (SQL statements)")

	// Config Creation
	f.CreateConfig = fs.String("create-config", "", "Create sample config file: sqlite, postgres, mssql, mysql")

	// Misc
	f.Version = fs.Bool("version", false, "Show version information")
	f.Help = fs.Bool("help", false, "Show detailed help with examples")

	// ExitOnError для CommandLine, ContinueOnError в тестах
	_ = fs.Parse(args)

	return f
}

// commandWasSpecified checks if any command was specified
func (f *Flags) commandWasSpecified() bool {
	return *f.List ||
		*f.Describe != "" ||
		*f.Get != "" ||
		*f.Print != "" ||
		*f.Update != "" ||
		*f.Delete != "" ||
		*f.Truncate != "" ||
		*f.ExportXLSX != "" ||
		*f.ImportXLSX != "" ||
		*f.AuditQuery ||
		*f.AuditPurge != "" ||
		*f.AuditRetry
}
