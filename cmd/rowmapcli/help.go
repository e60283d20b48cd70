package main

import "fmt"

const version = "0.3.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("rowmapcli version %s\n", version)
	fmt.Println("rowmap - table/record mapping over SQL databases")
	fmt.Println("https://github.com/ruslano69/rowmap")
}

// PrintHelp prints comprehensive help information
func PrintHelp() {
	fmt.Println("rowmapcli - generic CRUD over any table")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Println("USAGE:")
	fmt.Println("  rowmapcli [command] [options]")
	fmt.Println()

	fmt.Println("COMMANDS:")
	fmt.Println()

	fmt.Println("  Database Operations:")
	fmt.Println("    --list                     List all tables in database")
	fmt.Println("    --describe <table>         Show columns, domains and key of a table")
	fmt.Println("    --print <table>            Print all rows")
	fmt.Println("    --get <table>              Fetch one row (--id, --key or --column/--value)")
	fmt.Println("    --update <table>           Set one column (--key, --column, --value)")
	fmt.Println("    --delete <table>           Delete one row (--key or --id)")
	fmt.Println("    --truncate <table>         Delete every row")
	fmt.Println()

	fmt.Println("  XLSX Operations:")
	fmt.Println("    --export-xlsx <table>      Export table to XLSX")
	fmt.Println("    --import-xlsx <xlsx-file>  Insert rows from XLSX into a table")
	fmt.Println()

	fmt.Println("  Audit:")
	fmt.Println("    --audit                    Show recent entries of the audit table")
	fmt.Println("    --audit-purge <duration>   Delete audit entries older than duration")
	fmt.Println("    --audit-replay             Re-send undelivered redis/broker audit entries")
	fmt.Println()

	fmt.Println("OPTIONS:")
	fmt.Println("    --config <file>            Configuration file (default: config.yaml)")
	fmt.Println("    --output <file>            Output file path")
	fmt.Println("    --table <name>             Target table for --import-xlsx")
	fmt.Println("    --sheet <name>             Excel sheet name (default: Sheet1)")
	fmt.Println("    --resource <table>         Filter --audit by table")
	fmt.Println("    --limit <n>                Number of --audit entries (default: 20)")
	fmt.Println("    -v                         Log SQL statements")
	fmt.Println()

	fmt.Println("  Config:")
	fmt.Println("    --create-config <type>     Write sample config.yaml (sqlite, postgres, mssql, mysql)")
	fmt.Println()

	fmt.Println("EXAMPLES:")
	fmt.Println("  rowmapcli --create-config sqlite")
	fmt.Println("  rowmapcli --describe product")
	fmt.Println("  rowmapcli --get product --id 1")
	fmt.Println("  rowmapcli --get customer --column email --value a@b.c")
	fmt.Println("  rowmapcli --update product --key 1 --column name --value Widget")
	fmt.Println("  rowmapcli --export-xlsx product --output product.xlsx")
	fmt.Println("  rowmapcli --import-xlsx product.xlsx --table product")
}
