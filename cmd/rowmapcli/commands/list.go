package commands

import (
	"context"
	"fmt"
	"strings"
)

// ListTables lists all tables in the database
func ListTables(ctx context.Context, env *Env) error {
	tables, err := env.Adapter.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if len(tables) == 0 {
		env.printf("No tables found\n")
		return nil
	}

	env.printf("Found %d table(s):\n", len(tables))
	for i, table := range tables {
		env.printf("  %d. %s\n", i+1, table)
	}

	return nil
}

// DescribeTable prints the columns of a table after correlation: the key
// the repository will use, auto-increment and required flags.
func DescribeTable(ctx context.Context, env *Env, table string) error {
	exists, err := env.Adapter.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("table %s not found", table)
	}

	repo, err := env.repo(ctx, table)
	if err != nil {
		return err
	}

	store := repo.Store()
	env.printf("Table [%s] (%d columns)\n", table, store.Len())
	for _, col := range store.Columns() {
		var flags []string
		if col.PrimaryKey {
			flags = append(flags, "PK")
		}
		if col.AutoIncrement {
			flags = append(flags, "AUTO")
		}
		if col.Required {
			flags = append(flags, "REQUIRED")
		}
		env.printf("  %-25s %-8s %-20s %s\n", col.Name, col.Domain, col.NativeType, strings.Join(flags, ","))
	}

	return nil
}
