package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/rowmap/cmd/rowmapcli/commands"
	"github.com/ruslano69/rowmap/pkg/adapters"
	_ "github.com/ruslano69/rowmap/pkg/adapters/mssql"
	_ "github.com/ruslano69/rowmap/pkg/adapters/mysql"
	_ "github.com/ruslano69/rowmap/pkg/adapters/postgres"
	_ "github.com/ruslano69/rowmap/pkg/adapters/sqlite"
	"github.com/ruslano69/rowmap/pkg/audit"
)

func main() {
	ctx := context.Background()

	flags := ParseFlags()

	if *flags.Version {
		PrintVersion()
		os.Exit(0)
	}

	if *flags.Help {
		PrintHelp()
		os.Exit(0)
	}

	if *flags.CreateConfig != "" {
		createConfigTemplate(*flags.CreateConfig)
		return
	}

	// If no command was specified, show help
	if !flags.commandWasSpecified() {
		PrintHelp()
		os.Exit(1)
	}

	level := zerolog.InfoLevel
	if *flags.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	config, err := LoadConfig(*flags.Config)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	if !adapters.IsRegistered(config.Database.AdapterType()) {
		fatal("Unsupported database type %q (available: %s)",
			config.Database.Type, strings.Join(adapters.GetRegisteredTypes(), ", "))
	}

	adapter, err := adapters.New(ctx, adapters.Config{
		Type:     config.Database.AdapterType(),
		DSN:      config.Database.BuildDSN(),
		Schema:   config.Database.Schema,
		MaxConns: config.Database.MaxConns,
	})
	if err != nil {
		fatal("Failed to connect: %v", err)
	}
	defer adapter.Close(ctx)

	setup, err := buildAudit(ctx, config, adapter, log)
	if err != nil {
		fatal("Failed to set up audit: %v", err)
	}

	env := &commands.Env{Adapter: adapter, Log: log}
	if setup != nil {
		env.Audit = setup.Logger
	} else {
		setup = &auditSetup{}
	}

	cmdErr := run(ctx, flags, env, setup)

	// entries очереди пишутся до закрытия адаптера
	if setup.Logger != nil {
		if err := setup.Logger.Close(); err != nil {
			log.Warn().Err(err).Msg("audit close failed")
		}
	}

	if cmdErr != nil {
		adapter.Close(ctx)
		fatal("Command failed: %v", cmdErr)
	}
}

// run routes the parsed flags to one command.
func run(ctx context.Context, flags *Flags, env *commands.Env, setup *auditSetup) error {
	row := commands.RowOptions{
		ID:     *flags.ID,
		Key:    *flags.Key,
		Column: *flags.Column,
		Value:  *flags.Value,
	}

	switch {
	case *flags.List:
		return commands.ListTables(ctx, env)

	case *flags.Describe != "":
		return commands.DescribeTable(ctx, env, *flags.Describe)

	case *flags.Get != "":
		row.Table = *flags.Get
		return commands.GetRow(ctx, env, row)

	case *flags.Print != "":
		return commands.PrintTable(ctx, env, *flags.Print)

	case *flags.Update != "":
		row.Table = *flags.Update
		return commands.UpdateField(ctx, env, row)

	case *flags.Delete != "":
		row.Table = *flags.Delete
		return commands.DeleteRow(ctx, env, row)

	case *flags.Truncate != "":
		return commands.TruncateTable(ctx, env, *flags.Truncate)

	case *flags.ExportXLSX != "":
		return commands.ExportTableToXLSX(ctx, env, commands.XLSXOptions{
			TableName:  *flags.ExportXLSX,
			OutputFile: determineOutputFile(*flags.Output, *flags.ExportXLSX, "xlsx"),
			SheetName:  *flags.Sheet,
		})

	case *flags.ImportXLSX != "":
		_, err := commands.ImportXLSXToTable(ctx, env, commands.XLSXOptions{
			InputFile: *flags.ImportXLSX,
			SheetName: *flags.Sheet,
			TableName: *flags.Table,
		})
		return err

	case *flags.AuditQuery:
		if setup.DB == nil {
			return fmt.Errorf("audit.database.table is not configured")
		}
		return commands.ShowAudit(ctx, env, setup.DB, audit.QueryFilter{
			Resource: *flags.Resource,
			Limit:    *flags.Limit,
		})

	case *flags.AuditPurge != "":
		if setup.DB == nil {
			return fmt.Errorf("audit.database.table is not configured")
		}
		age, err := time.ParseDuration(*flags.AuditPurge)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		return commands.PurgeAudit(ctx, env, setup.DB, age, time.Now())

	case *flags.AuditRetry:
		if len(setup.Remote) == 0 {
			return fmt.Errorf("no redis or broker audit destination configured")
		}
		return commands.ReplayAudit(ctx, env, setup.Remote)
	}

	return nil
}

// createConfigTemplate creates a sample configuration file
func createConfigTemplate(dbType string) {
	config := CreateSampleConfig(dbType)

	if err := SaveConfig("config.yaml", config); err != nil {
		fatal("Failed to save config: %v", err)
	}

	fmt.Printf("✓ Created sample %s config: config.yaml\n", dbType)
	fmt.Println("Edit the file with your database credentials and run:")
	fmt.Printf("  rowmapcli --list --config config.yaml\n")
}

// determineOutputFile determines output file name
func determineOutputFile(output, baseName, ext string) string {
	if output != "" {
		return output
	}

	if !strings.HasSuffix(baseName, "."+ext) {
		return baseName + "." + ext
	}
	return baseName
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
