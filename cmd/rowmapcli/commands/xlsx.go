package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ruslano69/rowmap/pkg/core/record"
	"github.com/ruslano69/rowmap/pkg/core/schema"
	"github.com/ruslano69/rowmap/pkg/report"
)

// XLSXOptions holds options for XLSX operations
type XLSXOptions struct {
	InputFile  string
	OutputFile string
	SheetName  string
	TableName  string
}

// ImportResult - итог импорта
type ImportResult struct {
	Inserted int
	Failed   int
	Skipped  []string // columns of the sheet unknown to the table
}

// ExportTableToXLSX exports a database table directly to XLSX
func ExportTableToXLSX(ctx context.Context, env *Env, opts XLSXOptions) error {
	repo, err := env.repo(ctx, opts.TableName)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(opts.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := repo.ExportXLSX(ctx, opts.OutputFile, opts.SheetName); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	env.printf("✓ Export complete!\n")
	env.printf("✓ XLSX file: %s\n", opts.OutputFile)
	return nil
}

// ImportXLSXToTable inserts every row of a sheet into a table. Sheet
// columns are matched to table columns by name; each row is one Create,
// so a failing row does not stop the rest.
func ImportXLSXToTable(ctx context.Context, env *Env, opts XLSXOptions) (*ImportResult, error) {
	sheet, err := report.ReadXLSX(opts.InputFile, opts.SheetName)
	if err != nil {
		return nil, err
	}

	table := opts.TableName
	if table == "" {
		table = sheet.Name
	}

	repo, err := env.repo(ctx, table)
	if err != nil {
		return nil, err
	}
	store := repo.Store()
	conv := schema.NewConverter()

	// позиция в листе -> колонка таблицы
	targets := make([]*schema.Column, len(sheet.Columns))
	res := &ImportResult{}
	for i, sc := range sheet.Columns {
		col, _, ok := store.Lookup(sc.Name)
		if !ok {
			res.Skipped = append(res.Skipped, sc.Name)
			continue
		}
		targets[i] = &col
	}

	for n, cells := range sheet.Rows {
		row := record.Row{}
		for i, col := range targets {
			if col == nil || i >= len(cells) || cells[i] == "" {
				continue
			}
			row[col.Attribute] = conv.Parse(cells[i], col.Domain)
		}

		if _, err := repo.Create(ctx, &row); err != nil {
			env.Log.Warn().Err(err).Int("row", n+2).Msg("row not inserted")
			res.Failed++
			continue
		}
		res.Inserted++
	}

	env.printf("✓ Import into %s: %d inserted, %d failed\n", table, res.Inserted, res.Failed)
	if len(res.Skipped) > 0 {
		env.printf("  Skipped columns: %v\n", res.Skipped)
	}
	return res, nil
}
