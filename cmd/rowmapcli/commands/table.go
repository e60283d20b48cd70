package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ruslano69/rowmap/pkg/core/record"
	"github.com/ruslano69/rowmap/pkg/report"
)

// ErrNoSelector is returned when a row command has neither a key nor a
// column/value pair.
var ErrNoSelector = errors.New("specify --id, --key or --column with --value")

// RowOptions selects one row of a table.
type RowOptions struct {
	Table  string
	ID     int64
	Key    string
	Column string
	Value  string
}

// key returns the primary key as text, --key taking priority over --id.
func (o RowOptions) key() (string, bool) {
	if o.Key != "" {
		return o.Key, true
	}
	if o.ID != 0 {
		return strconv.FormatInt(o.ID, 10), true
	}
	return "", false
}

// GetRow prints the row selected by opts.
func GetRow(ctx context.Context, env *Env, opts RowOptions) error {
	repo, err := env.repo(ctx, opts.Table)
	if err != nil {
		return err
	}

	var row *record.Row
	switch key, ok := opts.key(); {
	case opts.ID != 0 && opts.Key == "":
		row, err = repo.GetByID(ctx, opts.ID)
	case ok:
		row, err = repo.GetByKey(ctx, key)
	case opts.Column != "":
		row, err = repo.GetBy(ctx, opts.Column, opts.Value)
	default:
		return ErrNoSelector
	}
	if err != nil {
		return err
	}

	if row == nil {
		env.printf("No row found in table [%s]\n", opts.Table)
		return nil
	}
	return report.Render(env.out(), rowsTable(opts.Table, repo.Store(), []*record.Row{row}))
}

// PrintTable prints every row of a table.
func PrintTable(ctx context.Context, env *Env, table string) error {
	repo, err := env.repo(ctx, table)
	if err != nil {
		return err
	}
	return repo.PrintAll(ctx, env.out())
}

// UpdateField sets opts.Column to opts.Value in the row with the given key.
// The value is parsed for the column's domain.
func UpdateField(ctx context.Context, env *Env, opts RowOptions) error {
	key, ok := opts.key()
	if !ok || opts.Column == "" {
		return fmt.Errorf("--update needs --key (or --id) and --column")
	}

	repo, err := env.repo(ctx, opts.Table)
	if err != nil {
		return err
	}

	col, _, found := repo.Store().Lookup(opts.Column)
	if !found {
		return fmt.Errorf("table %s has no column %s", opts.Table, opts.Column)
	}

	changed, err := repo.UpdateField(ctx, key, col.Name, opts.Value, col.Domain)
	if err != nil {
		return err
	}

	if changed {
		env.printf("✓ Updated %s.%s where key = %s\n", opts.Table, col.Name, key)
	} else {
		env.printf("No row with key %s\n", key)
	}
	return nil
}

// DeleteRow deletes the row with the given key.
func DeleteRow(ctx context.Context, env *Env, opts RowOptions) error {
	key, ok := opts.key()
	if !ok {
		return fmt.Errorf("--delete needs --key or --id")
	}

	repo, err := env.repo(ctx, opts.Table)
	if err != nil {
		return err
	}

	row, err := repo.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if row == nil {
		env.printf("No row with key %s\n", key)
		return nil
	}

	deleted, err := repo.Delete(ctx, row)
	if err != nil {
		return err
	}
	if deleted {
		env.printf("✓ Deleted row %s from %s\n", key, opts.Table)
	}
	return nil
}

// TruncateTable deletes every row of a table.
func TruncateTable(ctx context.Context, env *Env, table string) error {
	repo, err := env.repo(ctx, table)
	if err != nil {
		return err
	}

	if _, err := repo.Truncate(ctx); err != nil {
		return err
	}
	env.printf("✓ Table %s truncated\n", table)
	return nil
}
