// Package commands implements the rowmapcli commands on top of the
// repository with the dynamic Row record.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/audit"
	"github.com/ruslano69/rowmap/pkg/core/record"
	"github.com/ruslano69/rowmap/pkg/core/schema"
	"github.com/ruslano69/rowmap/pkg/report"
	"github.com/ruslano69/rowmap/pkg/repository"
)

// Env holds what every command needs.
type Env struct {
	Adapter adapters.Adapter
	Log     zerolog.Logger

	// Audit receives one entry per repository operation; nil disables it.
	Audit audit.Appender

	// Out - куда печатать результат (по умолчанию stdout)
	Out io.Writer
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.out(), format, args...)
}

// repo opens a Row repository for table; columns come from the catalog.
func (e *Env) repo(ctx context.Context, table string) (*repository.Repository[record.Row], error) {
	desc, err := record.Rows()
	if err != nil {
		return nil, err
	}

	opts := []repository.Option{repository.WithLogger(e.Log)}
	if e.Audit != nil {
		opts = append(opts, repository.WithAudit(e.Audit))
	}

	repo, err := repository.New(ctx, e.Adapter, desc, repository.Config{Table: table}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", table, err)
	}
	return repo, nil
}

// rowsTable renders Row records in the store's column order.
func rowsTable(name string, store *schema.Store, rows []*record.Row) *report.Table {
	conv := schema.NewConverter()
	t := &report.Table{Name: name, Columns: store.Columns()}
	for _, row := range rows {
		cells := make([]string, store.Len())
		for i, col := range store.Columns() {
			cells[i] = conv.Format((*row)[col.Attribute], col.Domain)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
