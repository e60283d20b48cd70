package repository

import (
	"context"
	"io"

	"github.com/ruslano69/rowmap/pkg/audit"
	"github.com/ruslano69/rowmap/pkg/report"
)

// Snapshot reads every row into a report table.
func (r *Repository[T]) Snapshot(ctx context.Context) (*report.Table, error) {
	recs, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	t := &report.Table{Name: r.table, Columns: r.store.Columns()}
	for _, rec := range recs {
		t.Rows = append(t.Rows, r.binding.Strings(rec))
	}
	return t, nil
}

// PrintAll writes a fixed-width listing of the table to w.
func (r *Repository[T]) PrintAll(ctx context.Context, w io.Writer) error {
	t, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	return report.Render(w, t)
}

// ExportXLSX saves the table as an Excel workbook.
func (r *Repository[T]) ExportXLSX(ctx context.Context, path, sheet string) error {
	t, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	start := r.now()
	err = report.WriteXLSX(t, path, sheet)
	r.trail(ctx, audit.OpExport, start, int64(len(t.Rows)), "", map[string]string{"path": path}, err)
	return err
}
