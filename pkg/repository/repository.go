// Package repository implements generic CRUD over one table for one record
// type, driven by column metadata discovered or declared at setup.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/adapters/base"
	"github.com/ruslano69/rowmap/pkg/audit"
	"github.com/ruslano69/rowmap/pkg/core/query"
	"github.com/ruslano69/rowmap/pkg/core/record"
	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// Repository maps records of type T to rows of one table.
//
// Setup (New) introspects or declares the columns, correlates them with
// the record descriptor and precomputes the binding. Every operation then
// opens its own session, runs its statement, commits and closes the
// session; nothing is shared between operations.
//
// A Repository is meant for a single caller; it has no internal locking.
type Repository[T any] struct {
	adapter adapters.Adapter
	table   string
	store   *schema.Store
	binding *record.Binding[T]
	builder *query.Builder
	conv    *schema.Converter
	reader  *base.UniversalTypeConverter

	log   zerolog.Logger
	audit audit.Appender
	now   func() time.Time
}

// New builds a repository for cfg.Table.
func New[T any](ctx context.Context, adapter adapters.Adapter, desc *record.Descriptor[T], cfg Config, opts ...Option) (*Repository[T], error) {
	if adapter == nil {
		return nil, fmt.Errorf("repository: nil adapter")
	}
	if desc == nil {
		return nil, fmt.Errorf("repository: nil descriptor")
	}
	if cfg.Table == "" {
		return nil, fmt.Errorf("repository: table name is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	conv := schema.NewConverter()
	conv.Now = o.now

	cols := cfg.Columns
	hints := desc.Hints()
	if len(cols) == 0 {
		infos, err := adapter.DescribeColumns(ctx, cfg.Table)
		if err != nil {
			return nil, fmt.Errorf("repository: describe %s: %w", cfg.Table, err)
		}
		cols = adapters.ToColumns(infos)
		if !declaresKey(hints) {
			hints = append(hints, catalogKey(desc, adapters.CatalogHints(infos))...)
		}
	}

	store, err := schema.Correlate(cols, hints)
	if err != nil {
		return nil, fmt.Errorf("repository: correlate %s: %w", cfg.Table, err)
	}

	binding, err := record.Bind(desc, store, conv)
	if err != nil {
		return nil, fmt.Errorf("repository: %w", err)
	}

	log := o.logger.With().Str("table", cfg.Table).Logger()
	if unbound := binding.Unbound(); len(unbound) > 0 {
		log.Warn().Strs("columns", unbound).Msg("columns without record attribute")
	}
	log.Debug().Str("binding", binding.String()).Str("key", store.PrimaryKey().Name).Msg("repository ready")

	return &Repository[T]{
		adapter: adapter,
		table:   cfg.Table,
		store:   store,
		binding: binding,
		builder: query.NewBuilder(cfg.Table, store, adapter.Dialect(), conv),
		conv:    conv,
		reader:  base.NewUniversalTypeConverter(),
		log:     log,
		audit:   o.audit,
		now:     o.now,
	}, nil
}

// NewDefault builds a repository on the adapter registered with
// adapters.SetDefault.
func NewDefault[T any](ctx context.Context, desc *record.Descriptor[T], cfg Config, opts ...Option) (*Repository[T], error) {
	adapter, err := adapters.Default()
	if err != nil {
		return nil, err
	}
	return New(ctx, adapter, desc, cfg, opts...)
}

func declaresKey(hints []schema.Hint) bool {
	for _, h := range hints {
		if h.PrimaryKey {
			return true
		}
	}
	return false
}

// catalogKey rewrites catalog key hints (keyed by column name) to the
// attribute names of the descriptor, following column overrides.
func catalogKey[T any](desc *record.Descriptor[T], hints []schema.Hint) []schema.Hint {
	for i, h := range hints {
		for _, f := range desc.Fields() {
			if strings.EqualFold(f.ColumnName(), h.Attribute) {
				hints[i].Attribute = f.Name()
				break
			}
		}
	}
	return hints
}

// Store returns the column metadata. It is read-only.
func (r *Repository[T]) Store() *schema.Store {
	return r.store
}

// Table returns the table name.
func (r *Repository[T]) Table() string {
	return r.table
}

// ========== Sessions ==========

func (r *Repository[T]) open(ctx context.Context) (adapters.Session, error) {
	s, err := r.adapter.Open(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}
	return s, nil
}

func (r *Repository[T]) release(s adapters.Session) {
	if err := s.Close(); err != nil {
		r.log.Warn().Err(err).Msg("session close failed")
	}
}

func (r *Repository[T]) commit(s adapters.Session) error {
	if err := s.Commit(); err != nil {
		return &ConnectionError{Op: "commit", Err: err}
	}
	return nil
}

func (r *Repository[T]) statementError(st query.Statement, err error) error {
	r.log.Debug().Err(err).Str("op", st.Kind.String()).Str("sql", st.SQL).Msg("statement failed")
	return &StatementError{SQL: st.SQL, Err: err}
}

func (r *Repository[T]) trace(st query.Statement) {
	r.log.Debug().Str("op", st.Kind.String()).Str("sql", st.SQL).Int("args", len(st.Args)).Msg("exec")
}

// ========== Read ==========

// GetAll returns every row of the table in result order. The slice is
// empty, not nil, when the table has no rows; it is nil on error.
func (r *Repository[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.fetch(ctx, r.builder.SelectAll())
}

// GetAllQuery runs a caller-supplied SELECT and materializes its rows.
// Result columns are matched to the store by name when they are the same
// set, otherwise positionally.
func (r *Repository[T]) GetAllQuery(ctx context.Context, sqlText string, args ...any) ([]*T, error) {
	return r.fetch(ctx, query.Statement{Kind: query.KindSelectAll, SQL: sqlText, Args: args})
}

// GetBy returns the first row whose column equals value, or nil when no
// row matches.
func (r *Repository[T]) GetBy(ctx context.Context, column, value string) (*T, error) {
	col, _, ok := r.store.Lookup(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	return r.first(ctx, r.builder.SelectBy(col.Name, value))
}

// GetByID looks a row up by an integer primary key.
func (r *Repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	return r.GetByKey(ctx, strconv.FormatInt(id, 10))
}

// GetByKey looks a row up by the primary key given as text.
func (r *Repository[T]) GetByKey(ctx context.Context, key string) (*T, error) {
	return r.first(ctx, r.builder.SelectByPrimaryKey(key))
}

func (r *Repository[T]) first(ctx context.Context, st query.Statement) (*T, error) {
	recs, err := r.fetch(ctx, st)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func (r *Repository[T]) fetch(ctx context.Context, st query.Statement) ([]*T, error) {
	start := r.now()
	recs, err := r.fetchRows(ctx, st)
	r.trail(ctx, audit.OpSelect, start, int64(len(recs)), "", nil, err)
	return recs, err
}

func (r *Repository[T]) fetchRows(ctx context.Context, st query.Statement) ([]*T, error) {
	s, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.release(s)

	r.trace(st)
	rows, err := s.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, r.statementError(st, err)
	}

	// rows закрываются до commit
	columns, data, err := r.reader.ReadStrings(rows, r.adapter.GetDatabaseType())
	if cerr := rows.Close(); cerr != nil {
		r.log.Warn().Err(cerr).Msg("rows close failed")
	}
	if err != nil {
		return nil, r.statementError(st, err)
	}

	recs := make([]*T, 0, len(data))
	for _, raw := range data {
		rec, err := r.binding.Materialize(r.binding.Align(columns, raw))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := r.commit(s); err != nil {
		return nil, err
	}
	return recs, nil
}

// ========== Write ==========

// Create inserts rec.
//
// Columns are included when required or when the record's value has
// content; an auto-increment key is left to the database and read back.
// An INT key that is not auto-increment and is zero in rec is synthesized
// as MAX(key)+1 in the same session. The key that ends up in the row is
// written back into rec.
func (r *Repository[T]) Create(ctx context.Context, rec *T) (*ActionResult[T], error) {
	if rec == nil {
		return failed[T](nil, ErrNilRecord), ErrNilRecord
	}

	start := r.now()
	key, err := r.insert(ctx, rec)
	res := &ActionResult[T]{Record: rec, Succeeded: err == nil, GeneratedKey: key, Err: err}

	var keyText string
	if err == nil {
		keyText, _ = r.binding.KeyString(rec)
	}
	r.trail(ctx, audit.OpCreate, start, boolCount(err == nil), keyText, r.snapshot(rec), err)
	return res, err
}

func (r *Repository[T]) insert(ctx context.Context, rec *T) (int64, error) {
	values, err := r.binding.Values(rec)
	if err != nil {
		return -1, r.writeError(err)
	}

	s, err := r.open(ctx)
	if err != nil {
		return -1, err
	}
	defer r.release(s)

	generated := int64(-1)
	pkIdx := r.store.PrimaryKeyIndex()
	pk := r.store.PrimaryKey()
	if pk.Domain == schema.Int && !pk.AutoIncrement && !schema.HasContent(values[pkIdx], pk.Domain) {
		next, err := r.nextKey(ctx, s)
		if err != nil {
			return -1, err
		}
		values[pkIdx] = next
		generated = next
	}

	st, err := r.builder.Insert(values)
	if err != nil {
		return -1, &StatementError{Err: err}
	}

	r.trace(st)
	switch {
	case st.ReturnsKey:
		var id sql.NullInt64
		if err := s.QueryRow(ctx, st.SQL, st.Args...).Scan(&id); err != nil {
			return -1, r.insertError(st, err)
		}
		if id.Valid {
			generated = id.Int64
		}
	default:
		res, err := s.Exec(ctx, st.SQL, st.Args...)
		if err != nil {
			return -1, r.insertError(st, err)
		}
		if st.ReadsInsertID {
			id, err := res.LastInsertId()
			if err != nil {
				return -1, r.statementError(st, err)
			}
			generated = id
		}
	}

	if err := r.commit(s); err != nil {
		return -1, err
	}

	if generated >= 0 {
		if err := r.binding.SetKey(rec, generated); err != nil {
			r.log.Warn().Err(err).Int64("key", generated).Msg("generated key not written back")
		}
	}
	return generated, nil
}

// nextKey returns MAX(key)+1, or 1 for an empty table.
func (r *Repository[T]) nextKey(ctx context.Context, s adapters.Session) (int64, error) {
	st := r.builder.MaxPrimaryKey()
	r.trace(st)

	var maxKey sql.NullInt64
	if err := s.QueryRow(ctx, st.SQL).Scan(&maxKey); err != nil {
		return 0, r.statementError(st, err)
	}
	return maxKey.Int64 + 1, nil
}

func (r *Repository[T]) insertError(st query.Statement, err error) error {
	serr := r.statementError(st, err)
	if r.adapter.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrDuplicateKey, serr)
	}
	return serr
}

// writeError classifies a failure to read values off a record: coercion
// failures are statement errors, a missing attribute stays as is.
func (r *Repository[T]) writeError(err error) error {
	var ce *schema.CoercionError
	if errors.As(err, &ce) {
		return &StatementError{Err: err}
	}
	return err
}

// UpdateField sets one column of the row(s) with the given key. value is
// parsed for domain d first. Reports true when at least one row changed.
func (r *Repository[T]) UpdateField(ctx context.Context, key, column, value string, d schema.Domain) (bool, error) {
	start := r.now()
	n, err := r.updateField(ctx, key, column, value, d)
	r.trail(ctx, audit.OpUpdateField, start, n, key, map[string]string{column: value}, err)
	return n > 0, err
}

func (r *Repository[T]) updateField(ctx context.Context, key, column, value string, d schema.Domain) (int64, error) {
	col, _, ok := r.store.Lookup(column)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	v, err := r.conv.ToParameter(value, d)
	if err != nil {
		return 0, &StatementError{Err: err}
	}

	return r.exec(ctx, r.builder.UpdateField(key, col.Name, v, d))
}

// Update rewrites every non-key column of rec's row. Reports true when at
// least one row changed.
func (r *Repository[T]) Update(ctx context.Context, rec *T) (bool, error) {
	if rec == nil {
		return false, ErrNilRecord
	}

	start := r.now()
	key, n, err := r.update(ctx, rec)
	r.trail(ctx, audit.OpUpdate, start, n, key, r.snapshot(rec), err)
	return n > 0, err
}

func (r *Repository[T]) update(ctx context.Context, rec *T) (string, int64, error) {
	values, err := r.binding.Values(rec)
	if err != nil {
		return "", 0, r.writeError(err)
	}

	pk := r.store.PrimaryKey()
	if values[r.store.PrimaryKeyIndex()] == nil {
		return "", 0, fmt.Errorf("%w: no value for key column %s", record.ErrMissingAttribute, pk.Name)
	}
	key := r.conv.Format(values[r.store.PrimaryKeyIndex()], pk.Domain)

	st, err := r.builder.UpdateRecord(values)
	if err != nil {
		return key, 0, &StatementError{Err: err}
	}

	n, err := r.exec(ctx, st)
	return key, n, err
}

// Delete removes rec's row by primary key. Reports true when a row was
// deleted. A record without a key value fails with
// record.ErrMissingAttribute before any statement runs.
func (r *Repository[T]) Delete(ctx context.Context, rec *T) (bool, error) {
	if rec == nil {
		return false, ErrNilRecord
	}

	key, err := r.binding.KeyString(rec)
	if err != nil {
		return false, r.writeError(err)
	}

	start := r.now()
	n, err := r.exec(ctx, r.builder.Delete(key))
	r.trail(ctx, audit.OpDelete, start, n, key, nil, err)
	return n > 0, err
}

// Truncate deletes every row one by one. It stops at the first row that
// cannot be deleted; rows deleted before that stay deleted.
func (r *Repository[T]) Truncate(ctx context.Context) (bool, error) {
	start := r.now()
	n, err := r.truncate(ctx)
	r.trail(ctx, audit.OpTruncate, start, n, "", nil, err)
	return err == nil, err
}

func (r *Repository[T]) truncate(ctx context.Context) (int64, error) {
	recs, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, rec := range recs {
		ok, err := r.Delete(ctx, rec)
		if err != nil {
			return deleted, err
		}
		if !ok {
			key, _ := r.binding.KeyString(rec)
			return deleted, fmt.Errorf("truncate: row with key %s was not deleted", key)
		}
		deleted++
	}
	return deleted, nil
}

// exec runs a single data-modifying statement in its own session and
// returns the number of affected rows.
func (r *Repository[T]) exec(ctx context.Context, st query.Statement) (int64, error) {
	s, err := r.open(ctx)
	if err != nil {
		return 0, err
	}
	defer r.release(s)

	r.trace(st)
	res, err := s.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return 0, r.statementError(st, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, r.statementError(st, err)
	}

	if err := r.commit(s); err != nil {
		return 0, err
	}
	return n, nil
}

// ========== Audit ==========

func (r *Repository[T]) trail(ctx context.Context, op audit.Operation, start time.Time, affected int64, key string, data any, err error) {
	if r.audit == nil {
		return
	}

	entry := audit.NewEntry(op, audit.StatusSuccess).
		WithResource(r.table).
		WithKey(key).
		WithRecordsAffected(affected).
		WithDuration(r.now().Sub(start)).
		WithError(err)
	entry.Timestamp = start
	if data != nil {
		entry.WithData(data)
	}

	if aerr := r.audit.Append(ctx, entry); aerr != nil {
		r.log.Warn().Err(aerr).Str("op", string(op)).Msg("audit append failed")
	}
}

// snapshot renders rec as column → text for audit entries.
func (r *Repository[T]) snapshot(rec *T) map[string]string {
	if rec == nil || r.audit == nil {
		return nil
	}
	cells := r.binding.Strings(rec)
	out := make(map[string]string, len(cells))
	for i, name := range r.store.Names() {
		out[name] = cells[i]
	}
	return out
}

func boolCount(ok bool) int64 {
	if ok {
		return 1
	}
	return 0
}
