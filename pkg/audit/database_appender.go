package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/adapters/base"
	"github.com/ruslano69/rowmap/pkg/core/query"
	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// auditColumns - статическая схема таблицы аудита; id первый и поэтому PK
var auditColumns = []schema.Decl{
	{Name: "id", Domain: schema.String},
	{Name: "logged_at", Domain: schema.Date},
	{Name: "operation", Domain: schema.String},
	{Name: "status", Domain: schema.String},
	{Name: "resource", Domain: schema.String},
	{Name: "record_key", Domain: schema.String},
	{Name: "records_affected", Domain: schema.Int},
	{Name: "duration_ms", Domain: schema.Int},
	{Name: "error_message", Domain: schema.String},
	{Name: "metadata", Domain: schema.String},
	{Name: "data", Domain: schema.String},
	{Name: "fingerprint", Domain: schema.String},
}

// wide text columns
var textColumns = map[string]bool{"error_message": true, "metadata": true, "data": true}

// DatabaseAppender - запись в таблицу через тот же adapter, что и репозиторий
type DatabaseAppender struct {
	adapter    adapters.Adapter
	tableName  string
	level      Level
	batchSize  int
	store      *schema.Store
	builder    *query.Builder
	converter  *schema.Converter
	mu         sync.Mutex
	batchQueue []*Entry
}

// DatabaseAppenderConfig - конфигурация database appender
type DatabaseAppenderConfig struct {
	Adapter adapters.Adapter

	// TableName - имя таблицы для аудита
	TableName string

	Level Level

	// BatchSize - размер batch для группового insert (0 = без batching)
	BatchSize int

	// AutoCreateTable - автоматически создать таблицу если не существует
	AutoCreateTable bool
}

// NewDatabaseAppender - создать database appender
func NewDatabaseAppender(ctx context.Context, config DatabaseAppenderConfig) (*DatabaseAppender, error) {
	if config.Adapter == nil {
		return nil, fmt.Errorf("database adapter is required")
	}

	if config.TableName == "" {
		config.TableName = "audit_log"
	}

	store, err := schema.Correlate(schema.Declare(auditColumns...), nil)
	if err != nil {
		return nil, err
	}

	conv := schema.NewConverter()
	da := &DatabaseAppender{
		adapter:   config.Adapter,
		tableName: config.TableName,
		level:     config.Level,
		batchSize: config.BatchSize,
		store:     store,
		builder:   query.NewBuilder(config.TableName, store, config.Adapter.Dialect(), conv),
		converter: conv,
	}

	if config.AutoCreateTable {
		if err := da.createTable(ctx); err != nil {
			return nil, fmt.Errorf("failed to create audit table: %w", err)
		}
	}

	return da, nil
}

// TableName - имя таблицы аудита
func (da *DatabaseAppender) TableName() string {
	return da.tableName
}

// CreateTableSQL renders the DDL of the audit table for a dialect.
func CreateTableSQL(d query.Dialect, table string) string {
	cols := make([]string, 0, len(auditColumns))
	for i, c := range auditColumns {
		def := d.QuoteIdentifier(c.Name) + " " + columnType(d.Name(), c)
		if i == 0 {
			def += " NOT NULL PRIMARY KEY"
		}
		cols = append(cols, def)
	}

	body := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", d.QuoteIdentifier(table), strings.Join(cols, ",\n\t"))
	if d.Name() == "mssql" {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL %s", table, body)
	}
	return strings.Replace(body, "CREATE TABLE", "CREATE TABLE IF NOT EXISTS", 1)
}

func columnType(dbType string, c schema.Decl) string {
	switch c.Domain {
	case schema.Int:
		return "BIGINT"
	case schema.Date:
		switch dbType {
		case "postgres":
			return "TIMESTAMP"
		case "mssql":
			return "DATETIME2"
		default:
			return "DATETIME"
		}
	}

	if textColumns[c.Name] {
		if dbType == "mssql" {
			return "NVARCHAR(MAX)"
		}
		return "TEXT"
	}
	if dbType == "mssql" {
		return "NVARCHAR(255)"
	}
	return "VARCHAR(255)"
}

func (da *DatabaseAppender) createTable(ctx context.Context) error {
	session, err := da.adapter.Open(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	if _, err := session.Exec(ctx, CreateTableSQL(da.adapter.Dialect(), da.tableName)); err != nil {
		return err
	}
	return session.Commit()
}

// Append - записать entry в базу данных
func (da *DatabaseAppender) Append(ctx context.Context, entry *Entry) error {
	filtered := entry.FilterByLevel(da.level)

	if da.batchSize > 0 {
		da.mu.Lock()
		da.batchQueue = append(da.batchQueue, filtered)
		full := len(da.batchQueue) >= da.batchSize
		da.mu.Unlock()

		if full {
			return da.flushBatch(ctx)
		}
		return nil
	}

	return da.insert(ctx, []*Entry{filtered})
}

// values - строка таблицы в порядке auditColumns
func (da *DatabaseAppender) values(entry *Entry) []any {
	metadata := ""
	if len(entry.Metadata) > 0 {
		if b, err := json.Marshal(entry.Metadata); err == nil {
			metadata = string(b)
		}
	}

	data := ""
	if entry.Data != nil {
		if b, err := json.Marshal(entry.Data); err == nil {
			data = string(b)
		}
	}

	return []any{
		entry.ID,
		entry.Timestamp,
		string(entry.Operation),
		string(entry.Status),
		entry.Resource,
		entry.Key,
		entry.RecordsAffected,
		entry.Duration.Milliseconds(),
		entry.ErrorMessage,
		metadata,
		data,
		entry.Fingerprint,
	}
}

// insert - все entries одной сессией
func (da *DatabaseAppender) insert(ctx context.Context, entries []*Entry) error {
	session, err := da.adapter.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	for _, entry := range entries {
		st, err := da.builder.Insert(da.values(entry))
		if err != nil {
			return err
		}
		if _, err := session.Exec(ctx, st.SQL, st.Args...); err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
	}

	if err := session.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// flushBatch - записать batch entries
func (da *DatabaseAppender) flushBatch(ctx context.Context) error {
	da.mu.Lock()
	batch := da.batchQueue
	da.batchQueue = nil
	da.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return da.insert(ctx, batch)
}

// Flush - сбросить batch queue
func (da *DatabaseAppender) Flush() error {
	return da.flushBatch(context.Background())
}

// Close - сбрасывает очередь; adapter принадлежит вызывающему
func (da *DatabaseAppender) Close() error {
	return da.Flush()
}

// QueryFilter - фильтр для запроса audit entries
type QueryFilter struct {
	Operation Operation
	Status    Status
	Resource  string
	Key       string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// where renders the filter with the dialect's placeholders.
func (da *DatabaseAppender) where(filter QueryFilter) (string, []any) {
	d := da.adapter.Dialect()
	var (
		conds []string
		args  []any
	)
	add := func(column, op string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s %s %s", d.QuoteIdentifier(column), op, d.Placeholder(len(args))))
	}

	if filter.Operation != "" {
		add("operation", "=", string(filter.Operation))
	}
	if filter.Status != "" {
		add("status", "=", string(filter.Status))
	}
	if filter.Resource != "" {
		add("resource", "=", filter.Resource)
	}
	if filter.Key != "" {
		add("record_key", "=", filter.Key)
	}
	if !filter.StartTime.IsZero() {
		add("logged_at", ">=", d.BindValue(filter.StartTime, schema.Date))
	}
	if !filter.EndTime.IsZero() {
		add("logged_at", "<=", d.BindValue(filter.EndTime, schema.Date))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Query - запросить audit entries из базы, новые первыми
func (da *DatabaseAppender) Query(ctx context.Context, filter QueryFilter) ([]*Entry, error) {
	d := da.adapter.Dialect()

	quoted := make([]string, 0, da.store.Len())
	for _, name := range da.store.Names() {
		quoted = append(quoted, d.QuoteIdentifier(name))
	}

	top, limit := "", ""
	if filter.Limit > 0 {
		if d.Name() == "mssql" {
			top = "TOP " + strconv.Itoa(filter.Limit) + " "
		} else {
			limit = " LIMIT " + strconv.Itoa(filter.Limit)
		}
	}

	where, args := da.where(filter)
	q := fmt.Sprintf("SELECT %s%s FROM %s%s ORDER BY %s DESC%s",
		top, strings.Join(quoted, ", "), d.QuoteIdentifier(da.tableName), where,
		d.QuoteIdentifier("logged_at"), limit)

	session, err := da.adapter.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	rows, err := session.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	_, data, err := base.NewUniversalTypeConverter().ReadStrings(rows, da.adapter.GetDatabaseType())
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	entries := make([]*Entry, 0, len(data))
	for _, row := range data {
		entries = append(entries, da.entry(row))
	}
	return entries, nil
}

// entry - обратное преобразование строки таблицы
func (da *DatabaseAppender) entry(row []string) *Entry {
	get := func(i int) any {
		if i >= len(row) {
			return nil
		}
		return da.converter.Parse(row[i], da.store.At(i).Domain)
	}
	str := func(i int) string {
		s, _ := get(i).(string)
		return s
	}
	num := func(i int) int64 {
		n, _ := get(i).(int64)
		return n
	}

	entry := &Entry{
		ID:              str(0),
		Operation:       Operation(str(2)),
		Status:          Status(str(3)),
		Resource:        str(4),
		Key:             str(5),
		RecordsAffected: num(6),
		Duration:        time.Duration(num(7)) * time.Millisecond,
		ErrorMessage:    str(8),
		Fingerprint:     str(11),
	}
	if ts, ok := get(1).(time.Time); ok {
		entry.Timestamp = ts
	}
	if s := str(9); s != "" {
		json.Unmarshal([]byte(s), &entry.Metadata)
	}
	if s := str(10); s != "" {
		json.Unmarshal([]byte(s), &entry.Data)
	}
	return entry
}

// Count - подсчитать количество audit entries
func (da *DatabaseAppender) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := da.where(filter)
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", da.adapter.Dialect().QuoteIdentifier(da.tableName), where)

	session, err := da.adapter.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	var count int64
	if err := session.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// DeleteOlderThan - удалить старые audit entries
func (da *DatabaseAppender) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	d := da.adapter.Dialect()
	q := fmt.Sprintf("DELETE FROM %s WHERE %s < %s",
		d.QuoteIdentifier(da.tableName), d.QuoteIdentifier("logged_at"), d.Placeholder(1))

	session, err := da.adapter.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	result, err := session.Exec(ctx, q, d.BindValue(before, schema.Date))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old entries: %w", err)
	}
	if err := session.Commit(); err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
