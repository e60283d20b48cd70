package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/audit"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres defaults",
			cfg:  DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, Database: "shop", User: "u", Password: "p"},
			want: "postgres://u:p@db:5432/shop?sslmode=disable&search_path=public",
		},
		{
			name: "postgresql alias",
			cfg:  DatabaseConfig{Type: "postgresql", Host: "db", Port: 5432, Database: "shop", User: "u", Password: "p", Schema: "sales", SSLMode: "require"},
			want: "postgres://u:p@db:5432/shop?sslmode=require&search_path=sales",
		},
		{
			name: "mssql",
			cfg:  DatabaseConfig{Type: "mssql", Host: "db", Port: 1433, Database: "shop", User: "sa", Password: "p"},
			want: "sqlserver://sa:p@db:1433?database=shop",
		},
		{
			name: "mssql windows auth",
			cfg:  DatabaseConfig{Type: "sqlserver", Host: "db", Port: 1433, Database: "shop", WindowsAuth: true},
			want: "sqlserver://db:1433?database=shop&integrated security=SSPI",
		},
		{
			name: "mysql",
			cfg:  DatabaseConfig{Type: "mysql", Host: "db", Port: 3306, Database: "shop", User: "root", Password: "p"},
			want: "root:p@tcp(db:3306)/shop?parseTime=true",
		},
		{
			name: "sqlite",
			cfg:  DatabaseConfig{Type: "sqlite", Database: "shop.db"},
			want: "shop.db",
		},
		{
			name: "unknown",
			cfg:  DatabaseConfig{Type: "oracle"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BuildDSN(); got != tt.want {
				t.Errorf("BuildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSampleConfigRoundTrip(t *testing.T) {
	for _, dbType := range []string{"sqlite", "postgres", "mssql", "mysql"} {
		t.Run(dbType, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := SaveConfig(path, CreateSampleConfig(dbType)); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if cfg.Database.Type != dbType {
				t.Errorf("Type = %q, want %q", cfg.Database.Type, dbType)
			}
			if cfg.Database.BuildDSN() == "" {
				t.Error("Sample config produces an empty DSN")
			}
			if !cfg.Audit.Enabled || cfg.Audit.Level != "standard" || cfg.Audit.File != "audit.log" {
				t.Errorf("Unexpected audit section: %+v", cfg.Audit)
			}
		})
	}
}

func TestLoadConfig_Sections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
database:
  type: sqlite
  database: shop.db
audit:
  enabled: true
  level: full
  redis:
    address: localhost:6379
    ttl: 1h
  broker: true
  database:
    table: audit_log
    batch_size: 10
broker:
  type: kafka
  brokers: ["k1:9092", "k2:9092"]
  topic: rowmap.audit
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Audit.Redis.TTL != time.Hour {
		t.Errorf("Redis TTL = %v, want 1h", cfg.Audit.Redis.TTL)
	}
	if cfg.Audit.Database.Table != "audit_log" || cfg.Audit.Database.BatchSize != 10 {
		t.Errorf("Unexpected database audit section: %+v", cfg.Audit.Database)
	}
	if cfg.Broker.Type != "kafka" || len(cfg.Broker.Brokers) != 2 || cfg.Broker.Topic != "rowmap.audit" {
		t.Errorf("Unexpected broker section: %+v", cfg.Broker)
	}

	if err := os.WriteFile(path, []byte("database:\n  database: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error without database.type")
	}
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("rowmapcli", flag.ContinueOnError)
	f := parseFlags(fs, []string{"--get", "product", "--id", "7", "-v"})

	if *f.Get != "product" || *f.ID != 7 || !*f.Verbose {
		t.Errorf("Unexpected flags: get=%q id=%d v=%v", *f.Get, *f.ID, *f.Verbose)
	}
	if !f.commandWasSpecified() {
		t.Error("--get should count as a command")
	}
	if *f.Sheet != "Sheet1" || *f.Config != "config.yaml" {
		t.Errorf("Unexpected defaults: sheet=%q config=%q", *f.Sheet, *f.Config)
	}

	empty := parseFlags(flag.NewFlagSet("rowmapcli", flag.ContinueOnError), nil)
	if empty.commandWasSpecified() {
		t.Error("No command expected without arguments")
	}
}

func TestDetermineOutputFile(t *testing.T) {
	tests := []struct {
		output, base, want string
	}{
		{"", "product", "product.xlsx"},
		{"", "product.xlsx", "product.xlsx"},
		{"out/p.xlsx", "product", "out/p.xlsx"},
	}
	for _, tt := range tests {
		if got := determineOutputFile(tt.output, tt.base, "xlsx"); got != tt.want {
			t.Errorf("determineOutputFile(%q, %q) = %q, want %q", tt.output, tt.base, got, tt.want)
		}
	}
}

func TestBuildAudit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	adapter, err := adapters.New(ctx, adapters.Config{Type: "sqlite", DSN: filepath.Join(dir, "cli.db")})
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	defer adapter.Close(ctx)

	cfg := &Config{Audit: AuditConfig{Enabled: false}}
	setup, err := buildAudit(ctx, cfg, adapter, zerolog.Nop())
	if err != nil || setup != nil {
		t.Fatalf("Disabled audit: setup=%v err=%v", setup, err)
	}

	cfg.Audit = AuditConfig{
		Enabled:  true,
		Level:    "full",
		File:     filepath.Join(dir, "audit.log"),
		Database: DatabaseAuditConfig{Table: "audit_log"},
	}
	setup, err = buildAudit(ctx, cfg, adapter, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildAudit failed: %v", err)
	}
	logger, db := setup.Logger, setup.DB
	if db == nil || db.TableName() != "audit_log" {
		t.Fatalf("Database appender not built: %v", db)
	}
	if len(setup.Remote) != 0 {
		t.Errorf("No remote destinations expected, got %d", len(setup.Remote))
	}

	entry := audit.NewEntry(audit.OpCreate, audit.StatusSuccess).WithResource("product").WithKey("1")
	if err := logger.Log(ctx, entry); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(cfg.Audit.File)
	if err != nil {
		t.Fatalf("Audit file not written: %v", err)
	}
	if !strings.Contains(string(data), `"resource":"product"`) {
		t.Errorf("Unexpected audit file content: %s", data)
	}

	n, err := db.Count(ctx, audit.QueryFilter{Resource: "product"})
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}

	cfg.Audit.Level = "verbose"
	if _, err := buildAudit(ctx, cfg, adapter, zerolog.Nop()); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestBuildAudit_RedisDelivery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	cfg := &Config{Audit: AuditConfig{
		Enabled: true,
		Level:   "standard",
		Redis:   RedisAuditConfig{Address: mr.Addr(), TTL: time.Hour},
		Delivery: DeliveryConfig{
			MaxAttempts:     2,
			InitialDelay:    time.Millisecond,
			MaxDelay:        time.Millisecond,
			BreakerFailures: 1,
			BreakerTimeout:  time.Hour,
			DeadLetterFile:  filepath.Join(dir, "dead.json"),
		},
	}}

	setup, err := buildAudit(ctx, cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildAudit failed: %v", err)
	}
	if len(setup.Remote) != 1 {
		t.Fatalf("Expected one remote destination, got %d", len(setup.Remote))
	}

	if err := setup.Logger.Log(ctx, audit.NewEntry(audit.OpCreate, audit.StatusSuccess).WithResource("product")); err != nil {
		t.Fatal(err)
	}
	if _, err := mr.Get("rowmap:audit:product:last"); err != nil {
		t.Fatalf("State key not written: %v", err)
	}

	// redis недоступен - entry уходит в dead letters
	mr.Close()
	setup.Logger.Log(ctx, audit.NewEntry(audit.OpDelete, audit.StatusSuccess).WithResource("product"))

	data, err := os.ReadFile(cfg.Audit.Delivery.DeadLetterFile)
	if err != nil {
		t.Fatalf("Dead letter file not written: %v", err)
	}
	if !strings.Contains(string(data), `"destination":"redis"`) {
		t.Errorf("Unexpected dead letters: %s", data)
	}

	if err := setup.Logger.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	cfg.Audit.Delivery.Strategy = "random"
	if _, err := buildAudit(ctx, cfg, nil, zerolog.Nop()); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}
