package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/rowmap/pkg/brokers"
)

// Config represents the main configuration structure
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit,omitempty"`
	Broker   brokers.Config `yaml:"broker,omitempty"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Type        string `yaml:"type"`                   // sqlite, postgres, mssql, mysql
	Host        string `yaml:"host,omitempty"`         // For network databases
	Port        int    `yaml:"port,omitempty"`         // Database port
	Database    string `yaml:"database"`               // Database name or file path
	User        string `yaml:"user,omitempty"`         // Username
	Password    string `yaml:"password,omitempty"`     // Password
	Schema      string `yaml:"schema,omitempty"`       // PostgreSQL / MS SQL schema
	WindowsAuth bool   `yaml:"windows_auth,omitempty"` // MS SQL Windows authentication
	SSLMode     string `yaml:"sslmode,omitempty"`      // PostgreSQL SSL mode
	MaxConns    int    `yaml:"max_conns,omitempty"`
}

// AuditConfig for audit logging settings
type AuditConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Level      string `yaml:"level"` // minimal, standard, full
	Async      bool   `yaml:"async,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSize    int    `yaml:"max_size_mb,omitempty"` // Max file size in MB
	MaxBackups int    `yaml:"max_backups,omitempty"`
	Console    bool   `yaml:"console,omitempty"` // Log to console

	Redis    RedisAuditConfig    `yaml:"redis,omitempty"`
	Broker   bool                `yaml:"broker,omitempty"` // publish entries to the broker section
	Database DatabaseAuditConfig `yaml:"database,omitempty"`

	// Delivery applies to the remote destinations (redis, broker)
	Delivery DeliveryConfig `yaml:"delivery,omitempty"`
}

// DeliveryConfig - повторы, circuit breaker и dead letters
type DeliveryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts,omitempty"`
	InitialDelay    time.Duration `yaml:"initial_delay,omitempty"`
	MaxDelay        time.Duration `yaml:"max_delay,omitempty"`
	Strategy        string        `yaml:"strategy,omitempty"` // constant, linear, exponential
	BreakerFailures uint32        `yaml:"breaker_failures,omitempty"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout,omitempty"`
	DeadLetterFile  string        `yaml:"dead_letter_file,omitempty"`
	DeadLetterMax   int           `yaml:"dead_letter_max,omitempty"`
}

// RedisAuditConfig - последняя операция по таблице + pub/sub
type RedisAuditConfig struct {
	Address  string        `yaml:"address,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// DatabaseAuditConfig writes entries to a table of the same database.
type DatabaseAuditConfig struct {
	Table     string `yaml:"table,omitempty"`
	BatchSize int    `yaml:"batch_size,omitempty"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Database.Type == "" {
		return nil, fmt.Errorf("database.type is required")
	}

	return &config, nil
}

// SaveConfig saves configuration to YAML file
func SaveConfig(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateSampleConfig creates sample configuration for different database types
func CreateSampleConfig(dbType string) *Config {
	config := &Config{
		Database: DatabaseConfig{
			Type: dbType,
		},
		Audit: AuditConfig{
			Enabled:    true,
			Level:      "standard",
			File:       "audit.log",
			MaxSize:    100,
			MaxBackups: 5,
			Delivery: DeliveryConfig{
				MaxAttempts:     3,
				InitialDelay:    200 * time.Millisecond,
				MaxDelay:        5 * time.Second,
				Strategy:        "exponential",
				BreakerFailures: 5,
				BreakerTimeout:  30 * time.Second,
				DeadLetterFile:  "audit-dead.json",
				DeadLetterMax:   10000,
			},
		},
	}

	switch dbType {
	case "postgres", "postgresql":
		config.Database.Host = "localhost"
		config.Database.Port = 5432
		config.Database.Database = "mydb"
		config.Database.User = "postgres"
		config.Database.Password = "password"
		config.Database.Schema = "public"
		config.Database.SSLMode = "disable"

	case "mssql", "sqlserver":
		config.Database.Host = "localhost"
		config.Database.Port = 1433
		config.Database.Database = "mydb"
		config.Database.User = "sa"
		config.Database.Password = "YourPassword123"

	case "sqlite":
		config.Database.Database = "database.db"

	case "mysql":
		config.Database.Host = "localhost"
		config.Database.Port = 3306
		config.Database.Database = "mydb"
		config.Database.User = "root"
		config.Database.Password = "password"
	}

	return config
}

// AdapterType normalizes aliases to the registered adapter names.
func (c *DatabaseConfig) AdapterType() string {
	switch c.Type {
	case "postgresql":
		return "postgres"
	case "sqlserver":
		return "mssql"
	default:
		return c.Type
	}
}

// BuildDSN constructs database connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	switch c.AdapterType() {
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		schema := c.Schema
		if schema == "" {
			schema = "public"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
			c.User, c.Password, c.Host, c.Port, c.Database, sslMode, schema)

	case "mssql":
		if c.WindowsAuth {
			return fmt.Sprintf("sqlserver://%s:%d?database=%s&integrated security=SSPI",
				c.Host, c.Port, c.Database)
		}
		return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			c.User, c.Password, c.Host, c.Port, c.Database)

	case "sqlite":
		return c.Database

	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Database)

	default:
		return ""
	}
}
