package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/rowmap/pkg/adapters"
	"github.com/ruslano69/rowmap/pkg/audit"
	"github.com/ruslano69/rowmap/pkg/brokers"
	"github.com/ruslano69/rowmap/pkg/resilience"
	"github.com/ruslano69/rowmap/pkg/retry"
)

// auditSetup - собранный из конфига audit
type auditSetup struct {
	Logger *audit.AuditLogger

	// DB serves --audit and --audit-purge; nil without audit.database.table.
	DB *audit.DatabaseAppender

	// Remote are the redis/broker destinations, for --audit-replay.
	Remote []*audit.ReliableAppender
}

// buildAudit assembles the audit logger from the audit section. Returns
// nil when audit is disabled.
func buildAudit(ctx context.Context, cfg *Config, adapter adapters.Adapter, log zerolog.Logger) (*auditSetup, error) {
	ac := cfg.Audit
	if !ac.Enabled {
		return nil, nil
	}

	level, err := audit.ParseLevel(ac.Level)
	if err != nil {
		return nil, err
	}

	lc := audit.SyncConfig()
	if ac.Async {
		lc = audit.DefaultConfig()
		lc.FlushInterval = 5 * time.Second
	}
	lc.OnError = func(err error) {
		log.Warn().Err(err).Msg("audit write failed")
	}

	setup := &auditSetup{}
	var appenders []audit.Appender
	fail := func(err error) (*auditSetup, error) {
		for _, a := range appenders {
			a.Close()
		}
		return nil, err
	}

	remote, err := newDelivery(ac.Delivery, log)
	if err != nil {
		return nil, err
	}

	if ac.Console {
		appenders = append(appenders, audit.NewLogAppender(log, level))
	}

	if ac.File != "" {
		fa, err := audit.NewFileAppender(audit.FileAppenderConfig{
			FilePath:   ac.File,
			MaxSize:    int64(ac.MaxSize),
			MaxBackups: ac.MaxBackups,
			Level:      level,
			FormatJSON: true,
		})
		if err != nil {
			return fail(err)
		}
		appenders = append(appenders, fa)
	}

	if ac.Redis.Address != "" {
		ra, err := remote.wrap("redis", audit.NewRedisAppender(audit.RedisAppenderConfig{
			Address:  ac.Redis.Address,
			Password: ac.Redis.Password,
			DB:       ac.Redis.DB,
			Prefix:   ac.Redis.Prefix,
			TTL:      ac.Redis.TTL,
			Level:    level,
		}))
		if err != nil {
			return fail(err)
		}
		appenders = append(appenders, ra)
		setup.Remote = append(setup.Remote, ra)
	}

	if ac.Broker {
		pub, err := brokers.New(cfg.Broker)
		if err != nil {
			return fail(err)
		}
		if err := pub.Connect(ctx); err != nil {
			return fail(fmt.Errorf("audit broker: %w", err))
		}
		ra, err := remote.wrap(pub.GetBrokerType(), audit.NewBrokerAppender(pub, level))
		if err != nil {
			pub.Close()
			return fail(err)
		}
		appenders = append(appenders, ra)
		setup.Remote = append(setup.Remote, ra)
	}

	if ac.Database.Table != "" {
		setup.DB, err = audit.NewDatabaseAppender(ctx, audit.DatabaseAppenderConfig{
			Adapter:         adapter,
			TableName:       ac.Database.Table,
			Level:           level,
			BatchSize:       ac.Database.BatchSize,
			AutoCreateTable: true,
		})
		if err != nil {
			return fail(err)
		}
		appenders = append(appenders, setup.DB)
	}

	if len(appenders) == 0 {
		log.Warn().Msg("audit enabled but no destination configured")
	}

	setup.Logger = audit.NewLogger(lc, appenders...)
	return setup, nil
}

// delivery builds ReliableAppenders sharing one dead-letter file.
type delivery struct {
	config  DeliveryConfig
	policy  retry.Policy
	letters *retry.DeadLetters
	log     zerolog.Logger
}

func newDelivery(dc DeliveryConfig, log zerolog.Logger) (*delivery, error) {
	policy := retry.DefaultPolicy()
	if dc.MaxAttempts > 0 {
		policy.MaxAttempts = dc.MaxAttempts
	}
	if dc.InitialDelay > 0 {
		policy.InitialDelay = dc.InitialDelay
	}
	if dc.MaxDelay > 0 {
		policy.MaxDelay = dc.MaxDelay
	}
	if dc.Strategy != "" {
		policy.Strategy = retry.BackoffStrategy(dc.Strategy)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("audit.delivery: %w", err)
	}

	d := &delivery{config: dc, policy: policy, log: log}
	if dc.DeadLetterFile != "" {
		letters, err := retry.OpenDeadLetters(retry.DeadLetterConfig{
			FilePath: dc.DeadLetterFile,
			MaxSize:  dc.DeadLetterMax,
		})
		if err != nil {
			return nil, err
		}
		d.letters = letters
	}
	return d, nil
}

func (d *delivery) wrap(name string, next audit.Appender) (*audit.ReliableAppender, error) {
	config := audit.ReliableAppenderConfig{
		Destination: name,
		Policy:      d.policy,
		DeadLetters: d.letters,
	}

	if d.config.BreakerFailures > 0 {
		bc := resilience.DefaultConfig(name)
		bc.MaxFailures = d.config.BreakerFailures
		if d.config.BreakerTimeout > 0 {
			bc.Timeout = d.config.BreakerTimeout
		}
		bc.OnStateChange = func(name string, from, to resilience.State) {
			d.log.Warn().Str("destination", name).Stringer("from", from).Stringer("to", to).Msg("audit circuit breaker")
		}
		breaker, err := resilience.New(bc)
		if err != nil {
			return nil, err
		}
		config.Breaker = breaker
	}

	return audit.NewReliableAppender(next, config)
}
