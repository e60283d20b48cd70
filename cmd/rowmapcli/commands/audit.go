package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/rowmap/pkg/audit"
)

// ShowAudit prints the newest entries of the audit table.
func ShowAudit(ctx context.Context, env *Env, da *audit.DatabaseAppender, filter audit.QueryFilter) error {
	entries, err := da.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to query audit log: %w", err)
	}

	if len(entries) == 0 {
		env.printf("No audit entries\n")
		return nil
	}

	for _, e := range entries {
		env.printf("%s\n", e)
	}
	return nil
}

// PurgeAudit deletes entries logged before now-age.
func PurgeAudit(ctx context.Context, env *Env, da *audit.DatabaseAppender, age time.Duration, now time.Time) error {
	if age <= 0 {
		return fmt.Errorf("purge age must be positive, got %s", age)
	}

	n, err := da.DeleteOlderThan(ctx, now.Add(-age))
	if err != nil {
		return fmt.Errorf("failed to purge audit log: %w", err)
	}

	env.printf("✓ Deleted %d audit entries older than %s\n", n, age)
	return nil
}

// ReplayAudit re-sends dead letters through each remote destination.
func ReplayAudit(ctx context.Context, env *Env, remote []*audit.ReliableAppender) error {
	total := 0
	for _, ra := range remote {
		n, err := ra.Replay(ctx)
		total += n
		if err != nil {
			return fmt.Errorf("replay failed after %d entries: %w", total, err)
		}
	}

	env.printf("✓ Re-sent %d audit entries\n", total)
	return nil
}
