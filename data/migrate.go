package data

import (
	"context"
	"fmt"
	"strings"
)

// Migrate applies idempotent DDL statements in one transaction. Statements
// must use IF NOT EXISTS so repeated runs are no-ops.
func (d *Data) Migrate(ctx context.Context, statements ...string) error {
	return d.WithTx(ctx, func(ctx context.Context) error {
		for _, stmt := range statements {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := d.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %q: %w", firstLine(stmt), err)
			}
		}
		return nil
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
