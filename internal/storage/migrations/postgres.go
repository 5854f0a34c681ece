package migrations

import (
	"context"
	"fmt"

	"nft-marketplace/internal/storage/postgres"
)

// RunPostgresMigrations applies the journal schema. Each script is sent as
// one multi-statement Exec and must be safe to re-run.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	list, err := load(Postgres)
	if err != nil {
		return err
	}
	for _, s := range list {
		if _, err := pool.Exec(ctx, s.body); err != nil {
			return fmt.Errorf("apply migration %s: %w", s.name, err)
		}
		log.Debugf("applied postgres migration %s", s.name)
	}
	return nil
}
