package archiver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/dbx"
)

// commit applies every planned upsert inside one transaction: either all
// rows reach their new state or none do. The first failing op aborts and
// rolls back the whole set.
func commit(ctx context.Context, db *sql.DB, p *plan) error {
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, op := range p.ops {
			if err := op.apply(ctx, tx); err != nil {
				return fmt.Errorf("upsert %s/%s: %w", op.table, op.key, err)
			}
		}
		return nil
	})
}
