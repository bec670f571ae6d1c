package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"spirit-bot/internal/infra/sqlite3"
	"spirit-bot/internal/stories/products"
)

// ImportProducts inserts all products in one transaction. Nothing is written if any insert fails.
func (s *storageImpl) ImportProducts(ctx context.Context, items []products.Product) (int, error) {
	now := s.now()

	err := sqlite3.RunInTx(ctx, s.db, nil, func(tx *sqlx.Tx) error {
		for i, p := range items {
			q, args, err := s.stmpBuilder().
				Insert(productsTable).
				SetMap(productInsertParams(p, now)).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("insert product %d (%s): %w", i+1, p.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(items), nil
}
