package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const actionsTable = "actions"

const (
	ActionCatalogView = "catalog_view"
	ActionOrderStart  = "order_start"
)

// LogAction appends one usage event. The log is only read by statistics.
func (s *storageImpl) LogAction(ctx context.Context, userID int64, action string) error {
	q, args, err := s.stmpBuilder().
		Insert(actionsTable).
		SetMap(map[string]interface{}{
			"user_id":    userID,
			"action":     action,
			"created_at": s.now(),
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}

func (s *storageImpl) CountActions(ctx context.Context, action string, since time.Time) (int, error) {
	q, args, err := s.stmpBuilder().
		Select("COUNT(*)").
		From(actionsTable).
		Where(sq.Eq{"action": action}).
		Where(sq.GtOrEq{"created_at": since.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}
