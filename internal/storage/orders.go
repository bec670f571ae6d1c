package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"spirit-bot/internal/stories/orders"
)

const ordersTable = "orders"

var orderRowFields = fields(orderRow{})

// itemsColumn keeps the item snapshot as a JSON array in one TEXT column.
type itemsColumn []orders.Item

func (c itemsColumn) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]orders.Item(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *itemsColumn) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case nil:
		*c = nil
		return nil
	default:
		return fmt.Errorf("items: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]orders.Item)(c))
}

type orderRow struct {
	ID           int64       `db:"id"`
	ExternalID   string      `db:"external_id"`
	Source       string      `db:"source"`
	UserID       *int64      `db:"user_id"`
	CustomerName string      `db:"customer_name"`
	Phone        string      `db:"phone"`
	Items        itemsColumn `db:"items"`
	Address      string      `db:"address"`
	Latitude     *float64    `db:"latitude"`
	Longitude    *float64    `db:"longitude"`
	DeliveryTime string      `db:"delivery_time"`
	Comment      string      `db:"comment"`
	ZoneID       string      `db:"zone_id"`
	DeliveryCost int64       `db:"delivery_cost"`
	ItemsCost    int64       `db:"items_cost"`
	Total        int64       `db:"total"`
	Status       string      `db:"status"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r orderRow) ToModel() *orders.Order {
	return &orders.Order{
		ID:           r.ID,
		ExternalID:   r.ExternalID,
		Source:       orders.Source(r.Source),
		UserID:       r.UserID,
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Items:        []orders.Item(r.Items),
		Address:      r.Address,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		DeliveryTime: r.DeliveryTime,
		Comment:      r.Comment,
		ZoneID:       r.ZoneID,
		DeliveryCost: r.DeliveryCost,
		ItemsCost:    r.ItemsCost,
		Total:        r.Total,
		Status:       orders.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (s *storageImpl) CreateOrder(ctx context.Context, order orders.Order) (*orders.Order, error) {
	now := s.now()

	params := map[string]interface{}{
		"external_id":   order.ExternalID,
		"source":        string(order.Source),
		"user_id":       order.UserID,
		"customer_name": order.CustomerName,
		"phone":         order.Phone,
		"items":         itemsColumn(order.Items),
		"address":       order.Address,
		"latitude":      order.Latitude,
		"longitude":     order.Longitude,
		"delivery_time": order.DeliveryTime,
		"comment":       order.Comment,
		"zone_id":       order.ZoneID,
		"delivery_cost": order.DeliveryCost,
		"items_cost":    order.ItemsCost,
		"total":         order.Total,
		"status":        string(order.Status),
		"created_at":    now,
		"updated_at":    now,
	}

	q, args, err := s.stmpBuilder().
		Insert(ordersTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, orders.ErrDuplicate
		}
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetOrder(ctx, orders.GetCriteria{ID: &id})
}

func (s *storageImpl) GetOrder(ctx context.Context, criteria orders.GetCriteria) (*orders.Order, error) {
	query := s.stmpBuilder().
		Select(orderRowFields).
		From(ordersTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.ExternalID != nil {
		query = query.Where(sq.Eq{"external_id": *criteria.ExternalID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var r orderRow
	if err := s.db.GetContext(ctx, &r, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return r.ToModel(), nil
}

func (s *storageImpl) ListOrders(ctx context.Context, criteria orders.ListCriteria) ([]*orders.Order, error) {
	query := s.stmpBuilder().
		Select(orderRowFields).
		From(ordersTable)

	if criteria.UserID != nil {
		query = query.Where(sq.Eq{"user_id": *criteria.UserID})
	}
	if len(criteria.Statuses) > 0 {
		statuses := make([]string, 0, len(criteria.Statuses))
		for _, st := range criteria.Statuses {
			statuses = append(statuses, string(st))
		}
		query = query.Where(sq.Eq{"status": statuses})
	}
	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	query = query.OrderBy("created_at DESC", "id DESC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	result := make([]*orders.Order, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.ToModel())
	}

	return result, nil
}

// UpdateOrderStatus is a compare-and-set on the status column.
func (s *storageImpl) UpdateOrderStatus(ctx context.Context, id int64, from, to orders.Status) (bool, error) {
	q, args, err := s.stmpBuilder().
		Update(ordersTable).
		Set("status", string(to)).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected == 1, nil
}

func (s *storageImpl) SummarizeOrders(ctx context.Context, from, to time.Time) (*orders.DaySummary, error) {
	q, args, err := s.stmpBuilder().
		Select(
			"COUNT(*) AS orders",
			"COALESCE(SUM(CASE WHEN status != 'cancelled' THEN total ELSE 0 END), 0) AS revenue",
			"COALESCE(SUM(CASE WHEN status = 'new' THEN 1 ELSE 0 END), 0) AS pending",
		).
		From(ordersTable).
		Where(sq.GtOrEq{"created_at": from.UTC()}).
		Where(sq.Lt{"created_at": to.UTC()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row struct {
		Orders  int   `db:"orders"`
		Revenue int64 `db:"revenue"`
		Pending int   `db:"pending"`
	}
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return &orders.DaySummary{
		Orders:  row.Orders,
		Revenue: row.Revenue,
		Pending: row.Pending,
	}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
