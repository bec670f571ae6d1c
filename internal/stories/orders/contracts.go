package orders

import (
	"context"
	"time"
)

type (
	Storage interface {
		CreateOrder(ctx context.Context, order Order) (*Order, error)
		GetOrder(ctx context.Context, criteria GetCriteria) (*Order, error)
		ListOrders(ctx context.Context, criteria ListCriteria) ([]*Order, error)
		// UpdateOrderStatus changes the status only while it still equals from.
		UpdateOrderStatus(ctx context.Context, id int64, from, to Status) (bool, error)
		SummarizeOrders(ctx context.Context, from, to time.Time) (*DaySummary, error)
	}
)
