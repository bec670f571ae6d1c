package api

import (
	"context"
	"time"

	"spirit-bot/internal/storage"
	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
)

type (
	productService interface {
		ListAll(ctx context.Context, includeHidden bool) ([]*products.Product, error)
	}

	orderService interface {
		PlaceOrder(ctx context.Context, in orders.NewOrder) (*orders.Order, bool, error)
	}

	statisticsStorage interface {
		GetStatistics(ctx context.Context, now time.Time) (*storage.StatisticsData, error)
	}

	notifier interface {
		NotifyNewOrder(ctx context.Context, order *orders.Order) error
	}
)
