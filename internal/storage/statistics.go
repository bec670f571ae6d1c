package storage

import (
	"context"
	"fmt"
	"time"
)

type StatisticsData struct {
	Users          int
	ActiveProducts int
	ViewsToday     int
	OrdersToday    int
	RevenueToday   int64
	PendingToday   int
}

// GetStatistics collects the counters shown in the admin panel and the stats endpoint.
// "Today" starts at local midnight of now.
func (s *storageImpl) GetStatistics(ctx context.Context, now time.Time) (*StatisticsData, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	usersCount, err := s.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	productsCount, err := s.CountProducts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	views, err := s.CountActions(ctx, ActionCatalogView, dayStart)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}

	summary, err := s.SummarizeOrders(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("summarize orders: %w", err)
	}

	return &StatisticsData{
		Users:          usersCount,
		ActiveProducts: productsCount,
		ViewsToday:     views,
		OrdersToday:    summary.Orders,
		RevenueToday:   summary.Revenue,
		PendingToday:   summary.Pending,
	}, nil
}
