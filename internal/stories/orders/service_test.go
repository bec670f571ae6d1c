package orders

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu     sync.Mutex
	orders []*Order
}

func (m *memoryStorage) CreateOrder(_ context.Context, order Order) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ExternalID == order.ExternalID {
			return nil, ErrDuplicate
		}
	}
	order.ID = int64(len(m.orders) + 1)
	order.CreatedAt = time.Now()
	m.orders = append(m.orders, &order)
	cp := order
	return &cp, nil
}

func (m *memoryStorage) GetOrder(_ context.Context, criteria GetCriteria) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if criteria.ID != nil && o.ID != *criteria.ID {
			continue
		}
		if criteria.ExternalID != nil && o.ExternalID != *criteria.ExternalID {
			continue
		}
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (m *memoryStorage) ListOrders(context.Context, ListCriteria) ([]*Order, error) {
	return nil, nil
}

func (m *memoryStorage) UpdateOrderStatus(_ context.Context, id int64, from, to Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id && o.Status == from {
			o.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStorage) SummarizeOrders(context.Context, time.Time, time.Time) (*DaySummary, error) {
	return &DaySummary{}, nil
}

func validOrder() NewOrder {
	return NewOrder{
		Source:       SourceTelegram,
		UserID:       lo.ToPtr(int64(1)),
		Phone:        "0891234567",
		Items:        []Item{{ProductID: lo.ToPtr(int64(3)), Name: "Frozen Joke", Price: 250, Quantity: 1}},
		Address:      "123 Beach Rd",
		DeliveryTime: "today",
		ZoneID:       "zone2",
		DeliveryCost: 100,
	}
}

func TestStatusGraph(t *testing.T) {
	all := []Status{StatusNew, StatusConfirmed, StatusPreparing, StatusDelivery, StatusCompleted, StatusCancelled}
	allowed := map[[2]Status]bool{
		{StatusNew, StatusConfirmed}:       true,
		{StatusConfirmed, StatusPreparing}: true,
		{StatusPreparing, StatusDelivery}:  true,
		{StatusDelivery, StatusCompleted}:  true,
		{StatusNew, StatusCancelled}:       true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusDelivery.Terminal())
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(o *NewOrder)
		wantErr error
		total   int64
	}{
		{
			name:  "total is items plus delivery",
			total: 350,
		},
		{
			name: "quantities multiply",
			mutate: func(o *NewOrder) {
				o.Items = append(o.Items, Item{Name: "LA", Price: 150, Quantity: 2})
			},
			total: 650,
		},
		{
			name:    "no items",
			mutate:  func(o *NewOrder) { o.Items = nil },
			wantErr: ErrEmptyItems,
		},
		{
			name:    "missing phone",
			mutate:  func(o *NewOrder) { o.Phone = " " },
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "zero quantity",
			mutate:  func(o *NewOrder) { o.Items[0].Quantity = 0 },
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "negative delivery",
			mutate:  func(o *NewOrder) { o.DeliveryCost = -1 },
			wantErr: ErrInvalidOrder,
		},
		{
			name: "overflowing item cost",
			mutate: func(o *NewOrder) {
				o.Items[0].Price = math.MaxInt64
				o.Items[0].Quantity = 2
				o.ExpectedTotal = lo.ToPtr(int64(-2 + 100))
			},
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "quantity above limit",
			mutate:  func(o *NewOrder) { o.Items[0].Quantity = MaxQuantity + 1 },
			wantErr: ErrInvalidOrder,
		},
		{
			name: "items sum above limit",
			mutate: func(o *NewOrder) {
				o.Items = []Item{
					{Name: "A", Price: MaxAmount, Quantity: 1},
					{Name: "B", Price: 1, Quantity: 1},
				}
			},
			wantErr: ErrInvalidOrder,
		},
		{
			name:    "expected total mismatch",
			mutate:  func(o *NewOrder) { o.ExpectedTotal = lo.ToPtr(int64(300)) },
			wantErr: ErrTotalMismatch,
		},
		{
			name:   "expected total matches",
			mutate: func(o *NewOrder) { o.ExpectedTotal = lo.ToPtr(int64(350)) },
			total:  350,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStorage{}
			svc := NewService(store)

			in := validOrder()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			order, created, err := svc.PlaceOrder(ctx, in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.orders)
				return
			}

			require.NoError(t, err)
			assert.True(t, created)
			assert.Equal(t, tt.total, order.Total)
			assert.Equal(t, order.ItemsCost+order.DeliveryCost, order.Total)
			assert.Equal(t, StatusNew, order.Status)
			assert.NotEmpty(t, order.ExternalID)
		})
	}
}

func TestPlaceOrderIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &memoryStorage{}
	svc := NewService(store)

	in := validOrder()
	in.Source = SourceWeb
	in.ExternalID = "WEB-1"

	first, created, err := svc.PlaceOrder(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.PlaceOrder(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.orders, 1)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	store := &memoryStorage{}
	svc := NewService(store)

	order, _, err := svc.PlaceOrder(ctx, validOrder())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, order.ID, StatusPreparing)
	require.ErrorIs(t, err, ErrInvalidTransition)

	for _, to := range []Status{StatusConfirmed, StatusPreparing, StatusDelivery, StatusCompleted} {
		order, err = svc.Transition(ctx, order.ID, to)
		require.NoError(t, err)
		assert.Equal(t, to, order.Status)
	}

	_, err = svc.Transition(ctx, order.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Transition(ctx, 999, StatusConfirmed)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCancelledOrderCannotBeConfirmed(t *testing.T) {
	ctx := context.Background()
	store := &memoryStorage{}
	svc := NewService(store)

	order, _, err := svc.PlaceOrder(ctx, validOrder())
	require.NoError(t, err)

	cancelled, err := svc.Transition(ctx, order.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	current, err := svc.Transition(ctx, order.ID, StatusConfirmed)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCancelled, current.Status)

	stored, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}
