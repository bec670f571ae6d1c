package storage

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirit-bot/internal/infra/sqlite3"
	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/stories/users"
)

func newTestStorage(t *testing.T) *storageImpl {
	t.Helper()

	db, err := sqlite3.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(db.DB)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	created, err := s.CreateUser(ctx, users.User{TelegramID: 42, Username: "bob", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.TelegramID)
	assert.False(t, created.AcceptedDisclaimer)

	got, err := s.GetUser(ctx, users.GetCriteria{TelegramID: lo.ToPtr(int64(42))})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	updated, err := s.UpdateUser(ctx, users.GetCriteria{ID: &created.ID}, users.UpdateParams{
		Language:           lo.ToPtr("th"),
		AcceptedDisclaimer: lo.ToPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "th", updated.Language)
	assert.True(t, updated.AcceptedDisclaimer)
	assert.Equal(t, "bob", updated.Username)

	missing, err := s.GetUser(ctx, users.GetCriteria{TelegramID: lo.ToPtr(int64(7))})
	require.NoError(t, err)
	assert.Nil(t, missing)

	count, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	seeded, err := s.GetProduct(ctx, products.GetCriteria{ID: lo.ToPtr(int64(3))})
	require.NoError(t, err)
	require.NotNil(t, seeded)
	assert.Equal(t, "Frozen Joke", seeded.Name)
	assert.Equal(t, int64(250), seeded.Price)

	indica, err := s.ListProducts(ctx, products.ListCriteria{
		Category: lo.ToPtr(products.CategorySorts),
		Subtype:  lo.ToPtr(products.SubtypeIndica),
		IsActive: lo.ToPtr(true),
	})
	require.NoError(t, err)
	for _, p := range indica {
		assert.Equal(t, products.SubtypeIndica, p.Subtype)
	}
	assert.Len(t, indica, 4)

	updated, err := s.UpdateProduct(ctx, products.GetCriteria{ID: lo.ToPtr(int64(3))}, products.UpdateParams{
		Price:    lo.ToPtr(int64(300)),
		IsActive: lo.ToPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(300), updated.Price)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Frozen Joke", updated.Name)

	active, err := s.CountProducts(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 12, active)

	deleted, err := s.DeleteProduct(ctx, products.DeleteCriteria{ID: lo.ToPtr(int64(3))})
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteProduct(ctx, products.DeleteCriteria{ID: lo.ToPtr(int64(3))})
	require.NoError(t, err)
	assert.False(t, deleted)
}

func testOrder(externalID string) orders.Order {
	return orders.Order{
		ExternalID:   externalID,
		Source:       orders.SourceTelegram,
		UserID:       lo.ToPtr(int64(1)),
		Phone:        "0891234567",
		Items:        []orders.Item{{ProductID: lo.ToPtr(int64(3)), Name: "Frozen Joke", Price: 250, Quantity: 1}},
		Address:      "123 Beach Rd",
		DeliveryTime: "today",
		ZoneID:       "zone2",
		DeliveryCost: 100,
		ItemsCost:    250,
		Total:        350,
		Status:       orders.StatusNew,
	}
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.CreateUser(ctx, users.User{TelegramID: 1, Language: "en"})
	require.NoError(t, err)

	order, err := s.CreateOrder(ctx, testOrder("ext-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(350), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(3), *order.Items[0].ProductID)

	_, err = s.CreateOrder(ctx, testOrder("ext-1"))
	assert.ErrorIs(t, err, orders.ErrDuplicate)

	byExternal, err := s.GetOrder(ctx, orders.GetCriteria{ExternalID: lo.ToPtr("ext-1")})
	require.NoError(t, err)
	assert.Equal(t, order.ID, byExternal.ID)

	ok, err := s.UpdateOrderStatus(ctx, order.ID, orders.StatusNew, orders.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	// stale from status does not match any more
	ok, err = s.UpdateOrderStatus(ctx, order.ID, orders.StatusNew, orders.StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetOrder(ctx, orders.GetCriteria{ID: &order.ID})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, got.Status)

	active, err := s.ListOrders(ctx, orders.ListCriteria{Statuses: []orders.Status{orders.StatusNew}})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestOrderTotalCheck(t *testing.T) {
	s := newTestStorage(t)

	bad := testOrder("ext-bad")
	bad.Total = 999
	_, err := s.CreateOrder(context.Background(), bad)
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.CreateUser(ctx, users.User{TelegramID: 1, Language: "en"})
	require.NoError(t, err)
	require.NoError(t, s.LogAction(ctx, 1, ActionCatalogView))
	require.NoError(t, s.LogAction(ctx, 1, ActionCatalogView))
	require.NoError(t, s.LogAction(ctx, 1, ActionOrderStart))

	_, err = s.CreateOrder(ctx, testOrder("a"))
	require.NoError(t, err)
	cancelled, err := s.CreateOrder(ctx, testOrder("b"))
	require.NoError(t, err)
	_, err = s.UpdateOrderStatus(ctx, cancelled.ID, orders.StatusNew, orders.StatusCancelled)
	require.NoError(t, err)

	stats, err := s.GetStatistics(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 13, stats.ActiveProducts)
	assert.Equal(t, 2, stats.ViewsToday)
	assert.Equal(t, 2, stats.OrdersToday)
	assert.Equal(t, int64(350), stats.RevenueToday)
	assert.Equal(t, 1, stats.PendingToday)
}

func TestImportProductsIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	n, err := s.ImportProducts(ctx, []products.Product{
		{Name: "A", Category: products.CategorySorts, Subtype: products.SubtypeHybrid, Price: 100, IsActive: true},
		{Name: "B", Category: products.CategoryJoints, Subtype: products.SubtypeSativa, Price: 50, IsActive: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.ImportProducts(ctx, []products.Product{
		{Name: "C", Category: products.CategorySorts, Subtype: products.SubtypeHybrid, Price: 100, IsActive: true},
		{Name: "D", Category: products.CategorySorts, Subtype: products.SubtypeHybrid, Price: -1, IsActive: true},
	})
	require.Error(t, err)

	count, err := s.CountProducts(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}
