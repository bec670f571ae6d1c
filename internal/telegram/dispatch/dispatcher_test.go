package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirit-bot/internal/config"
	"spirit-bot/internal/infra/sqlite3"
	"spirit-bot/internal/localization"
	"spirit-bot/internal/storage"
	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/users"
)

const (
	operatorID int64 = 500
	customerID int64 = 100
)

type MockBotApi struct {
	SentMessages []tgbotapi.Chattable
	Requests     []tgbotapi.Chattable
	FailSend     bool
}

func (m *MockBotApi) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.FailSend {
		return tgbotapi.Message{}, fmt.Errorf("telegram is down")
	}
	m.SentMessages = append(m.SentMessages, c)
	return tgbotapi.Message{}, nil
}

func (m *MockBotApi) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.Requests = append(m.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *MockBotApi) lastCallback() tgbotapi.CallbackConfig {
	for i := len(m.Requests) - 1; i >= 0; i-- {
		if cb, ok := m.Requests[i].(tgbotapi.CallbackConfig); ok {
			return cb
		}
	}
	return tgbotapi.CallbackConfig{}
}

type staticAdmins []int64

func (a staticAdmins) IsAdmin(id int64) bool {
	return lo.Contains(a, id)
}

type testEnv struct {
	dispatcher *Dispatcher
	bot        *MockBotApi
	orders     *orders.Service
	users      *users.Service
	l10n       *localization.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite3.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l10n, err := localization.NewService("en")
	require.NoError(t, err)

	shop, err := config.LoadShop("")
	require.NoError(t, err)

	store := storage.New(db.DB)
	env := &testEnv{
		bot:    &MockBotApi{},
		orders: orders.NewService(store),
		users:  users.NewService(store, l10n),
		l10n:   l10n,
	}
	env.dispatcher = NewDispatcher(env.bot, env.orders, env.users, staticAdmins{operatorID}, l10n, shop, operatorID, "en", slog.Default())
	return env
}

func (e *testEnv) placeOrder(t *testing.T, userID *int64) *orders.Order {
	t.Helper()
	order, created, err := e.orders.PlaceOrder(context.Background(), orders.NewOrder{
		Source:       orders.SourceTelegram,
		UserID:       userID,
		Phone:        "0891234567",
		Items:        []orders.Item{{Name: "Frozen Joke", Price: 250, Quantity: 1}},
		Address:      "123 Beach Rd",
		DeliveryTime: "today",
		ZoneID:       "zone2",
		DeliveryCost: 100,
	})
	require.NoError(t, err)
	require.True(t, created)
	return order
}

func operatorPress(data string, from int64) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 11, Chat: &tgbotapi.Chat{ID: operatorID}},
		Data:    data,
	}}
}

func TestNotifyNewOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.placeOrder(t, nil)

	require.NoError(t, env.dispatcher.NotifyNewOrder(context.Background(), order))
	require.Len(t, env.bot.SentMessages, 1)

	msg, ok := env.bot.SentMessages[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, operatorID, msg.ChatID)
	assert.Contains(t, msg.Text, fmt.Sprintf("NEW ORDER #%d", order.ID))
	assert.Contains(t, msg.Text, "Chalong, Rawai (near)")
	assert.Contains(t, msg.Text, "Total: ฿350")

	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, fmt.Sprintf("op_confirmed_%d", order.ID), *keyboard.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, fmt.Sprintf("op_cancelled_%d", order.ID), *keyboard.InlineKeyboard[1][0].CallbackData)
}

func TestNotifyNewOrderFailureIsReported(t *testing.T) {
	env := newTestEnv(t)
	order := env.placeOrder(t, nil)
	env.bot.FailSend = true

	assert.Error(t, env.dispatcher.NotifyNewOrder(context.Background(), order))
}

func TestCancelledOrderCannotBeConfirmed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var last *orders.Order
	for i := 0; i < 7; i++ {
		last = env.placeOrder(t, nil)
	}
	require.Equal(t, int64(7), last.ID)

	require.NoError(t, env.dispatcher.HandleCallback(ctx, operatorPress("op_cancelled_7", operatorID)))
	order, err := env.orders.GetOrder(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, order.Status)

	require.NoError(t, env.dispatcher.HandleCallback(ctx, operatorPress("op_confirmed_7", operatorID)))
	order, err = env.orders.GetOrder(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, order.Status)

	cb := env.bot.lastCallback()
	assert.True(t, cb.ShowAlert)
	assert.Equal(t, env.l10n.Get("en", "operator.transition_rejected", map[string]interface{}{
		"from": env.l10n.Get("en", "status.cancelled", nil),
	}), cb.Text)
}

func TestTransitionNotifiesCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.GetOrCreate(ctx, users.Profile{TelegramID: customerID, FirstName: "Ann"})
	require.NoError(t, err)
	_, err = env.users.SetLanguage(ctx, user.ID, "ru")
	require.NoError(t, err)

	order := env.placeOrder(t, &user.ID)

	require.NoError(t, env.dispatcher.HandleCallback(ctx, operatorPress(fmt.Sprintf("op_confirmed_%d", order.ID), operatorID)))

	var edit *tgbotapi.EditMessageTextConfig
	for _, r := range env.bot.Requests {
		if e, ok := r.(tgbotapi.EditMessageTextConfig); ok {
			edit = &e
		}
	}
	require.NotNil(t, edit)
	assert.Equal(t, 11, edit.MessageID)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Equal(t, fmt.Sprintf("op_preparing_%d", order.ID), *edit.ReplyMarkup.InlineKeyboard[0][0].CallbackData)

	require.Len(t, env.bot.SentMessages, 1)
	msg := env.bot.SentMessages[0].(tgbotapi.MessageConfig)
	assert.Equal(t, customerID, msg.ChatID)
	assert.Equal(t, env.l10n.Get("ru", "status.update", map[string]interface{}{
		"order_id": order.ID,
		"status":   env.l10n.Get("ru", "status.confirmed", nil),
	}), msg.Text)
}

func TestNonAdminCannotTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.placeOrder(t, nil)

	require.NoError(t, env.dispatcher.HandleCallback(ctx, operatorPress(fmt.Sprintf("op_confirmed_%d", order.ID), customerID)))

	got, err := env.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusNew, got.Status)
	assert.True(t, env.bot.lastCallback().ShowAlert)
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data   string
		status orders.Status
		id     int64
		ok     bool
	}{
		{data: "op_confirmed_7", status: orders.StatusConfirmed, id: 7, ok: true},
		{data: "op_completed_123", status: orders.StatusCompleted, id: 123, ok: true},
		{data: "op_shipped_7"},
		{data: "op_confirmed_x"},
		{data: "op_confirmed_0"},
		{data: "confirmed_7"},
		{data: "op_"},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			status, id, ok := parseCallback(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.id, id)
		})
	}
}
