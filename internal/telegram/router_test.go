package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirit-bot/internal/config"
	"spirit-bot/internal/infra/sqlite3"
	"spirit-bot/internal/localization"
	"spirit-bot/internal/storage"
	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/stories/users"
	"spirit-bot/internal/telegram/cmds"
	"spirit-bot/internal/telegram/dispatch"
	"spirit-bot/internal/telegram/flows/createproduct"
	"spirit-bot/internal/telegram/flows/editproduct"
	"spirit-bot/internal/telegram/flows/placeorder"
	"spirit-bot/internal/telegram/states"
)

const (
	operatorID int64 = 900
	customerID int64 = 100
)

type MockBotApi struct {
	SentMessages []tgbotapi.Chattable
	Requests     []tgbotapi.Chattable
}

func (m *MockBotApi) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.SentMessages = append(m.SentMessages, c)
	return tgbotapi.Message{MessageID: len(m.SentMessages)}, nil
}

func (m *MockBotApi) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.Requests = append(m.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *MockBotApi) textsTo(chatID int64) []string {
	var out []string
	for _, c := range m.SentMessages {
		if msg, ok := c.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (m *MockBotApi) lastTextTo(chatID int64) string {
	texts := m.textsTo(chatID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type testBot struct {
	router *Router
	bot    *MockBotApi
	states *states.Manager
	orders *orders.Service
	l10n   *localization.Service
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	ctx := context.Background()
	logger := slog.Default()

	db, err := sqlite3.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l10n, err := localization.NewService("en")
	require.NoError(t, err)
	shop, err := config.LoadShop("")
	require.NoError(t, err)

	store := storage.New(db.DB)
	bot := &MockBotApi{}
	sm := states.NewManager()
	admins := NewAdminChecker(&config.TelegramConfig{OperatorID: operatorID})

	userService := users.NewService(store, l10n)
	productService := products.NewService(store)
	orderService := orders.NewService(store)

	dispatcher := dispatch.NewDispatcher(bot, orderService, userService, admins, l10n, shop, operatorID, "en", logger)

	router := NewRouter(
		bot, sm, userService, admins, store, l10n, logger,
		placeorder.NewHandler(bot, sm, productService, orderService, dispatcher, l10n, shop, 250, logger),
		createproduct.NewHandler(bot, sm, productService, l10n, logger),
		editproduct.NewHandler(bot, sm, productService, l10n, logger),
		dispatcher,
		cmds.NewStartCommand(bot, l10n),
		cmds.NewInfoCommand(bot, l10n, shop),
		cmds.NewCatalogCommand(bot, l10n, productService, store, logger),
		cmds.NewMyOrdersCommand(bot, l10n, orderService),
		cmds.NewAdminCommand(bot, l10n, productService, orderService, dispatcher, logger),
		cmds.NewStatsCommand(bot, l10n, store),
	)

	return &testBot{router: router, bot: bot, states: sm, orders: orderService, l10n: l10n}
}

func (b *testBot) route(t *testing.T, update *tgbotapi.Update) {
	t.Helper()
	require.NoError(t, b.router.Route(context.Background(), update))
}

func (b *testBot) onboard(t *testing.T, userID int64) {
	t.Helper()
	b.route(t, command(userID, "/start"))
	b.route(t, callback(userID, "lang_en"))
	b.route(t, callback(userID, "disclaimer_accept"))
}

func command(userID int64, text string) *tgbotapi.Update {
	u := message(userID, text)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	return u
}

func message(userID int64, text string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Test"},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func callback(userID int64, data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: userID, FirstName: "Test"},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: userID}},
		Data:    data,
	}}
}

func TestOnboarding(t *testing.T) {
	b := newTestBot(t)

	b.route(t, command(customerID, "/start"))
	assert.Equal(t, b.l10n.Get("en", "start.choose_language", nil), b.bot.lastTextTo(customerID))

	// nothing else works before onboarding
	b.route(t, command(customerID, "/order"))
	assert.Equal(t, states.StateNone, b.states.GetState(customerID))
	assert.Equal(t, b.l10n.Get("en", "start.choose_language", nil), b.bot.lastTextTo(customerID))

	b.route(t, callback(customerID, "lang_ru"))
	texts := b.bot.textsTo(customerID)
	assert.Equal(t, b.l10n.Get("ru", "start.language_changed", nil), texts[len(texts)-2])
	assert.Equal(t, b.l10n.Get("ru", "start.disclaimer", nil), texts[len(texts)-1])

	b.route(t, callback(customerID, "disclaimer_accept"))
	assert.Equal(t, b.l10n.Get("ru", "start.welcome", nil), b.bot.lastTextTo(customerID))
}

func TestCommandsEndActiveFlow(t *testing.T) {
	b := newTestBot(t)
	b.onboard(t, customerID)

	b.route(t, command(customerID, "/order"))
	assert.Equal(t, states.PlaceOrderWaitItem, b.states.GetState(customerID))

	b.route(t, command(customerID, "/catalog"))
	assert.Equal(t, states.StateNone, b.states.GetState(customerID))

	b.route(t, command(customerID, "/order"))
	b.route(t, command(customerID, "/cancel"))
	assert.Equal(t, states.StateNone, b.states.GetState(customerID))
	assert.Equal(t, b.l10n.Get("en", "order.cancelled", nil), b.bot.lastTextTo(customerID))
}

func TestAdminPanelRequiresAdmin(t *testing.T) {
	b := newTestBot(t)
	b.onboard(t, customerID)

	b.route(t, callback(customerID, cmds.AdminPanelCallback))
	assert.Equal(t, b.l10n.Get("en", "common.access_denied", nil), b.bot.lastTextTo(customerID))

	b.route(t, command(operatorID, "/admin"))
	assert.Equal(t, b.l10n.Get("en", "admin.menu", nil), b.bot.lastTextTo(operatorID))
}

func TestOrderAndOperatorConfirmation(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()
	b.onboard(t, customerID)

	for _, u := range []*tgbotapi.Update{
		callback(customerID, "order_product_3"),
		callback(customerID, "po_zone_zone2"),
		callback(customerID, "po_zone_yes"),
		message(customerID, "123 Beach Rd"),
		message(customerID, "0891234567"),
		callback(customerID, "po_time_today_afternoon"),
		command(customerID, "/skip"),
		callback(customerID, "po_confirm"),
	} {
		b.route(t, u)
	}
	assert.Equal(t, states.StateNone, b.states.GetState(customerID))

	order, err := b.orders.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(350), order.Total)
	assert.Equal(t, orders.StatusNew, order.Status)
	assert.Contains(t, b.bot.lastTextTo(operatorID), "NEW ORDER #1")

	b.route(t, callback(operatorID, fmt.Sprintf("op_confirmed_%d", order.ID)))

	order, err = b.orders.GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusConfirmed, order.Status)
	assert.Equal(t, b.l10n.Get("en", "status.update", map[string]interface{}{
		"order_id": order.ID,
		"status":   b.l10n.Get("en", "status.confirmed", nil),
	}), b.bot.lastTextTo(customerID))
}
