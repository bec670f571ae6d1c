package createproduct

import (
	"context"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirit-bot/internal/localization"
	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/telegram/states"
)

const adminID int64 = 42

type MockBotApi struct {
	SentMessages []tgbotapi.Chattable
}

func (m *MockBotApi) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.SentMessages = append(m.SentMessages, c)
	return tgbotapi.Message{}, nil
}

func (m *MockBotApi) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *MockBotApi) LastText() string {
	if len(m.SentMessages) == 0 {
		return ""
	}
	msg, _ := m.SentMessages[len(m.SentMessages)-1].(tgbotapi.MessageConfig)
	return msg.Text
}

type mockProductService struct {
	created []products.Product
}

func (m *mockProductService) CreateProduct(_ context.Context, p products.Product) (*products.Product, error) {
	m.created = append(m.created, p)
	p.ID = int64(len(m.created))
	return &p, nil
}

func setup(t *testing.T) (*Handler, *MockBotApi, *states.Manager, *mockProductService, *localization.Service) {
	t.Helper()
	l10n, err := localization.NewService("en")
	require.NoError(t, err)

	bot := &MockBotApi{}
	sm := states.NewManager()
	ps := &mockProductService{}
	return NewHandler(bot, sm, ps, l10n, slog.Default()), bot, sm, ps, l10n
}

func text(s string) *tgbotapi.Update {
	return &tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: adminID},
		Chat: &tgbotapi.Chat{ID: adminID},
		Text: s,
	}}
}

func callback(data string) *tgbotapi.Update {
	return &tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: adminID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: adminID}},
		Data:    data,
	}}
}

func TestCreateProduct(t *testing.T) {
	h, bot, sm, ps, l10n := setup(t)
	ctx := context.Background()

	require.NoError(t, h.Start(adminID, adminID, "en"))

	steps := []struct {
		update *tgbotapi.Update
		want   states.State
	}{
		{text("Blue Dream"), states.AdminCreateProductWaitCategory},
		{text("sorts"), states.AdminCreateProductWaitCategory},
		{callback("acp_cat_sorts"), states.AdminCreateProductWaitType},
		{callback("acp_type_purple"), states.AdminCreateProductWaitType},
		{callback("acp_type_hybrid"), states.AdminCreateProductWaitPotency},
		{text("strong"), states.AdminCreateProductWaitPotency},
		{text("101"), states.AdminCreateProductWaitPotency},
		{text("21"), states.AdminCreateProductWaitPrice},
		{text("-5"), states.AdminCreateProductWaitPrice},
		{text("350"), states.AdminCreateProductWaitDescription},
		{text("Sweet berry aroma"), states.AdminCreateProductWaitSpecialOffer},
		{text("/skip"), states.StateNone},
	}
	for _, step := range steps {
		require.NoError(t, h.Handle(ctx, step.update, sm.GetState(adminID)))
		assert.Equal(t, step.want, sm.GetState(adminID))
	}

	require.Len(t, ps.created, 1)
	assert.Equal(t, products.Product{
		Name:        "Blue Dream",
		Category:    products.CategorySorts,
		Subtype:     products.SubtypeHybrid,
		Potency:     21,
		Price:       350,
		Description: "Sweet berry aroma",
		IsActive:    true,
	}, ps.created[0])
	assert.Equal(t, l10n.Get("en", "admin.product_added", map[string]interface{}{"id": 1, "name": "Blue Dream"}), bot.LastText())
}

func TestCreateProductInvalidNumberReprompts(t *testing.T) {
	h, bot, sm, _, l10n := setup(t)
	ctx := context.Background()

	require.NoError(t, h.Start(adminID, adminID, "en"))
	sm.SetState(adminID, states.AdminCreateProductWaitPotency, nil)

	require.NoError(t, h.Handle(ctx, text("twenty"), sm.GetState(adminID)))
	assert.Equal(t, states.AdminCreateProductWaitPotency, sm.GetState(adminID))
	assert.Equal(t, l10n.Get("en", "admin.invalid_number", nil), bot.LastText())
}

func TestCreateProductCancel(t *testing.T) {
	for _, cancel := range []*tgbotapi.Update{callback("cancel"), text("/cancel")} {
		h, bot, sm, ps, l10n := setup(t)
		ctx := context.Background()

		require.NoError(t, h.Start(adminID, adminID, "en"))
		require.NoError(t, h.Handle(ctx, text("Blue Dream"), sm.GetState(adminID)))
		require.NoError(t, h.Handle(ctx, cancel, sm.GetState(adminID)))

		assert.Equal(t, states.StateNone, sm.GetState(adminID))
		assert.Empty(t, ps.created)
		assert.Equal(t, l10n.Get("en", "common.cancelled", nil), bot.LastText())
	}
}
