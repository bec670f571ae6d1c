package placeorder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"spirit-bot/internal/config"
	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/telegram/flows"
	"spirit-bot/internal/telegram/states"
)

const (
	zonePrefix      = "po_zone_"
	zoneYes         = "po_zone_yes"
	zoneNo          = "po_zone_no"
	timePrefix      = "po_time_"
	timeOther       = "po_time_other"
	commentSkip     = "po_comment_skip"
	confirmCallback = "po_confirm"
	editCallback    = "po_edit"
	cancelCallback  = "cancel"

	skipCommand   = "/skip"
	cancelCommand = "/cancel"

	// CatalogCallback opens the catalog, it is handled by the catalog command.
	CatalogCallback = "catalog"
	// ProductCallbackPrefix starts the flow with a catalog product.
	ProductCallbackPrefix = "order_product_"
	// StartCallback starts the flow with an empty draft.
	StartCallback = "order_start"
)

// Customer identifies who is ordering.
type Customer struct {
	UserID     int64
	TelegramID int64
	Language   string
	Name       string
}

type Handler struct {
	bot            botApi
	stateManager   stateManager
	productService productService
	orderService   orderService
	notifier       notifier
	l10n           localizer
	shop           *config.ShopConfig
	fallbackPrice  int64
	logger         *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	ps productService,
	osvc orderService,
	n notifier,
	l10n localizer,
	shop *config.ShopConfig,
	fallbackPrice int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:            bot,
		stateManager:   sm,
		productService: ps,
		orderService:   osvc,
		notifier:       n,
		l10n:           l10n,
		shop:           shop,
		fallbackPrice:  fallbackPrice,
		logger:         logger,
	}
}

// Start opens a fresh draft and asks what to order. A stale draft is discarded.
func (h *Handler) Start(ctx context.Context, chatID int64, c Customer) error {
	h.stateManager.SetState(c.TelegramID, states.PlaceOrderWaitItem, newDraft(c))
	return h.showItemInput(chatID, c.Language)
}

// StartWithProduct opens a draft holding one catalog product and goes straight to the zone step.
func (h *Handler) StartWithProduct(ctx context.Context, chatID int64, c Customer, productID int64) error {
	product, err := h.productService.GetProduct(ctx, productID)
	if errors.Is(err, products.ErrNotFound) {
		h.stateManager.Clear(c.TelegramID)
		return h.send(chatID, h.l10n.Get(c.Language, "order.product_not_found", nil))
	}
	if err != nil {
		h.logger.Error("Failed to get product", "product_id", productID, "error", err)
		return h.sendError(chatID, c.Language)
	}

	draft := newDraft(c)
	draft.Items = []orders.Item{{
		ProductID: lo.ToPtr(product.ID),
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
	}}
	h.stateManager.SetState(c.TelegramID, states.PlaceOrderWaitZone, draft)

	if err := h.send(chatID, h.l10n.Get(c.Language, "order.added", map[string]interface{}{
		"item":  product.Name,
		"price": product.Price,
	})); err != nil {
		return err
	}
	return h.showZones(chatID, c.Language)
}

// Handle processes one update for a user inside the flow.
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	userID := extractUserID(update)
	chatID := extractChatID(update)

	draft, err := h.stateManager.GetOrderDraft(userID)
	if err != nil {
		h.stateManager.Clear(userID)
		return errors.Wrap(err, "get order draft")
	}

	if isCancel(update) {
		return h.handleCancel(update, chatID, userID, draft.Language)
	}

	switch state {
	case states.PlaceOrderWaitItem:
		return h.handleItem(update, chatID, userID, draft)
	case states.PlaceOrderWaitZone:
		return h.handleZone(update, chatID, userID, draft)
	case states.PlaceOrderWaitZoneConfirm:
		return h.handleZoneConfirm(update, chatID, userID, draft)
	case states.PlaceOrderWaitAddress:
		return h.handleAddress(update, chatID, userID, draft)
	case states.PlaceOrderWaitPhone:
		return h.handlePhone(update, chatID, userID, draft)
	case states.PlaceOrderWaitTime:
		return h.handleTime(update, chatID, userID, draft)
	case states.PlaceOrderWaitComment:
		return h.handleComment(update, chatID, userID, draft)
	case states.PlaceOrderWaitConfirm:
		return h.handleConfirm(ctx, update, chatID, userID, draft)
	default:
		return fmt.Errorf("unknown place order state: %s", state)
	}
}

func (h *Handler) handleItem(update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	text := messageText(update)
	if text == "" || strings.HasPrefix(text, "/") || len([]rune(text)) > products.MaxNameLength {
		h.answerCallback(update)
		return h.showItemInput(chatID, draft.Language)
	}

	draft.Items = append(draft.Items, orders.Item{
		Name:     text,
		Price:    h.fallbackPrice,
		Quantity: 1,
	})
	h.stateManager.SetState(userID, states.PlaceOrderWaitZone, draft)

	if err := h.send(chatID, h.l10n.Get(draft.Language, "order.added", map[string]interface{}{
		"item":  text,
		"price": h.fallbackPrice,
	})); err != nil {
		return err
	}
	return h.showZones(chatID, draft.Language)
}

func (h *Handler) handleZone(update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	data := callbackData(update)
	zone, ok := h.shop.Zone(strings.TrimPrefix(data, zonePrefix))
	if !strings.HasPrefix(data, zonePrefix) || !ok {
		h.answerCallback(update)
		return h.useButtons(chatID, draft.Language)
	}
	h.answerCallback(update)

	draft.ZoneID = zone.ID
	draft.ZoneName = zone.Names.In(draft.Language)
	draft.DeliveryCost = zone.Price
	h.stateManager.SetState(userID, states.PlaceOrderWaitZoneConfirm, draft)

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(draft.Language, "order.delivery_cost", map[string]interface{}{
		"zone": draft.ZoneName,
		"cost": draft.DeliveryCost,
	}))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(draft.Language, "common.yes", nil), zoneYes),
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(draft.Language, "common.no", nil), zoneNo),
		),
	)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) handleZoneConfirm(update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	h.answerCallback(update)

	switch callbackData(update) {
	case zoneYes:
		h.stateManager.SetState(userID, states.PlaceOrderWaitAddress, draft)
		return h.showAddressInput(chatID, draft.Language)
	case zoneNo:
		draft.Items = nil
		draft.ZoneID = ""
		draft.ZoneName = ""
		draft.DeliveryCost = 0
		h.stateManager.SetState(userID, states.PlaceOrderWaitItem, draft)
		return h.showItemInput(chatID, draft.Language)
	default:
		return h.useButtons(chatID, draft.Language)
	}
}

func (h *Handler) handleAddress(update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	switch {
	case update.Message != nil && update.Message.Location != nil:
		loc := update.Message.Location
		draft.Latitude = lo.ToPtr(loc.Latitude)
		draft.Longitude = lo.ToPtr(loc.Longitude)
		draft.Address = h.l10n.Get(draft.Language, "order.location_label", map[string]interface{}{
			"lat": fmt.Sprintf("%.6f", loc.Latitude),
			"lon": fmt.Sprintf("%.6f", loc.Longitude),
		})
	case messageText(update) != "" && !strings.HasPrefix(messageText(update), "/"):
		draft.Address = messageText(update)
		draft.Latitude = nil
		draft.Longitude = nil
	default:
		h.answerCallback(update)
		return h.showAddressInput(chatID, draft.Language)
	}

	h.stateManager.SetState(userID, states.PlaceOrderWaitPhone, draft)
	return h.showPhoneInput(chatID, draft.Language)
}

func (h *Handler) handlePhone(update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	var raw string
	switch {
	case update.Message != nil && update.Message.Contact != nil:
		raw = update.Message.Contact.PhoneNumber
	case messageText(update) != "":
		raw = messageText(update)
	default:
		h.answerCallback(update)
		return h.showPhoneInput(chatID, draft.Language)
	}

	phone, ok := normalizePhone(raw)
	if !ok {
		return h.send(chatID, h.l10n.Get(draft.Language, "order.invalid_phone", nil))
	}

	draft.Phone = phone
	h.stateManager.SetState(userID, states.PlaceOrderWaitTime, draft)

	ack := tgbotapi.NewMessage(chatID, "📱 "+phone)
	ack.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := h.bot.Send(ack); err != nil {
		return err
	}
	return h.showTimeSlots(chatID, draft.Language)
}

func (h *Handler) handleTime(update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	if update.CallbackQuery != nil {
		h.answerCallback(update)
		data := callbackData(update)

		if data == timeOther {
			draft.AwaitingCustomTime = true
			h.stateManager.SetState(userID, states.PlaceOrderWaitTime, draft)
			return h.send(chatID, h.l10n.Get(draft.Language, "order.enter_other_time", nil))
		}

		slot, ok := h.shop.TimeSlot(strings.TrimPrefix(data, timePrefix))
		if !strings.HasPrefix(data, timePrefix) || !ok {
			return h.useButtons(chatID, draft.Language)
		}
		draft.DeliveryTime = slot.Labels.In(draft.Language)
	} else {
		text := messageText(update)
		if !draft.AwaitingCustomTime || text == "" || strings.HasPrefix(text, "/") {
			return h.useButtons(chatID, draft.Language)
		}
		draft.DeliveryTime = text
	}

	draft.AwaitingCustomTime = false
	h.stateManager.SetState(userID, states.PlaceOrderWaitComment, draft)
	return h.showCommentInput(chatID, draft.Language)
}

func (h *Handler) handleComment(update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	text := messageText(update)
	switch {
	case callbackData(update) == commentSkip || text == skipCommand:
		h.answerCallback(update)
		draft.Comment = h.l10n.Get(draft.Language, "order.no_comment", nil)
	case text != "" && !strings.HasPrefix(text, "/"):
		draft.Comment = text
	default:
		h.answerCallback(update)
		return h.showCommentInput(chatID, draft.Language)
	}

	h.stateManager.SetState(userID, states.PlaceOrderWaitConfirm, draft)
	return h.showConfirmation(chatID, draft)
}

func (h *Handler) handleConfirm(ctx context.Context, update *tgbotapi.Update, chatID, userID int64, draft *flows.OrderDraft) error {
	h.answerCallback(update)

	switch callbackData(update) {
	case confirmCallback:
		return h.commit(ctx, chatID, userID, draft)
	case editCallback:
		fresh := newDraft(Customer{
			UserID:     draft.UserID,
			TelegramID: draft.TelegramID,
			Language:   draft.Language,
			Name:       draft.CustomerName,
		})
		h.stateManager.SetState(userID, states.PlaceOrderWaitItem, fresh)
		return h.showItemInput(chatID, draft.Language)
	default:
		return h.useButtons(chatID, draft.Language)
	}
}

// commit persists the draft, reports success and hands the order to the operator.
// The session survives a failed commit so the user can press confirm again.
func (h *Handler) commit(ctx context.Context, chatID, userID int64, draft *flows.OrderDraft) error {
	order, _, err := h.orderService.PlaceOrder(ctx, orders.NewOrder{
		Source:        orders.SourceTelegram,
		UserID:        lo.ToPtr(draft.UserID),
		CustomerName:  draft.CustomerName,
		Phone:         draft.Phone,
		Items:         draft.Items,
		Address:       draft.Address,
		Latitude:      draft.Latitude,
		Longitude:     draft.Longitude,
		DeliveryTime:  draft.DeliveryTime,
		Comment:       draft.Comment,
		ZoneID:        draft.ZoneID,
		DeliveryCost:  draft.DeliveryCost,
		ExpectedTotal: lo.ToPtr(draft.Total()),
	})
	if err != nil {
		h.logger.Error("Failed to place order", "user_id", draft.UserID, "error", err)
		return h.sendError(chatID, draft.Language)
	}

	h.stateManager.Clear(userID)

	h.logger.Info("Order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("user_id", draft.UserID),
		slog.Int64("total", order.Total))

	if err := h.send(chatID, h.l10n.Get(draft.Language, "order.success", map[string]interface{}{
		"order_id": order.ID,
	})); err != nil {
		h.logger.Error("Failed to send order confirmation", "order_id", order.ID, "error", err)
	}

	if err := h.notifier.NotifyNewOrder(ctx, order); err != nil {
		h.logger.Error("Failed to notify operator", "order_id", order.ID, "error", err)
	}

	return nil
}

func (h *Handler) handleCancel(update *tgbotapi.Update, chatID, userID int64, lang string) error {
	h.stateManager.Clear(userID)

	text := h.l10n.Get(lang, "order.cancelled", nil)
	if update.CallbackQuery != nil {
		callbackConfig := tgbotapi.NewCallback(update.CallbackQuery.ID, text)
		if _, err := h.bot.Request(callbackConfig); err != nil {
			h.logger.Error("Failed to answer callback query", "error", err)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showItemInput(chatID int64, lang string) error {
	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "order.start", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "order.select_from_catalog", nil), CatalogCallback),
		),
		h.cancelRow(lang),
	)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showZones(chatID int64, lang string) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(h.shop.Zones)+1)
	for _, zone := range h.shop.Zones {
		label := h.l10n.Get(lang, "order.zone_button", map[string]interface{}{
			"name":  zone.Names.In(lang),
			"price": zone.Price,
		})
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, zonePrefix+zone.ID),
		))
	}
	rows = append(rows, h.cancelRow(lang))

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "order.enter_zone", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showAddressInput(chatID int64, lang string) error {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(h.l10n.Get(lang, "order.send_location", nil)),
		),
	)
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "order.enter_address", nil))
	msg.ReplyMarkup = keyboard
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showPhoneInput(chatID int64, lang string) error {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(h.l10n.Get(lang, "order.share_phone", nil)),
		),
	)
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "order.enter_phone", nil))
	msg.ReplyMarkup = keyboard
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showTimeSlots(chatID int64, lang string) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(h.shop.TimeSlots)+2)
	for _, slot := range h.shop.TimeSlots {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(slot.Labels.In(lang), timePrefix+slot.ID),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "order.other_time", nil), timeOther),
		),
		h.cancelRow(lang),
	)

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "order.select_time", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showCommentInput(chatID int64, lang string) error {
	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "order.enter_comment", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "order.skip", nil), commentSkip),
		),
		h.cancelRow(lang),
	)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showConfirmation(chatID int64, draft *flows.OrderDraft) error {
	lang := draft.Language

	lines := make([]string, 0, len(draft.Items))
	for _, item := range draft.Items {
		lines = append(lines, h.l10n.Get(lang, "order.item_line", map[string]interface{}{
			"name":  itemName(item),
			"price": item.Cost(),
		}))
	}

	text := h.l10n.Get(lang, "order.confirmation", map[string]interface{}{
		"items":         strings.Join(lines, "\n"),
		"address":       draft.Address,
		"phone":         draft.Phone,
		"time":          draft.DeliveryTime,
		"comment":       draft.Comment,
		"items_cost":    draft.ItemsCost(),
		"delivery_cost": draft.DeliveryCost,
		"total":         draft.Total(),
	})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "order.confirm", nil), confirmCallback),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "order.edit", nil), editCallback),
		),
		h.cancelRow(lang),
	)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) useButtons(chatID int64, lang string) error {
	return h.send(chatID, h.l10n.Get(lang, "common.use_buttons", nil))
}

func (h *Handler) cancelRow(lang string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "common.cancel", nil), cancelCallback),
	)
}

func (h *Handler) answerCallback(update *tgbotapi.Update) {
	if update.CallbackQuery == nil {
		return
	}
	if _, err := h.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
		h.logger.Error("Failed to answer callback query", "error", err)
	}
}

func (h *Handler) send(chatID int64, text string) error {
	_, err := h.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (h *Handler) sendError(chatID int64, lang string) error {
	return h.send(chatID, h.l10n.Get(lang, "common.error", nil))
}

func newDraft(c Customer) *flows.OrderDraft {
	return &flows.OrderDraft{
		UserID:       c.UserID,
		TelegramID:   c.TelegramID,
		Language:     c.Language,
		CustomerName: c.Name,
	}
}

func itemName(item orders.Item) string {
	if item.Quantity > 1 {
		return fmt.Sprintf("%s ×%d", item.Name, item.Quantity)
	}
	return item.Name
}

func isCancel(update *tgbotapi.Update) bool {
	return callbackData(update) == cancelCallback || messageText(update) == cancelCommand
}

func messageText(update *tgbotapi.Update) string {
	if update.Message == nil {
		return ""
	}
	return strings.TrimSpace(update.Message.Text)
}

func callbackData(update *tgbotapi.Update) string {
	if update.CallbackQuery == nil {
		return ""
	}
	return update.CallbackQuery.Data
}

func extractUserID(update *tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
