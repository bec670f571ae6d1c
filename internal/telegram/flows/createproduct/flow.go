package createproduct

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/telegram/flows"
	"spirit-bot/internal/telegram/states"
)

const (
	categoryPrefix = "acp_cat_"
	typePrefix     = "acp_type_"
	cancelCallback = "cancel"
	skipCommand    = "/skip"
	cancelCommand  = "/cancel"
)

type Handler struct {
	bot            botApi
	stateManager   stateManager
	productService productService
	l10n           localizer
	logger         *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	ps productService,
	l10n localizer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:            bot,
		stateManager:   sm,
		productService: ps,
		l10n:           l10n,
		logger:         logger,
	}
}

// Start begins the product creation flow (admins only).
func (h *Handler) Start(chatID, userID int64, lang string) error {
	h.stateManager.SetState(userID, states.AdminCreateProductWaitName, &flows.ProductDraft{Language: lang})
	return h.sendWithCancel(chatID, lang, h.l10n.Get(lang, "admin.enter_product_name", nil))
}

// Handle processes the current state
func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	userID := extractUserID(update)
	chatID := extractChatID(update)

	draft, err := h.stateManager.GetProductDraft(userID)
	if err != nil {
		h.stateManager.Clear(userID)
		return errors.Wrap(err, "get product draft")
	}

	if callbackData(update) == cancelCallback || messageText(update) == cancelCommand {
		return h.handleCancel(update, chatID, userID, draft.Language)
	}

	switch state {
	case states.AdminCreateProductWaitName:
		return h.handleName(update, chatID, userID, draft)
	case states.AdminCreateProductWaitCategory:
		return h.handleCategory(update, chatID, userID, draft)
	case states.AdminCreateProductWaitType:
		return h.handleType(update, chatID, userID, draft)
	case states.AdminCreateProductWaitPotency:
		return h.handlePotency(update, chatID, userID, draft)
	case states.AdminCreateProductWaitPrice:
		return h.handlePrice(update, chatID, userID, draft)
	case states.AdminCreateProductWaitDescription:
		return h.handleDescription(update, chatID, userID, draft)
	case states.AdminCreateProductWaitSpecialOffer:
		return h.handleSpecialOffer(ctx, update, chatID, userID, draft)
	default:
		return fmt.Errorf("unknown create product state: %s", state)
	}
}

func (h *Handler) handleName(update *tgbotapi.Update, chatID, userID int64, draft *flows.ProductDraft) error {
	name := messageText(update)
	if name == "" || strings.HasPrefix(name, "/") || utf8.RuneCountInString(name) > products.MaxNameLength {
		h.answerCallback(update)
		return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.invalid_name", nil))
	}

	draft.Name = name
	h.stateManager.SetState(userID, states.AdminCreateProductWaitCategory, draft)
	return h.showCategories(chatID, draft.Language)
}

func (h *Handler) handleCategory(update *tgbotapi.Update, chatID, userID int64, draft *flows.ProductDraft) error {
	h.answerCallback(update)

	category := products.Category(strings.TrimPrefix(callbackData(update), categoryPrefix))
	if !strings.HasPrefix(callbackData(update), categoryPrefix) || !category.Valid() {
		return h.send(chatID, h.l10n.Get(draft.Language, "common.use_buttons", nil))
	}

	draft.Category = category
	h.stateManager.SetState(userID, states.AdminCreateProductWaitType, draft)
	return h.showTypes(chatID, draft.Language)
}

func (h *Handler) handleType(update *tgbotapi.Update, chatID, userID int64, draft *flows.ProductDraft) error {
	h.answerCallback(update)

	subtype := products.Subtype(strings.TrimPrefix(callbackData(update), typePrefix))
	if !strings.HasPrefix(callbackData(update), typePrefix) || !subtype.Valid() {
		return h.send(chatID, h.l10n.Get(draft.Language, "common.use_buttons", nil))
	}

	draft.Subtype = subtype
	h.stateManager.SetState(userID, states.AdminCreateProductWaitPotency, draft)
	return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.enter_potency", nil))
}

func (h *Handler) handlePotency(update *tgbotapi.Update, chatID, userID int64, draft *flows.ProductDraft) error {
	potency, err := strconv.Atoi(messageText(update))
	if err != nil || potency < 0 || potency > 100 {
		h.answerCallback(update)
		return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.invalid_number", nil))
	}

	draft.Potency = potency
	h.stateManager.SetState(userID, states.AdminCreateProductWaitPrice, draft)
	return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.enter_price", nil))
}

func (h *Handler) handlePrice(update *tgbotapi.Update, chatID, userID int64, draft *flows.ProductDraft) error {
	price, err := strconv.ParseInt(messageText(update), 10, 64)
	if err != nil || price < 0 {
		h.answerCallback(update)
		return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.invalid_number", nil))
	}

	draft.Price = price
	h.stateManager.SetState(userID, states.AdminCreateProductWaitDescription, draft)
	return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.enter_description", nil))
}

func (h *Handler) handleDescription(update *tgbotapi.Update, chatID, userID int64, draft *flows.ProductDraft) error {
	text, ok := optionalText(update)
	if !ok {
		h.answerCallback(update)
		return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.enter_description", nil))
	}

	draft.Description = text
	h.stateManager.SetState(userID, states.AdminCreateProductWaitSpecialOffer, draft)
	return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.enter_special_offer", nil))
}

func (h *Handler) handleSpecialOffer(ctx context.Context, update *tgbotapi.Update, chatID, userID int64, draft *flows.ProductDraft) error {
	text, ok := optionalText(update)
	if !ok {
		h.answerCallback(update)
		return h.sendWithCancel(chatID, draft.Language, h.l10n.Get(draft.Language, "admin.enter_special_offer", nil))
	}
	draft.SpecialOffer = text

	product, err := h.productService.CreateProduct(ctx, products.Product{
		Name:         draft.Name,
		Category:     draft.Category,
		Subtype:      draft.Subtype,
		Potency:      draft.Potency,
		Price:        draft.Price,
		Description:  draft.Description,
		SpecialOffer: draft.SpecialOffer,
		IsActive:     true,
	})
	h.stateManager.Clear(userID)
	if err != nil {
		h.logger.Error("Failed to create product", "error", err)
		return h.send(chatID, h.l10n.Get(draft.Language, "common.error", nil))
	}

	h.logger.Info("Product created", slog.Int64("product_id", product.ID), slog.String("name", product.Name))

	return h.send(chatID, h.l10n.Get(draft.Language, "admin.product_added", map[string]interface{}{
		"id":   product.ID,
		"name": product.Name,
	}))
}

func (h *Handler) handleCancel(update *tgbotapi.Update, chatID, userID int64, lang string) error {
	h.stateManager.Clear(userID)
	h.answerCallback(update)
	return h.send(chatID, h.l10n.Get(lang, "common.cancelled", nil))
}

func (h *Handler) showCategories(chatID int64, lang string) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products.Categories)+1)
	for _, c := range products.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "catalog."+string(c), nil), categoryPrefix+string(c)),
		))
	}
	rows = append(rows, h.cancelRow(lang))

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "admin.select_product_category", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) showTypes(chatID int64, lang string) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products.Subtypes)+1)
	for _, t := range products.Subtypes {
		label := t.Emoji() + " " + h.l10n.Get(lang, "catalog.types."+string(t), nil)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, typePrefix+string(t)),
		))
	}
	rows = append(rows, h.cancelRow(lang))

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "admin.select_product_type", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) sendWithCancel(chatID int64, lang, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(h.cancelRow(lang))
	_, err := h.bot.Send(msg)
	return err
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

// optionalText returns the typed text, or an empty string for /skip.
func optionalText(update *tgbotapi.Update) (string, bool) {
	text := messageText(update)
	switch {
	case text == skipCommand:
		return "", true
	case text == "" || strings.HasPrefix(text, "/"):
		return "", false
	default:
		return text, true
	}
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
