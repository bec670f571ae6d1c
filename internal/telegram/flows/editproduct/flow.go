package editproduct

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/telegram/flows"
	"spirit-bot/internal/telegram/states"
)

const (
	productPrefix  = "aep_prod_"
	fieldPrefix    = "aep_field_"
	valuePrefix    = "aep_val_"
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

// Start shows every product, hidden ones included, for editing.
func (h *Handler) Start(ctx context.Context, chatID, userID int64, lang string) error {
	list, err := h.productService.ListAll(ctx, true)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
		return h.send(chatID, h.l10n.Get(lang, "common.error", nil))
	}
	if len(list) == 0 {
		return h.send(chatID, h.l10n.Get(lang, "catalog.no_products", nil))
	}

	h.stateManager.SetState(userID, states.AdminEditProductWaitProduct, &flows.EditProductData{Language: lang})

	rows := lo.Map(list, func(p *products.Product, _ int) []tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s — ฿%d", p.Subtype.Emoji(), p.Name, p.Price),
				productPrefix+strconv.FormatInt(p.ID, 10),
			),
		)
	})
	rows = append(rows, h.cancelRow(lang))

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "admin.select_product_to_edit", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) Handle(ctx context.Context, update *tgbotapi.Update, state states.State) error {
	userID := extractUserID(update)
	chatID := extractChatID(update)

	data, err := h.stateManager.GetEditProductData(userID)
	if err != nil {
		h.stateManager.Clear(userID)
		return errors.Wrap(err, "get edit product data")
	}

	if callbackData(update) == cancelCallback || messageText(update) == cancelCommand {
		h.stateManager.Clear(userID)
		h.answerCallback(update)
		return h.send(chatID, h.l10n.Get(data.Language, "common.cancelled", nil))
	}

	switch state {
	case states.AdminEditProductWaitProduct:
		return h.handleProduct(ctx, update, chatID, userID, data)
	case states.AdminEditProductWaitField:
		return h.handleField(ctx, update, chatID, userID, data)
	case states.AdminEditProductWaitValue:
		return h.handleValue(ctx, update, chatID, userID, data)
	default:
		return fmt.Errorf("unknown edit product state: %s", state)
	}
}

func (h *Handler) handleProduct(ctx context.Context, update *tgbotapi.Update, chatID, userID int64, data *flows.EditProductData) error {
	h.answerCallback(update)

	id, err := strconv.ParseInt(strings.TrimPrefix(callbackData(update), productPrefix), 10, 64)
	if !strings.HasPrefix(callbackData(update), productPrefix) || err != nil {
		return h.send(chatID, h.l10n.Get(data.Language, "common.use_buttons", nil))
	}

	product, err := h.productService.GetProduct(ctx, id)
	if errors.Is(err, products.ErrNotFound) {
		h.stateManager.Clear(userID)
		return h.send(chatID, h.l10n.Get(data.Language, "admin.product_not_found", nil))
	}
	if err != nil {
		h.logger.Error("Failed to get product", "product_id", id, "error", err)
		return h.send(chatID, h.l10n.Get(data.Language, "common.error", nil))
	}

	data.ProductID = product.ID
	data.ProductName = product.Name
	h.stateManager.SetState(userID, states.AdminEditProductWaitField, data)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(editableFields)+1)
	for _, field := range editableFields {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.fieldLabel(data.Language, field), fieldPrefix+field),
		))
	}
	rows = append(rows, h.cancelRow(data.Language))

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(data.Language, "admin.select_field", map[string]interface{}{
		"name": product.Name,
	}))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleField(ctx context.Context, update *tgbotapi.Update, chatID, userID int64, data *flows.EditProductData) error {
	h.answerCallback(update)

	field := strings.TrimPrefix(callbackData(update), fieldPrefix)
	if !strings.HasPrefix(callbackData(update), fieldPrefix) || !lo.Contains(editableFields, field) {
		return h.send(chatID, h.l10n.Get(data.Language, "common.use_buttons", nil))
	}

	product, err := h.productService.GetProduct(ctx, data.ProductID)
	if err != nil {
		h.stateManager.Clear(userID)
		h.logger.Error("Failed to get product", "product_id", data.ProductID, "error", err)
		return h.send(chatID, h.l10n.Get(data.Language, "admin.product_not_found", nil))
	}

	data.Field = field
	h.stateManager.SetState(userID, states.AdminEditProductWaitValue, data)

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(data.Language, "admin.enter_new_value", map[string]interface{}{
		"field":   h.fieldLabel(data.Language, field),
		"current": currentValue(product, field),
	}))
	msg.ReplyMarkup = h.valueKeyboard(data.Language, field)
	_, err = h.bot.Send(msg)
	return err
}

func (h *Handler) handleValue(ctx context.Context, update *tgbotapi.Update, chatID, userID int64, data *flows.EditProductData) error {
	var raw string
	if choiceField(data.Field) {
		h.answerCallback(update)
		if !strings.HasPrefix(callbackData(update), valuePrefix) {
			return h.send(chatID, h.l10n.Get(data.Language, "common.use_buttons", nil))
		}
		raw = strings.TrimPrefix(callbackData(update), valuePrefix)
	} else {
		raw = messageText(update)
		if raw == "" || (strings.HasPrefix(raw, "/") && raw != skipCommand) {
			h.answerCallback(update)
			return h.repromptValue(chatID, data)
		}
	}

	params, err := parseValue(data.Field, raw)
	if errors.Is(err, errInvalidValue) {
		return h.repromptValue(chatID, data)
	}
	if err != nil {
		h.stateManager.Clear(userID)
		return errors.Wrap(err, "parse value")
	}

	_, err = h.productService.UpdateProduct(ctx, data.ProductID, params)
	switch {
	case errors.Is(err, products.ErrInvalid):
		return h.repromptValue(chatID, data)
	case errors.Is(err, products.ErrNotFound):
		h.stateManager.Clear(userID)
		return h.send(chatID, h.l10n.Get(data.Language, "admin.product_not_found", nil))
	case err != nil:
		h.stateManager.Clear(userID)
		h.logger.Error("Failed to update product", "product_id", data.ProductID, "error", err)
		return h.send(chatID, h.l10n.Get(data.Language, "common.error", nil))
	}

	h.stateManager.Clear(userID)
	h.logger.Info("Product updated", slog.Int64("product_id", data.ProductID), slog.String("field", data.Field))
	return h.send(chatID, h.l10n.Get(data.Language, "admin.product_updated", nil))
}

func (h *Handler) repromptValue(chatID int64, data *flows.EditProductData) error {
	key := "admin.invalid_number"
	if data.Field == fieldName {
		key = "admin.invalid_name"
	}
	if choiceField(data.Field) {
		key = "common.use_buttons"
	}

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(data.Language, key, nil))
	msg.ReplyMarkup = h.valueKeyboard(data.Language, data.Field)
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) valueKeyboard(lang, field string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	switch field {
	case fieldCategory:
		for _, c := range products.Categories {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "catalog."+string(c), nil), valuePrefix+string(c)),
			))
		}
	case fieldType:
		for _, s := range products.Subtypes {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					s.Emoji()+" "+h.l10n.Get(lang, "catalog.types."+string(s), nil),
					valuePrefix+string(s),
				),
			))
		}
	}
	rows = append(rows, h.cancelRow(lang))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Handler) fieldLabel(lang, field string) string {
	return h.l10n.Get(lang, "admin.fields."+field, nil)
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
