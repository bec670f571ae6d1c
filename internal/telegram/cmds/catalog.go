package cmds

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/storage"
	"spirit-bot/internal/stories/products"
)

// CategoryCallbackPrefix covers cat_<category> and cat_<category>_<subtype>.
const (
	CategoryCallbackPrefix = "cat_"
	orderProductPrefix     = "order_product_"
)

type CatalogCommand struct {
	bot      botApi
	l10n     localizer
	products CatalogProducts
	actions  ActionLogger
	logger   *slog.Logger
}

type CatalogProducts interface {
	ListByCategory(ctx context.Context, category products.Category) ([]*products.Product, error)
	ListByCategoryAndSubtype(ctx context.Context, category products.Category, subtype products.Subtype) ([]*products.Product, error)
}

type ActionLogger interface {
	LogAction(ctx context.Context, userID int64, action string) error
}

func NewCatalogCommand(bot botApi, l10n localizer, ps CatalogProducts, actions ActionLogger, logger *slog.Logger) *CatalogCommand {
	return &CatalogCommand{
		bot:      bot,
		l10n:     l10n,
		products: ps,
		actions:  actions,
		logger:   logger,
	}
}

// Execute records a catalog view and shows the categories.
func (c *CatalogCommand) Execute(ctx context.Context, chatID, userID int64, lang string) error {
	if err := c.actions.LogAction(ctx, userID, storage.ActionCatalogView); err != nil {
		c.logger.Error("Failed to log catalog view", "user_id", userID, "error", err)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products.Categories))
	for _, category := range products.Categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "catalog."+string(category), nil), CategoryCallbackPrefix+string(category)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "catalog.select_category", nil)+"\n\n"+c.l10n.Get(lang, "catalog.disclaimer", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := c.bot.Send(msg)
	return err
}

// HandleCallback routes cat_* buttons. Sorts are split by subtype first.
func (c *CatalogCommand) HandleCallback(ctx context.Context, chatID int64, lang, data string) error {
	parts := strings.SplitN(strings.TrimPrefix(data, CategoryCallbackPrefix), "_", 2)
	category := products.Category(parts[0])
	if !category.Valid() {
		return fmt.Errorf("unknown catalog callback: %s", data)
	}

	if len(parts) == 2 {
		subtype := products.Subtype(parts[1])
		if !subtype.Valid() {
			return fmt.Errorf("unknown catalog callback: %s", data)
		}
		list, err := c.products.ListByCategoryAndSubtype(ctx, category, subtype)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return c.sendCards(chatID, lang, list)
	}

	if category == products.CategorySorts {
		return c.showSubtypes(chatID, lang, category)
	}

	list, err := c.products.ListByCategory(ctx, category)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	return c.sendCards(chatID, lang, list)
}

func (c *CatalogCommand) showSubtypes(chatID int64, lang string, category products.Category) error {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products.Subtypes)+1)
	for _, subtype := range products.Subtypes {
		label := subtype.Emoji() + " " + c.l10n.Get(lang, "catalog.types."+string(subtype), nil)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, CategoryCallbackPrefix+string(category)+"_"+string(subtype)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "common.back", nil), MenuCatalogCallback),
	))

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "catalog.select_sort_type", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err := c.bot.Send(msg)
	return err
}

func (c *CatalogCommand) sendCards(chatID int64, lang string, list []*products.Product) error {
	if len(list) == 0 {
		msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "catalog.no_products", nil))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "common.back", nil), MenuCatalogCallback),
		))
		_, err := c.bot.Send(msg)
		return err
	}

	for _, p := range list {
		msg := tgbotapi.NewMessage(chatID, c.card(lang, p))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "catalog.order_this", nil), orderProductPrefix+strconv.FormatInt(p.ID, 10)),
		))
		if _, err := c.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *CatalogCommand) card(lang string, p *products.Product) string {
	special := ""
	if p.SpecialOffer != "" {
		special = "\n🎁 " + p.SpecialOffer
	}
	return c.l10n.Get(lang, "catalog.product_card", map[string]interface{}{
		"type_emoji":  p.Subtype.Emoji(),
		"name":        p.Name,
		"type":        c.l10n.Get(lang, "catalog.types."+string(p.Subtype), nil),
		"thc":         p.Potency,
		"price":       p.Price,
		"description": p.Description,
		"special":     special,
	})
}
