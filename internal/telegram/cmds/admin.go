package cmds

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
)

// adm -> admin panel
const (
	AdminPanelCallback      = "adm_panel"
	AdminAddCallback        = "adm_add"
	AdminEditCallback       = "adm_edit"
	AdminToggleListCallback = "adm_toggle"
	AdminDeleteListCallback = "adm_delete"
	AdminStatsCallback      = "adm_stats"
	AdminOrdersCallback     = "adm_orders"

	AdminToggleCallbackPrefix = "adm_tgl_"
	AdminDeleteCallbackPrefix = "adm_del_"

	activeOrdersLimit = 10
)

type AdminCommand struct {
	bot      botApi
	l10n     localizer
	products AdminProducts
	orders   ActiveOrders
	cards    OrderCardSender
	logger   *slog.Logger
}

type AdminProducts interface {
	ListAll(ctx context.Context, includeHidden bool) ([]*products.Product, error)
	ToggleActive(ctx context.Context, id int64) (*products.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type ActiveOrders interface {
	ListActive(ctx context.Context, limit int) ([]*orders.Order, error)
}

type OrderCardSender interface {
	SendOrderCard(chatID int64, order *orders.Order) error
}

func NewAdminCommand(
	bot botApi,
	l10n localizer,
	ps AdminProducts,
	os ActiveOrders,
	cards OrderCardSender,
	logger *slog.Logger,
) *AdminCommand {
	return &AdminCommand{
		bot:      bot,
		l10n:     l10n,
		products: ps,
		orders:   os,
		cards:    cards,
		logger:   logger,
	}
}

func (c *AdminCommand) Panel(chatID int64, lang string) error {
	button := func(key, data string) []tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, key, nil), data))
	}

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "admin.menu", nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		button("admin.add_product", AdminAddCallback),
		button("admin.edit_product", AdminEditCallback),
		button("admin.toggle_product", AdminToggleListCallback),
		button("admin.delete_product", AdminDeleteListCallback),
		button("admin.view_stats", AdminStatsCallback),
		button("admin.orders", AdminOrdersCallback),
	)
	_, err := c.bot.Send(msg)
	return err
}

// ToggleList shows every product with its visibility mark.
func (c *AdminCommand) ToggleList(ctx context.Context, chatID int64, lang string) error {
	return c.productList(ctx, chatID, lang, "admin.select_product_to_toggle", AdminToggleCallbackPrefix)
}

func (c *AdminCommand) DeleteList(ctx context.Context, chatID int64, lang string) error {
	return c.productList(ctx, chatID, lang, "admin.select_product_to_delete", AdminDeleteCallbackPrefix)
}

func (c *AdminCommand) Toggle(ctx context.Context, chatID int64, lang, data string) error {
	id, err := strconv.ParseInt(data[len(AdminToggleCallbackPrefix):], 10, 64)
	if err != nil {
		return fmt.Errorf("parse product id: %w", err)
	}

	product, err := c.products.ToggleActive(ctx, id)
	if errors.Is(err, products.ErrNotFound) {
		return c.send(chatID, c.l10n.Get(lang, "admin.product_not_found", nil))
	}
	if err != nil {
		return fmt.Errorf("toggle product: %w", err)
	}

	c.logger.Info("Product visibility changed", slog.Int64("product_id", id), slog.Bool("is_active", product.IsActive))

	key := "admin.product_hidden"
	if product.IsActive {
		key = "admin.product_visible"
	}
	if err := c.send(chatID, product.Name+"\n"+c.l10n.Get(lang, key, nil)); err != nil {
		return err
	}
	return c.ToggleList(ctx, chatID, lang)
}

func (c *AdminCommand) Delete(ctx context.Context, chatID int64, lang, data string) error {
	id, err := strconv.ParseInt(data[len(AdminDeleteCallbackPrefix):], 10, 64)
	if err != nil {
		return fmt.Errorf("parse product id: %w", err)
	}

	err = c.products.DeleteProduct(ctx, id)
	if errors.Is(err, products.ErrNotFound) {
		return c.send(chatID, c.l10n.Get(lang, "admin.product_not_found", nil))
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	c.logger.Info("Product deleted", slog.Int64("product_id", id))
	return c.send(chatID, c.l10n.Get(lang, "admin.product_deleted", nil))
}

// Orders sends a card with actions for every order that still needs handling.
func (c *AdminCommand) Orders(ctx context.Context, chatID int64, lang string) error {
	list, err := c.orders.ListActive(ctx, activeOrdersLimit)
	if err != nil {
		return fmt.Errorf("list active orders: %w", err)
	}
	if len(list) == 0 {
		return c.send(chatID, c.l10n.Get(lang, "admin.no_orders", nil))
	}

	for _, order := range list {
		if err := c.cards.SendOrderCard(chatID, order); err != nil {
			return fmt.Errorf("send order card: %w", err)
		}
	}
	return nil
}

func (c *AdminCommand) productList(ctx context.Context, chatID int64, lang, titleKey, prefix string) error {
	list, err := c.products.ListAll(ctx, true)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(list) == 0 {
		return c.send(chatID, c.l10n.Get(lang, "catalog.no_products", nil))
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(list)+1)
	for _, p := range list {
		mark := "✅"
		if !p.IsActive {
			mark = "❌"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s — ฿%d", mark, p.Name, p.Price),
				prefix+strconv.FormatInt(p.ID, 10),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "common.back", nil), AdminPanelCallback),
	))

	msg := tgbotapi.NewMessage(chatID, c.l10n.Get(lang, titleKey, nil))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = c.bot.Send(msg)
	return err
}

func (c *AdminCommand) send(chatID int64, text string) error {
	_, err := c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
