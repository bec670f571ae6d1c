package cmds

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"spirit-bot/internal/stories/orders"
)

const myOrdersLimit = 10

type MyOrdersCommand struct {
	bot    botApi
	l10n   localizer
	orders UserOrders
}

type UserOrders interface {
	ListUserOrders(ctx context.Context, userID int64, limit int) ([]*orders.Order, error)
}

func NewMyOrdersCommand(bot botApi, l10n localizer, orders UserOrders) *MyOrdersCommand {
	return &MyOrdersCommand{
		bot:    bot,
		l10n:   l10n,
		orders: orders,
	}
}

// Execute lists the user's latest orders with their current status.
func (c *MyOrdersCommand) Execute(ctx context.Context, chatID, userID int64, lang string) error {
	list, err := c.orders.ListUserOrders(ctx, userID, myOrdersLimit)
	if err != nil {
		_, _ = c.bot.Send(tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "common.error", nil)))
		return fmt.Errorf("list user orders: %w", err)
	}

	if len(list) == 0 {
		_, err = c.bot.Send(tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "my_orders.empty", nil)))
		return err
	}

	blocks := lo.Map(list, func(o *orders.Order, _ int) string {
		names := lo.Map(o.Items, func(item orders.Item, _ int) string { return item.Name })
		return c.l10n.Get(lang, "my_orders.item", map[string]interface{}{
			"order_id": o.ID,
			"status":   c.l10n.Get(lang, "status."+string(o.Status), nil),
			"date":     o.CreatedAt.Local().Format("02.01.2006 15:04"),
			"items":    strings.Join(names, ", "),
			"total":    o.Total,
		})
	})

	text := c.l10n.Get(lang, "my_orders.title", nil) + "\n\n" + strings.Join(blocks, "\n\n")
	_, err = c.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
