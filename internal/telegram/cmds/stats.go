package cmds

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/storage"
)

type StatsCommand struct {
	bot     botApi
	l10n    localizer
	storage StatisticsStorage
	now     func() time.Time
}

type StatisticsStorage interface {
	GetStatistics(ctx context.Context, now time.Time) (*storage.StatisticsData, error)
}

func NewStatsCommand(bot botApi, l10n localizer, storage StatisticsStorage) *StatsCommand {
	return &StatsCommand{
		bot:     bot,
		l10n:    l10n,
		storage: storage,
		now:     time.Now,
	}
}

func (c *StatsCommand) Execute(ctx context.Context, chatID int64, lang string) error {
	stats, err := c.storage.GetStatistics(ctx, c.now())
	if err != nil {
		_, _ = c.bot.Send(tgbotapi.NewMessage(chatID, c.l10n.Get(lang, "common.error", nil)))
		return fmt.Errorf("get statistics: %w", err)
	}

	text := c.l10n.Get(lang, "admin.stats", map[string]interface{}{
		"users":    stats.Users,
		"products": stats.ActiveProducts,
		"views":    stats.ViewsToday,
		"orders":   stats.OrdersToday,
		"revenue":  stats.RevenueToday,
	})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.l10n.Get(lang, "common.back", nil), AdminPanelCallback),
		),
	)
	_, err = c.bot.Send(msg)
	return err
}
