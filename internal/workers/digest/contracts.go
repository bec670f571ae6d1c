package digest

import (
	"context"

	"spirit-bot/internal/stories/orders"
)

type (
	OrderSummary interface {
		Today(ctx context.Context) (*orders.DaySummary, error)
	}

	TelegramBot interface {
		SendMessage(chatID int64, text string) error
	}

	Localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
