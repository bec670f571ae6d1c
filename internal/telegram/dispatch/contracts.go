package dispatch

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/users"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	orderService interface {
		Transition(ctx context.Context, id int64, to orders.Status) (*orders.Order, error)
	}

	userService interface {
		GetByID(ctx context.Context, id int64) (*users.User, error)
	}

	adminChecker interface {
		IsAdmin(telegramID int64) bool
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
