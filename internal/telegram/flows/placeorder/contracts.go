package placeorder

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/telegram/flows"
	"spirit-bot/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	stateManager interface {
		GetState(userID int64) states.State
		SetState(userID int64, state states.State, data any)
		Clear(userID int64)
		GetOrderDraft(userID int64) (*flows.OrderDraft, error)
	}

	productService interface {
		GetProduct(ctx context.Context, id int64) (*products.Product, error)
	}

	orderService interface {
		PlaceOrder(ctx context.Context, in orders.NewOrder) (*orders.Order, bool, error)
	}

	notifier interface {
		NotifyNewOrder(ctx context.Context, order *orders.Order) error
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
