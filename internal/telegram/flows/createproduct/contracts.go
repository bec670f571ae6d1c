package createproduct

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

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
		GetProductDraft(userID int64) (*flows.ProductDraft, error)
	}

	productService interface {
		CreateProduct(ctx context.Context, product products.Product) (*products.Product, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
