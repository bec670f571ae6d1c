package editproduct

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
		GetEditProductData(userID int64) (*flows.EditProductData, error)
	}

	productService interface {
		ListAll(ctx context.Context, includeHidden bool) ([]*products.Product, error)
		GetProduct(ctx context.Context, id int64) (*products.Product, error)
		UpdateProduct(ctx context.Context, id int64, params products.UpdateParams) (*products.Product, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
