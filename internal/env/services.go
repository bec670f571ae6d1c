package environment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"spirit-bot/internal/api"
	"spirit-bot/internal/config"
	"spirit-bot/internal/localization"
	"spirit-bot/internal/storage"
	"spirit-bot/internal/stories/orders"
	"spirit-bot/internal/stories/products"
	"spirit-bot/internal/stories/users"
	"spirit-bot/internal/telegram"
	"spirit-bot/internal/telegram/cmds"
	"spirit-bot/internal/telegram/dispatch"
	"spirit-bot/internal/telegram/flows/createproduct"
	"spirit-bot/internal/telegram/flows/editproduct"
	"spirit-bot/internal/telegram/flows/placeorder"
	"spirit-bot/internal/telegram/states"
	"spirit-bot/internal/workers"
	"spirit-bot/internal/workers/digest"
)

type Services struct {
	TelegramRouter *telegram.Router
	AdminChecker   *telegram.AdminChecker
	API            *api.Handler
	Workers        *workers.Manager
}

func newServices(_ context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	l10n, err := localization.NewService(cfg.DefaultLanguage)
	if err != nil {
		return nil, errors.Wrap(err, "localization")
	}

	shop, err := config.LoadShop(cfg.ShopConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "shop config")
	}

	storageImpl := storage.New(clients.SQLiteDB.DB)
	bot := clients.TelegramBot

	userService := users.NewService(storageImpl, l10n)
	productService := products.NewService(storageImpl)
	orderService := orders.NewService(storageImpl)

	stateManager := states.NewManager()
	s.AdminChecker = telegram.NewAdminChecker(&cfg.Telegram)

	operatorLang := l10n.Resolve(cfg.Telegram.OperatorLanguage)
	dispatcher := dispatch.NewDispatcher(
		bot,
		orderService,
		userService,
		s.AdminChecker,
		l10n,
		shop,
		cfg.Telegram.OperatorID,
		operatorLang,
		logger.WithGroup("dispatch"),
	)

	placeOrderHandler := placeorder.NewHandler(
		bot,
		stateManager,
		productService,
		orderService,
		dispatcher,
		l10n,
		shop,
		cfg.Order.FallbackItemPrice,
		logger,
	)

	s.TelegramRouter = telegram.NewRouter(
		bot,
		stateManager,
		userService,
		s.AdminChecker,
		storageImpl,
		l10n,
		logger,
		placeOrderHandler,
		createproduct.NewHandler(bot, stateManager, productService, l10n, logger),
		editproduct.NewHandler(bot, stateManager, productService, l10n, logger),
		dispatcher,
		cmds.NewStartCommand(bot, l10n),
		cmds.NewInfoCommand(bot, l10n, shop),
		cmds.NewCatalogCommand(bot, l10n, productService, storageImpl, logger),
		cmds.NewMyOrdersCommand(bot, l10n, orderService),
		cmds.NewAdminCommand(bot, l10n, productService, orderService, dispatcher, logger),
		cmds.NewStatsCommand(bot, l10n, storageImpl),
	)

	s.API = api.NewHandler(productService, orderService, storageImpl, dispatcher, logger.WithGroup("api"))

	var jobs []workers.Worker
	if cfg.Digest.Enabled {
		jobs = append(jobs, digest.NewWorker(
			orderService,
			bot,
			l10n,
			cfg.Digest.Schedule,
			cfg.Telegram.OperatorID,
			operatorLang,
			logger.WithGroup("digest"),
		))
	}
	s.Workers = workers.NewManager(logger, jobs...)

	return &s, nil
}
