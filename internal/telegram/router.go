package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/metrics"
	"spirit-bot/internal/storage"
	"spirit-bot/internal/stories/users"
	"spirit-bot/internal/telegram/cmds"
	"spirit-bot/internal/telegram/dispatch"
	"spirit-bot/internal/telegram/flows/createproduct"
	"spirit-bot/internal/telegram/flows/editproduct"
	"spirit-bot/internal/telegram/flows/placeorder"
	"spirit-bot/internal/telegram/states"
)

type Router struct {
	bot          botApi
	stateManager stateManager
	userService  userService
	adminChecker adminChecker
	actions      actionLogger
	l10n         localizer
	logger       *slog.Logger

	// Handlers
	placeOrderHandler    *placeorder.Handler
	createProductHandler *createproduct.Handler
	editProductHandler   *editproduct.Handler
	dispatcher           *dispatch.Dispatcher
	startCommand         *cmds.StartCommand
	infoCommand          *cmds.InfoCommand
	catalogCommand       *cmds.CatalogCommand
	myOrdersCommand      *cmds.MyOrdersCommand
	adminCommand         *cmds.AdminCommand
	statsCommand         *cmds.StatsCommand
}

type botApi interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type stateManager interface {
	GetState(userID int64) states.State
	Clear(userID int64)
}

type userService interface {
	GetOrCreate(ctx context.Context, profile users.Profile) (*users.User, error)
	SetLanguage(ctx context.Context, userID int64, lang string) (*users.User, error)
	AcceptDisclaimer(ctx context.Context, userID int64) error
}

type adminChecker interface {
	IsAdmin(telegramID int64) bool
}

type actionLogger interface {
	LogAction(ctx context.Context, userID int64, action string) error
}

type localizer interface {
	Get(lang, key string, params map[string]interface{}) string
}

// Route handles one update. Unexpected errors are reported to the user as a
// localized error message and returned for logging.
func (r *Router) Route(ctx context.Context, update *tgbotapi.Update) error {
	telegramID := extractUserID(update)
	if telegramID == 0 {
		return nil
	}
	chatID := extractChatID(update)

	metrics.TelegramUpdatesTotal.WithLabelValues(updateKind(update)).Inc()

	user, err := r.userService.GetOrCreate(ctx, profileOf(update))
	if err != nil {
		_ = r.sendError(chatID, "")
		return err
	}

	if err := r.route(ctx, update, user, chatID); err != nil {
		_ = r.sendError(chatID, user.Language)
		return err
	}
	return nil
}

func (r *Router) route(ctx context.Context, update *tgbotapi.Update, user *users.User, chatID int64) error {
	state := r.stateManager.GetState(user.TelegramID)

	// Commands first. /cancel and /skip belong to the active flow, any other command ends it.
	if update.Message != nil && update.Message.IsCommand() {
		command := update.Message.Command()
		if (command == "cancel" || command == "skip") && state != states.StateNone {
			update.Message.Text = "/" + command
			return r.routeState(ctx, update, user, state)
		}
		r.stateManager.Clear(user.TelegramID)
		return r.handleCommand(ctx, user, chatID, command)
	}

	if update.CallbackQuery != nil {
		handled, err := r.handleGlobalCallback(ctx, update, user, chatID)
		if handled || err != nil {
			return err
		}
	}

	if !r.onboarded(user) {
		return r.continueOnboarding(user, chatID)
	}

	if state != states.StateNone {
		return r.routeState(ctx, update, user, state)
	}

	if update.CallbackQuery != nil {
		r.answerCallback(update.CallbackQuery.ID)
		if update.CallbackQuery.Data == "cancel" {
			return r.send(chatID, r.l10n.Get(user.Language, "common.cancelled", nil))
		}
	}
	return r.startCommand.Help(chatID, user.Language)
}

func (r *Router) routeState(ctx context.Context, update *tgbotapi.Update, user *users.User, state states.State) error {
	switch {
	case state.HasPrefix("po_"):
		return r.placeOrderHandler.Handle(ctx, update, state)
	case state.HasPrefix("acp_") && r.adminChecker.IsAdmin(user.TelegramID):
		return r.createProductHandler.Handle(ctx, update, state)
	case state.HasPrefix("aep_") && r.adminChecker.IsAdmin(user.TelegramID):
		return r.editProductHandler.Handle(ctx, update, state)
	default:
		r.stateManager.Clear(user.TelegramID)
		return r.startCommand.Help(extractChatID(update), user.Language)
	}
}

func (r *Router) handleCommand(ctx context.Context, user *users.User, chatID int64, command string) error {
	lang := user.Language

	if !r.onboarded(user) {
		if command == "language" {
			return r.startCommand.AskLanguage(chatID, lang)
		}
		return r.continueOnboarding(user, chatID)
	}

	switch command {
	case "start":
		return r.startCommand.MainMenu(chatID, lang, r.adminChecker.IsAdmin(user.TelegramID))
	case "catalog":
		return r.catalogCommand.Execute(ctx, chatID, user.ID, lang)
	case "order":
		return r.startOrder(ctx, user, chatID)
	case "my_orders":
		return r.myOrdersCommand.Execute(ctx, chatID, user.ID, lang)
	case "language":
		return r.startCommand.AskLanguage(chatID, lang)
	case "cancel":
		return r.send(chatID, r.l10n.Get(lang, "common.cancelled", nil))
	case "admin":
		if !r.adminChecker.IsAdmin(user.TelegramID) {
			return r.send(chatID, r.l10n.Get(lang, "common.access_denied", nil))
		}
		return r.adminCommand.Panel(chatID, lang)
	default:
		return r.startCommand.Help(chatID, lang)
	}
}

// handleGlobalCallback handles buttons that work regardless of the active flow.
// It reports false for buttons owned by the flow in progress.
func (r *Router) handleGlobalCallback(ctx context.Context, update *tgbotapi.Update, user *users.User, chatID int64) (bool, error) {
	cq := update.CallbackQuery
	data := cq.Data
	lang := user.Language

	switch {
	case strings.HasPrefix(data, cmds.LanguageCallbackPrefix):
		r.answerCallback(cq.ID)
		updated, err := r.userService.SetLanguage(ctx, user.ID, strings.TrimPrefix(data, cmds.LanguageCallbackPrefix))
		if err != nil {
			return true, err
		}
		if err := r.startCommand.LanguageChanged(chatID, updated.Language); err != nil {
			return true, err
		}
		return true, r.continueOnboarding(updated, chatID)

	case data == cmds.DisclaimerAcceptCallback:
		r.answerCallback(cq.ID)
		if err := r.userService.AcceptDisclaimer(ctx, user.ID); err != nil {
			return true, err
		}
		user.AcceptedDisclaimer = true
		return true, r.continueOnboarding(user, chatID)

	case data == cmds.DisclaimerDeclineCallback:
		r.answerCallback(cq.ID)
		return true, r.startCommand.DisclaimerDeclined(chatID, lang)

	case strings.HasPrefix(data, dispatch.CallbackPrefix):
		return true, r.dispatcher.HandleCallback(ctx, update)
	}

	if !r.onboarded(user) {
		return false, nil
	}

	switch {
	case data == placeorder.CatalogCallback:
		r.answerCallback(cq.ID)
		r.stateManager.Clear(user.TelegramID)
		return true, r.catalogCommand.Execute(ctx, chatID, user.ID, lang)

	case strings.HasPrefix(data, cmds.CategoryCallbackPrefix):
		r.answerCallback(cq.ID)
		return true, r.catalogCommand.HandleCallback(ctx, chatID, lang, data)

	case data == placeorder.StartCallback:
		r.answerCallback(cq.ID)
		return true, r.startOrder(ctx, user, chatID)

	case strings.HasPrefix(data, placeorder.ProductCallbackPrefix):
		r.answerCallback(cq.ID)
		id, err := strconv.ParseInt(strings.TrimPrefix(data, placeorder.ProductCallbackPrefix), 10, 64)
		if err != nil {
			return true, err
		}
		if err := r.actions.LogAction(ctx, user.ID, storage.ActionOrderStart); err != nil {
			r.logger.Error("Failed to log order start", "user_id", user.ID, "error", err)
		}
		return true, r.placeOrderHandler.StartWithProduct(ctx, chatID, r.customer(user), id)

	case strings.HasPrefix(data, "menu_"):
		r.answerCallback(cq.ID)
		r.stateManager.Clear(user.TelegramID)
		return true, r.handleMenu(ctx, user, chatID, data)

	case strings.HasPrefix(data, "adm_"):
		r.answerCallback(cq.ID)
		if !r.adminChecker.IsAdmin(user.TelegramID) {
			return true, r.send(chatID, r.l10n.Get(lang, "common.access_denied", nil))
		}
		r.stateManager.Clear(user.TelegramID)
		return true, r.handleAdmin(ctx, user, chatID, data)
	}

	return false, nil
}

func (r *Router) handleMenu(ctx context.Context, user *users.User, chatID int64, data string) error {
	lang := user.Language
	switch data {
	case cmds.MenuMyOrdersCallback:
		return r.myOrdersCommand.Execute(ctx, chatID, user.ID, lang)
	case cmds.MenuInfoCallback:
		return r.infoCommand.About(chatID, lang)
	case cmds.MenuLegalCallback:
		return r.infoCommand.Legal(chatID, lang)
	case cmds.MenuContactsCallback:
		return r.infoCommand.Contacts(chatID, lang)
	case cmds.MenuLanguageCallback:
		return r.startCommand.AskLanguage(chatID, lang)
	default:
		return r.startCommand.MainMenu(chatID, lang, r.adminChecker.IsAdmin(user.TelegramID))
	}
}

func (r *Router) handleAdmin(ctx context.Context, user *users.User, chatID int64, data string) error {
	lang := user.Language
	switch {
	case data == cmds.AdminPanelCallback:
		return r.adminCommand.Panel(chatID, lang)
	case data == cmds.AdminAddCallback:
		return r.createProductHandler.Start(chatID, user.TelegramID, lang)
	case data == cmds.AdminEditCallback:
		return r.editProductHandler.Start(ctx, chatID, user.TelegramID, lang)
	case data == cmds.AdminToggleListCallback:
		return r.adminCommand.ToggleList(ctx, chatID, lang)
	case data == cmds.AdminDeleteListCallback:
		return r.adminCommand.DeleteList(ctx, chatID, lang)
	case data == cmds.AdminStatsCallback:
		return r.statsCommand.Execute(ctx, chatID, lang)
	case data == cmds.AdminOrdersCallback:
		return r.adminCommand.Orders(ctx, chatID, lang)
	case strings.HasPrefix(data, cmds.AdminToggleCallbackPrefix):
		return r.adminCommand.Toggle(ctx, chatID, lang, data)
	case strings.HasPrefix(data, cmds.AdminDeleteCallbackPrefix):
		return r.adminCommand.Delete(ctx, chatID, lang, data)
	default:
		return r.adminCommand.Panel(chatID, lang)
	}
}

func (r *Router) startOrder(ctx context.Context, user *users.User, chatID int64) error {
	if err := r.actions.LogAction(ctx, user.ID, storage.ActionOrderStart); err != nil {
		r.logger.Error("Failed to log order start", "user_id", user.ID, "error", err)
	}
	return r.placeOrderHandler.Start(ctx, chatID, r.customer(user))
}

// onboarded reports whether the user picked a language and accepted the age disclaimer.
// Admins skip the disclaimer.
func (r *Router) onboarded(user *users.User) bool {
	if r.adminChecker.IsAdmin(user.TelegramID) {
		return true
	}
	return user.LanguageSelected && user.AcceptedDisclaimer
}

func (r *Router) continueOnboarding(user *users.User, chatID int64) error {
	switch {
	case !user.LanguageSelected && !r.adminChecker.IsAdmin(user.TelegramID):
		return r.startCommand.AskLanguage(chatID, user.Language)
	case !user.AcceptedDisclaimer && !r.adminChecker.IsAdmin(user.TelegramID):
		return r.startCommand.AskDisclaimer(chatID, user.Language)
	default:
		return r.startCommand.MainMenu(chatID, user.Language, r.adminChecker.IsAdmin(user.TelegramID))
	}
}

func (r *Router) customer(user *users.User) placeorder.Customer {
	return placeorder.Customer{
		UserID:     user.ID,
		TelegramID: user.TelegramID,
		Language:   user.Language,
		Name:       user.DisplayName(),
	}
}

func (r *Router) answerCallback(id string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		r.logger.Error("Failed to answer callback query", "error", err)
	}
}

func (r *Router) send(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *Router) sendError(chatID int64, lang string) error {
	if chatID == 0 {
		return nil
	}
	return r.send(chatID, r.l10n.Get(lang, "common.error", nil))
}

func profileOf(update *tgbotapi.Update) users.Profile {
	var from *tgbotapi.User
	if update.Message != nil {
		from = update.Message.From
	} else if update.CallbackQuery != nil {
		from = update.CallbackQuery.From
	}
	if from == nil {
		return users.Profile{}
	}
	return users.Profile{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}
}

func updateKind(update *tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message != nil && update.Message.IsCommand():
		return "command"
	default:
		return "message"
	}
}

func extractUserID(update *tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// NewRouter creates the router with its handlers
func NewRouter(
	bot botApi,
	stateManager stateManager,
	userService userService,
	adminChecker adminChecker,
	actions actionLogger,
	l10n localizer,
	logger *slog.Logger,
	placeOrderHandler *placeorder.Handler,
	createProductHandler *createproduct.Handler,
	editProductHandler *editproduct.Handler,
	dispatcher *dispatch.Dispatcher,
	startCommand *cmds.StartCommand,
	infoCommand *cmds.InfoCommand,
	catalogCommand *cmds.CatalogCommand,
	myOrdersCommand *cmds.MyOrdersCommand,
	adminCommand *cmds.AdminCommand,
	statsCommand *cmds.StatsCommand,
) *Router {
	return &Router{
		bot:                  bot,
		stateManager:         stateManager,
		userService:          userService,
		adminChecker:         adminChecker,
		actions:              actions,
		l10n:                 l10n,
		logger:               logger,
		placeOrderHandler:    placeOrderHandler,
		createProductHandler: createProductHandler,
		editProductHandler:   editProductHandler,
		dispatcher:           dispatcher,
		startCommand:         startCommand,
		infoCommand:          infoCommand,
		catalogCommand:       catalogCommand,
		myOrdersCommand:      myOrdersCommand,
		adminCommand:         adminCommand,
		statsCommand:         statsCommand,
	}
}

// SetupBotCommands sets the command menu. Admins get an extra /admin entry in their own chats.
func (r *Router) SetupBotCommands(adminIDs []int64) error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Main menu"},
		{Command: "catalog", Description: "Catalog"},
		{Command: "order", Description: "Order delivery"},
		{Command: "my_orders", Description: "My orders"},
		{Command: "language", Description: "Language"},
		{Command: "help", Description: "Help"},
	}

	if _, err := r.bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return err
	}

	adminCommands := append(commands, tgbotapi.BotCommand{Command: "admin", Description: "Admin panel"})
	for _, id := range adminIDs {
		scope := tgbotapi.NewBotCommandScopeChat(id)
		// a failure for one admin must not block startup
		if _, err := r.bot.Request(tgbotapi.NewSetMyCommandsWithScope(scope, adminCommands...)); err != nil {
			r.logger.Warn("Failed to set admin commands", "admin_id", id, "error", err)
		}
	}
	return nil
}
