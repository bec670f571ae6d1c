package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"spirit-bot/internal/config"
	"spirit-bot/internal/metrics"
	"spirit-bot/internal/stories/orders"
)

// CallbackPrefix marks operator actions: op_<status>_<order id>.
const CallbackPrefix = "op_"

var actionKeys = map[orders.Status]string{
	orders.StatusConfirmed: "operator.confirm",
	orders.StatusCancelled: "operator.cancel",
	orders.StatusPreparing: "operator.to_preparing",
	orders.StatusDelivery:  "operator.to_delivery",
	orders.StatusCompleted: "operator.to_completed",
}

// Dispatcher delivers orders to the operator chat and applies the operator's
// status actions.
type Dispatcher struct {
	bot          botApi
	orderService orderService
	userService  userService
	admins       adminChecker
	l10n         localizer
	shop         *config.ShopConfig
	operatorID   int64
	lang         string
	logger       *slog.Logger
}

func NewDispatcher(
	bot botApi,
	os orderService,
	us userService,
	admins adminChecker,
	l10n localizer,
	shop *config.ShopConfig,
	operatorID int64,
	operatorLang string,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		bot:          bot,
		orderService: os,
		userService:  us,
		admins:       admins,
		l10n:         l10n,
		shop:         shop,
		operatorID:   operatorID,
		lang:         operatorLang,
		logger:       logger,
	}
}

// NotifyNewOrder sends the order card to the operator. A failed send is
// counted and returned, it is never retried.
func (d *Dispatcher) NotifyNewOrder(ctx context.Context, order *orders.Order) error {
	if err := d.SendOrderCard(d.operatorID, order); err != nil {
		metrics.OperatorNotificationsFailedTotal.Inc()
		return errors.Wrapf(err, "notify operator about order %d", order.ID)
	}

	if order.Latitude != nil && order.Longitude != nil {
		if _, err := d.bot.Send(tgbotapi.NewLocation(d.operatorID, *order.Latitude, *order.Longitude)); err != nil {
			d.logger.Error("Failed to send order location", "order_id", order.ID, "error", err)
		}
	}

	d.logger.Info("Operator notified", slog.Int64("order_id", order.ID), slog.String("source", string(order.Source)))
	return nil
}

// SendOrderCard sends the order with its status and the next actions to chatID.
func (d *Dispatcher) SendOrderCard(chatID int64, order *orders.Order) error {
	msg := tgbotapi.NewMessage(chatID, d.render(order))
	if keyboard := d.keyboard(order); keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	_, err := d.bot.Send(msg)
	return err
}

// HandleCallback applies an op_<status>_<id> action pressed by an admin.
func (d *Dispatcher) HandleCallback(ctx context.Context, update *tgbotapi.Update) error {
	cq := update.CallbackQuery
	if cq == nil {
		return nil
	}

	if cq.From == nil || !d.admins.IsAdmin(cq.From.ID) {
		return d.alert(cq.ID, d.l10n.Get(d.lang, "common.access_denied", nil))
	}

	to, id, ok := parseCallback(cq.Data)
	if !ok {
		return d.alert(cq.ID, d.l10n.Get(d.lang, "common.error", nil))
	}

	order, err := d.orderService.Transition(ctx, id, to)
	switch {
	case errors.Is(err, orders.ErrNotFound):
		return d.alert(cq.ID, d.l10n.Get(d.lang, "operator.order_not_found", nil))
	case errors.Is(err, orders.ErrInvalidTransition):
		d.logger.Warn("Order transition rejected",
			slog.Int64("order_id", id),
			slog.String("from", string(order.Status)),
			slog.String("to", string(to)))
		return d.alert(cq.ID, d.l10n.Get(d.lang, "operator.transition_rejected", map[string]interface{}{
			"from": d.statusLabel(d.lang, order.Status),
		}))
	case err != nil:
		_ = d.alert(cq.ID, d.l10n.Get(d.lang, "common.error", nil))
		return errors.Wrapf(err, "transition order %d to %s", id, to)
	}

	d.logger.Info("Order status changed",
		slog.Int64("order_id", order.ID),
		slog.String("status", string(order.Status)),
		slog.Int64("admin_id", cq.From.ID))

	if _, err := d.bot.Request(tgbotapi.NewCallback(cq.ID, d.l10n.Get(d.lang, "operator.status_changed", map[string]interface{}{
		"status": d.statusLabel(d.lang, order.Status),
	}))); err != nil {
		d.logger.Error("Failed to answer callback query", "error", err)
	}

	if cq.Message != nil {
		d.refreshCard(cq.Message.Chat.ID, cq.Message.MessageID, order)
	}

	d.notifyCustomer(ctx, order)
	return nil
}

func (d *Dispatcher) refreshCard(chatID int64, messageID int, order *orders.Order) {
	var edit tgbotapi.EditMessageTextConfig
	if keyboard := d.keyboard(order); keyboard != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, d.render(order), *keyboard)
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, d.render(order))
	}

	if _, err := d.bot.Request(edit); err != nil {
		d.logger.Error("Failed to edit operator message", "order_id", order.ID, "error", err)
	}
}

// notifyCustomer tells a chat customer about the new status in their language.
func (d *Dispatcher) notifyCustomer(ctx context.Context, order *orders.Order) {
	if order.Source != orders.SourceTelegram || order.UserID == nil {
		return
	}

	user, err := d.userService.GetByID(ctx, *order.UserID)
	if err != nil {
		d.logger.Error("Failed to load order customer", "order_id", order.ID, "error", err)
		return
	}

	text := d.l10n.Get(user.Language, "status.update", map[string]interface{}{
		"order_id": order.ID,
		"status":   d.statusLabel(user.Language, order.Status),
	})
	if _, err := d.bot.Send(tgbotapi.NewMessage(user.TelegramID, text)); err != nil {
		d.logger.Error("Failed to notify customer", "order_id", order.ID, "error", err)
	}
}

func (d *Dispatcher) render(order *orders.Order) string {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.Name
		if item.Quantity > 1 {
			name = fmt.Sprintf("%s ×%d", item.Name, item.Quantity)
		}
		lines = append(lines, d.l10n.Get(d.lang, "order.item_line", map[string]interface{}{
			"name":  name,
			"price": item.Cost(),
		}))
	}

	text := d.l10n.Get(d.lang, "operator.new_order", map[string]interface{}{
		"order_id":      order.ID,
		"source":        string(order.Source),
		"customer":      orDash(order.CustomerName),
		"phone":         order.Phone,
		"items":         strings.Join(lines, "\n"),
		"address":       order.Address,
		"time":          order.DeliveryTime,
		"comment":       orDash(order.Comment),
		"items_cost":    order.ItemsCost,
		"zone":          d.zoneName(order.ZoneID),
		"delivery_cost": order.DeliveryCost,
		"total":         order.Total,
	})

	return text + d.l10n.Get(d.lang, "operator.status_line", map[string]interface{}{
		"status": d.statusLabel(d.lang, order.Status),
	})
}

func (d *Dispatcher) keyboard(order *orders.Order) *tgbotapi.InlineKeyboardMarkup {
	next := order.Status.Next()
	if len(next) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(next))
	for _, status := range next {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				d.l10n.Get(d.lang, actionKeys[status], nil),
				fmt.Sprintf("%s%s_%d", CallbackPrefix, status, order.ID),
			),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &keyboard
}

func (d *Dispatcher) zoneName(id string) string {
	if zone, ok := d.shop.Zone(id); ok {
		return zone.Names.In(d.lang)
	}
	return orDash(id)
}

func (d *Dispatcher) statusLabel(lang string, status orders.Status) string {
	return d.l10n.Get(lang, "status."+string(status), nil)
}

func (d *Dispatcher) alert(callbackID, text string) error {
	callback := tgbotapi.NewCallbackWithAlert(callbackID, text)
	_, err := d.bot.Request(callback)
	return err
}

// parseCallback splits op_<status>_<id>.
func parseCallback(data string) (orders.Status, int64, bool) {
	rest, ok := strings.CutPrefix(data, CallbackPrefix)
	if !ok {
		return "", 0, false
	}

	i := strings.LastIndex(rest, "_")
	if i <= 0 {
		return "", 0, false
	}

	status, ok := orders.ParseStatus(rest[:i])
	if !ok {
		return "", 0, false
	}

	id, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return status, id, true
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
