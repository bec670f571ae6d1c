package digest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Worker sends the operator a summary of today's orders on a cron schedule.
type Worker struct {
	orders     OrderSummary
	bot        TelegramBot
	l10n       Localizer
	schedule   string
	operatorID int64
	lang       string
	logger     *slog.Logger
	cron       *cron.Cron
}

func NewWorker(
	orders OrderSummary,
	bot TelegramBot,
	l10n Localizer,
	schedule string,
	operatorID int64,
	lang string,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		orders:     orders,
		bot:        bot,
		l10n:       l10n,
		schedule:   schedule,
		operatorID: operatorID,
		lang:       lang,
		logger:     logger,
		cron:       cron.New(),
	}
}

func (w *Worker) Name() string {
	return "digest"
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		if err := w.run(context.Background()); err != nil {
			w.logger.Error("Digest worker failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule digest worker: %w", err)
	}

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
}

func (w *Worker) run(ctx context.Context) error {
	summary, err := w.orders.Today(ctx)
	if err != nil {
		return fmt.Errorf("summarize today: %w", err)
	}

	text := w.l10n.Get(w.lang, "operator.digest", map[string]interface{}{
		"orders":  summary.Orders,
		"revenue": summary.Revenue,
		"pending": summary.Pending,
	})
	if err := w.bot.SendMessage(w.operatorID, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	w.logger.Info("Digest sent", "orders", summary.Orders, "revenue", summary.Revenue)
	return nil
}
