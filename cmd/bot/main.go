package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	environment "spirit-bot/internal/env"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := environment.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to setup environment: %v", err)
	}

	logger := env.Logger
	logger.Info("Starting spirit-bot")

	listen(logger, "observability", env.Servers.HTTP.Observability)
	listen(logger, "api", env.Servers.HTTP.API)

	var wg sync.WaitGroup
	if err := startTelegramBot(ctx, env, &wg); err != nil {
		logger.Error("Failed to start telegram bot", slog.Any("error", err))
		os.Exit(1)
	}

	if err := env.Services.Workers.Start(); err != nil {
		logger.Error("Failed to start workers", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Bot started successfully. Press Ctrl+C to stop.")
	<-ctx.Done()

	logger.Info("Shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), env.Config.ShutdownDuration)
	defer cancel()

	env.Services.Workers.Stop()
	env.Clients.TelegramBot.Stop()
	wg.Wait()

	for name, server := range map[string]*http.Server{
		"api":           env.Servers.HTTP.API,
		"observability": env.Servers.HTTP.Observability,
	} {
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server shutdown error", slog.String("server", name), slog.Any("error", err))
		}
	}

	for _, closer := range env.Closers {
		closer()
	}

	logger.Info("Application stopped")
}

func listen(logger *slog.Logger, name string, server *http.Server) {
	go func() {
		logger.Info("Starting server", slog.String("server", name), slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", slog.String("server", name), slog.Any("error", err))
		}
	}()
}

func startTelegramBot(ctx context.Context, env *environment.Env, wg *sync.WaitGroup) error {
	logger := env.Logger

	if err := env.Clients.TelegramBot.Start(ctx); err != nil {
		return fmt.Errorf("start telegram client: %w", err)
	}

	if err := env.Services.TelegramRouter.SetupBotCommands(env.Services.AdminChecker.IDs()); err != nil {
		// not critical, the bot works without the command menu
		logger.Error("Failed to setup bot commands", slog.Any("error", err))
	}

	updates := env.Clients.TelegramBot.GetUpdates()
	logger.Info("Listening for updates")

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				logUpdate(logger, &update)
				if err := env.Services.TelegramRouter.Route(ctx, &update); err != nil {
					logger.Error("Failed to handle update", slog.Int("update_id", update.UpdateID), slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}

func logUpdate(logger *slog.Logger, update *tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		logger.Info("Message received",
			slog.Int64("chat_id", update.Message.Chat.ID),
			slog.Int64("user_id", update.Message.From.ID),
			slog.String("text", update.Message.Text))
	case update.CallbackQuery != nil:
		logger.Info("Callback received",
			slog.Int64("user_id", update.CallbackQuery.From.ID),
			slog.String("data", update.CallbackQuery.Data))
	}
}
