package placeorder

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spirit-bot/internal/stories/orders"
)

// MockBotApi records everything the flow sends.
type MockBotApi struct {
	SentMessages []tgbotapi.Chattable
	Requests     []tgbotapi.Chattable
}

func (m *MockBotApi) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.SentMessages = append(m.SentMessages, c)
	return tgbotapi.Message{MessageID: len(m.SentMessages)}, nil
}

func (m *MockBotApi) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.Requests = append(m.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *MockBotApi) LastText() string {
	for i := len(m.SentMessages) - 1; i >= 0; i-- {
		if msg, ok := m.SentMessages[i].(tgbotapi.MessageConfig); ok {
			return msg.Text
		}
	}
	return ""
}

type MockNotifier struct {
	mu     sync.Mutex
	Orders []*orders.Order
}

func (m *MockNotifier) NotifyNewOrder(_ context.Context, order *orders.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, order)
	return nil
}
