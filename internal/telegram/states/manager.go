package states

import (
	"fmt"
	"sync"

	"spirit-bot/internal/telegram/flows"
)

// Manager keeps one conversation per user in memory.
// A flow creates its session with SetState on entry and destroys it with Clear
// on commit or cancel. There is no expiry.
type Manager struct {
	mu         sync.RWMutex
	userStates map[int64]State
	userData   map[int64]any
}

func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]State),
		userData:   make(map[int64]any),
	}
}

func (m *Manager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.userStates[userID]
	if !exists {
		return StateNone
	}
	return state
}

func (m *Manager) GetData(userID int64) any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.userData[userID]
}

// SetState moves the user to state. A nil data keeps the current session data.
func (m *Manager) SetState(userID int64, state State, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.userStates[userID] = state
	if data != nil {
		m.userData[userID] = data
	}
}

func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.userStates, userID)
	delete(m.userData, userID)
}

func (m *Manager) GetOrderDraft(userID int64) (*flows.OrderDraft, error) {
	return getData[*flows.OrderDraft](m, userID)
}

func (m *Manager) GetProductDraft(userID int64) (*flows.ProductDraft, error) {
	return getData[*flows.ProductDraft](m, userID)
}

func (m *Manager) GetEditProductData(userID int64) (*flows.EditProductData, error) {
	return getData[*flows.EditProductData](m, userID)
}

func getData[T any](m *Manager, userID int64) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero T
	data, exists := m.userData[userID]
	if !exists {
		return zero, fmt.Errorf("no data for user %d", userID)
	}

	flowData, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("invalid data type %T for user %d", data, userID)
	}

	return flowData, nil
}
