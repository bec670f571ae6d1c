package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirit-bot/internal/telegram/flows"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	assert.Equal(t, StateNone, m.GetState(1))

	draft := &flows.OrderDraft{Language: "en"}
	m.SetState(1, PlaceOrderWaitItem, draft)

	got, err := m.GetOrderDraft(1)
	require.NoError(t, err)
	assert.Same(t, draft, got)

	// nil keeps the data
	m.SetState(1, PlaceOrderWaitZone, nil)
	got, err = m.GetOrderDraft(1)
	require.NoError(t, err)
	assert.Same(t, draft, got)
	assert.Equal(t, PlaceOrderWaitZone, m.GetState(1))

	// sessions are isolated per user
	assert.Equal(t, StateNone, m.GetState(2))
	_, err = m.GetOrderDraft(2)
	assert.Error(t, err)

	_, err = m.GetProductDraft(1)
	assert.Error(t, err)

	m.Clear(1)
	assert.Equal(t, StateNone, m.GetState(1))
	_, err = m.GetOrderDraft(1)
	assert.Error(t, err)
}
