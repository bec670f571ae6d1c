package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShopDefault(t *testing.T) {
	shop, err := LoadShop("")
	require.NoError(t, err)

	zone, ok := shop.Zone("zone2")
	require.True(t, ok)
	assert.Equal(t, int64(100), zone.Price)
	assert.Equal(t, "Chalong, Rawai (near)", zone.Names.In("en"))

	slot, ok := shop.TimeSlot("today_afternoon")
	require.True(t, ok)
	assert.NotEmpty(t, slot.Labels.In("th"))

	_, ok = shop.Zone("zone42")
	assert.False(t, ok)
}

func TestLoadShopValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name:    "no zones",
			yaml:    "name: x\n",
			wantErr: true,
		},
		{
			name:    "negative price",
			yaml:    "zones:\n  - id: z\n    price: -1\n",
			wantErr: true,
		},
		{
			name:    "duplicate zone",
			yaml:    "zones:\n  - id: z\n  - id: z\n",
			wantErr: true,
		},
		{
			name:    "reserved slot id",
			yaml:    "zones:\n  - id: z\ntime_slots:\n  - id: other\n",
			wantErr: true,
		},
		{
			name: "valid",
			yaml: "zones:\n  - id: z\n    price: 10\ntime_slots:\n  - id: morning\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "shop.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := LoadShop(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLocalizedFallback(t *testing.T) {
	l := Localized{"en": "Hello", "ru": "Привет"}
	assert.Equal(t, "Привет", l.In("ru"))
	assert.Equal(t, "Hello", l.In("th"))
	assert.Equal(t, "", Localized{}.In("en"))
}
