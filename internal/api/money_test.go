package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    amount
		wantErr bool
	}{
		{in: `600`, want: 600},
		{in: `"600"`, want: 600},
		{in: `"฿600"`, want: 600},
		{in: `" ฿1,250 "`, want: 1250},
		{in: `"-50"`, want: -50},
		{in: `null`, want: 0},
		{in: `"six hundred"`, wantErr: true},
		{in: `""`, wantErr: true},
		{in: `12.5`, wantErr: true},
		{in: `"99999999999999999999"`, wantErr: true},
		{in: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got amount
			err := got.UnmarshalJSON([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
