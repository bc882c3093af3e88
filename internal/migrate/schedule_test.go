package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinutesUntilDue(t *testing.T) {
	const createdAt = int64(1_700_000_000_000)
	day := int64(86_400_000)

	tests := []struct {
		name   string
		expiry int64
		nowMs  int64
		want   int64
	}{
		{"ten days left", 15, createdAt + 5*day, 14400},
		{"due exactly now", 15, createdAt + 15*day, 0},
		{"partial minute rounds down", 1, createdAt + day - 90_000, 1},
		{"already elapsed is negative", 1, createdAt + 2*day, -1440},
		{"negative partial minute floors", 1, createdAt + day + 30_000, -1},
		{"zero expiry", 0, createdAt - 60_000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.UnixMilli(tt.nowMs)
			assert.Equal(t, tt.want, MinutesUntilDue(createdAt, tt.expiry, now))
		})
	}
}

func TestParseExpiryDays(t *testing.T) {
	valid := map[string]int64{
		"15":     15,
		" 30 ":   30,
		"7 days": 7,
		"+3":     3,
		"-2":     -2,
		"0010":   10,
	}
	for in, want := range valid {
		got, err := ParseExpiryDays(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "days 15", "-", " "} {
		_, err := ParseExpiryDays(in)
		assert.Error(t, err, "%q should be rejected", in)
	}
}
