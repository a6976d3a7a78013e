package due_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/clock"
	"github.com/comitanigiacomo/kanso-recurrence-engine/internal/core/due"
)

type storeTimestamp struct{ at time.Time }

func (s *storeTimestamp) ToDate() time.Time { return s.at }

func TestCoerceToInstant(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	instant := time.Date(2024, time.July, 31, 22, 30, 0, 0, time.UTC)
	var nilTime *time.Time
	var nilStamp *storeTimestamp

	tests := []struct {
		name    string
		in      any
		wantDay string
		wantOK  bool
	}{
		{"time.Time", instant, "2024-08-01", true},
		{"pointer to time", &instant, "2024-08-01", true},
		{"store timestamp", &storeTimestamp{at: instant}, "2024-08-01", true},
		{"seconds map", map[string]any{"seconds": instant.Unix(), "nanoseconds": 0}, "2024-08-01", true},
		{"underscored seconds map", map[string]any{"_seconds": float64(instant.Unix())}, "2024-08-01", true},
		{"json number seconds", map[string]any{"_seconds": json.Number("1722465000")}, "2024-08-01", true},
		{"RFC 3339", "2024-07-31T22:30:00Z", "2024-08-01", true},
		{"local date time", "2024-07-31T22:30:00", "2024-07-31", true},
		{"date only", "2024-08-01", "2024-08-01", true},
		{"padded date only", " 2024-08-01 ", "2024-08-01", true},
		{"nil", nil, "", false},
		{"nil time pointer", nilTime, "", false},
		{"nil store timestamp", nilStamp, "", false},
		{"zero time", time.Time{}, "", false},
		{"empty string", "", "", false},
		{"garbage", "next tuesday", "", false},
		{"map without seconds", map[string]any{"date": "2024-08-01"}, "", false},
		{"unsupported type", 42, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := due.CoerceToInstant(tt.in, paris)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, paris, got.Location())
			assert.Equal(t, tt.wantDay, clock.DayKey(got))
		})
	}
}

func TestCoerceToInstant_DefaultsToUTC(t *testing.T) {
	got, ok := due.CoerceToInstant("2024-08-01", nil)
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC), got)
}
