package xmlutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime_UTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2024, 5, 1, 11, 0, 0, 0, loc)
	assert.Equal(t, "2024-05-01T10:00:00Z", FormatTime(ts))
}

func TestParseTime_RoundTrip(t *testing.T) {
	ts, err := ParseTime("2024-05-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:00:00Z", FormatTime(ts))
}

func TestParseTime_EmptyIsZero(t *testing.T) {
	ts, err := ParseTime("")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestParseTime_Invalid(t *testing.T) {
	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}
