package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateField(t *testing.T) {
	raw := "2026-01-05"
	d, err := parseDateField(&raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), d)

	bad := "05/01/26"
	_, err = parseDateField(&bad)
	assert.Error(t, err)
}

// The implicit today must be in the same location as parsed dates, so every
// stored date carries the same offset.
func TestParseDateFieldDefaultsToUTC(t *testing.T) {
	d, err := parseDateField(nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())

	empty := ""
	d, err = parseDateField(&empty)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
}
