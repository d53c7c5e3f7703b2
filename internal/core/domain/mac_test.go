package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacIdentity_RoundTrip(t *testing.T) {
	cases := []string{
		"aa:bb:cc:dd:ee:ff",
		"00:00:00:00:00:00",
		"ff:ff:ff:ff:ff:ff",
		"01:23:45:67:89:ab",
	}
	for _, s := range cases {
		m, err := NewMacIdentity(s)
		require.NoError(t, err)
		assert.Equal(t, s, m.String())
	}
}

func TestMacIdentity_InvalidLength(t *testing.T) {
	_, err := NewMacIdentity("aa:bb:cc")
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestMacIdentity_FlipFreshness(t *testing.T) {
	m := MacIdentityFromBits(0)
	seen := map[string]bool{m.String(): true}

	for bit := 0; bit < 47; bit++ {
		s, err := m.Flip(bit, true)
		require.NoError(t, err)
		assert.False(t, seen[s], "value %s repeated after flipping bit %d", s, bit)
		seen[s] = true
	}
}

func TestMacIdentity_FlipBitOutOfRange(t *testing.T) {
	m := RandomMacIdentity()
	_, err := m.Flip(48, true)
	assert.ErrorIs(t, err, ErrBitOutOfRange)
	_, err = m.Flip(-1, true)
	assert.ErrorIs(t, err, ErrBitOutOfRange)
}

func TestMacIdentity_FlipNoRetryKeepsValueOnCollision(t *testing.T) {
	m := MacIdentityFromBits(0)
	// Flip bit 0 then flip it back: without retry, flipping back would
	// collide with the already-seen 0, so the current value (1) is kept and
	// returned rather than mutated further.
	_, err := m.Flip(0, true)
	require.NoError(t, err)
	before := m.Value()
	got, err := m.Flip(0, false)
	require.NoError(t, err)
	assert.Equal(t, before, m.Value())
	assert.Equal(t, formatMAC(before), got)
}

func TestMacIdentity_FlipExhaustion(t *testing.T) {
	m := MacIdentityFromBits(0)
	// Pre-seed history with every single-bit-flip neighbor of 0, so any
	// candidate Flip's retry loop draws is already seen and the bounded
	// retry (maxFlipAttempts) must exhaust and return the degenerate error.
	for bit := 0; bit < macBits; bit++ {
		m.history[uint64(1)<<uint(bit)] = historyEntry{bit: bit, previous: 0, hasPrev: true}
	}
	_, err := m.Flip(0, true)
	assert.ErrorIs(t, err, ErrMeasurementDegenerate)
	var measErr *MeasurementError
	require.ErrorAs(t, err, &measErr)
	assert.Equal(t, "mac_flip", measErr.Op)
}

func TestMacIdentity_Set(t *testing.T) {
	m := MacIdentityFromBits(0x010203040506)
	m.Set(0xAABBCCDDEEFF)
	assert.Equal(t, uint64(0xAABBCCDDEEFF), m.Value())
	hist := m.History()
	require.Len(t, hist, 2)
	assert.Equal(t, uint64(0xAABBCCDDEEFF), hist[1])
}

func TestMacIdentity_HistoryAlwaysContainsCurrentValue(t *testing.T) {
	m := RandomMacIdentity()
	for i := 0; i < 10; i++ {
		_, err := m.Flip(i%48, true)
		require.NoError(t, err)
		hist := m.History()
		assert.Contains(t, hist, m.Value())
	}
}
