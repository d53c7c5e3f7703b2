// Package domain holds the shared value types and domain errors for the
// probing and attack subsystems.
package domain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"
)

// macBits is the width of a MAC address in bits.
const macBits = 48

// historyEntry records the bit flipped (or NoFlip for an explicit Set) and
// the value a MacIdentity held immediately before the mutation that produced
// the key it is stored under.
type historyEntry struct {
	bit      int
	previous uint64
	hasPrev  bool
}

// NoFlip marks a history entry created by Set rather than Flip.
const NoFlip = -1

// MacIdentity represents a 48-bit source MAC used to trigger fresh
// flow-table installs. It tracks every value it has ever held so that a
// caller can guarantee freshness across a long probing run.
//
// The zero value is not usable; construct with NewMacIdentity or
// MacIdentityFromBits.
type MacIdentity struct {
	value   uint64
	order   []uint64
	history map[uint64]historyEntry
}

// NewMacIdentity parses a colon-separated MAC string ("aa:bb:cc:dd:ee:ff")
// into a MacIdentity.
func NewMacIdentity(s string) (*MacIdentity, error) {
	if len(s) != 17 {
		return nil, &ValidationError{Field: "mac", Value: s, Err: ErrInvalidLength}
	}
	var raw [6]byte
	n, err := fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x",
		&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5])
	if err != nil || n != 6 {
		return nil, &ValidationError{Field: "mac", Value: s, Err: fmt.Errorf("%w: %v", ErrInvalidLength, err)}
	}
	value := macBitsFromBytes(raw)
	return newMacIdentity(value), nil
}

// MacIdentityFromBits constructs a MacIdentity from a 48-bit integer value
// (the high 16 bits of the uint64 are ignored).
func MacIdentityFromBits(value uint64) *MacIdentity {
	return newMacIdentity(value & (1<<macBits - 1))
}

// RandomMacIdentity draws a fresh random 48-bit identity.
func RandomMacIdentity() *MacIdentity {
	return MacIdentityFromBits(randomMacBits())
}

func newMacIdentity(value uint64) *MacIdentity {
	m := &MacIdentity{
		value:   value,
		history: make(map[uint64]historyEntry, 8),
	}
	m.history[value] = historyEntry{bit: NoFlip}
	m.order = append(m.order, value)
	return m
}

func macBitsFromBytes(raw [6]byte) uint64 {
	var buf [8]byte
	copy(buf[2:], raw[:])
	return binary.BigEndian.Uint64(buf[:])
}

func randomMacBits() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[2:]); err != nil {
		// crypto/rand failure is effectively unrecoverable; fall back to
		// math/rand rather than propagating an error through every caller.
		return mrand.Uint64() & (1<<macBits - 1)
	}
	return binary.BigEndian.Uint64(buf[:])
}

// Value returns the current 48-bit value.
func (m *MacIdentity) Value() uint64 { return m.value }

// String renders the identity as a lowercase, colon-separated, zero-padded
// 17-character MAC string.
func (m *MacIdentity) String() string {
	return formatMAC(m.value)
}

func formatMAC(value uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	b := buf[2:]
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// Set unconditionally replaces the identity's value, recording (NoFlip,
// previous) in the history.
func (m *MacIdentity) Set(value uint64) string {
	value &= 1<<macBits - 1
	prev := m.value
	m.history[value] = historyEntry{bit: NoFlip, previous: prev, hasPrev: true}
	m.order = append(m.order, value)
	m.value = value
	return m.String()
}

// maxFlipAttempts bounds retry-on-collision loops in Flip, per spec.md §9
// point 4: an unbounded retry loop against a saturated cache would hang
// forever.
const maxFlipAttempts = macBits

// Flip toggles the given bit of the current value. If the resulting value
// has already been seen and retry is true, it flips a randomly drawn bit of
// the current value instead, up to maxFlipAttempts times, until an unseen
// value appears; if every draw collides it returns ErrMeasurementDegenerate
// (unseen neighbours may remain undrawn). If retry is false, a collision
// leaves the value unchanged, records no new entry, and returns the current
// value.
func (m *MacIdentity) Flip(bit int, retry bool) (string, error) {
	if bit < 0 || bit >= macBits {
		return "", &ValidationError{Field: "bit", Value: fmt.Sprintf("%d", bit), Err: ErrBitOutOfRange}
	}

	flipped := m.value ^ (1 << uint(bit))
	if _, seen := m.history[flipped]; !seen {
		m.record(flipped, bit, m.value)
		return m.String(), nil
	}
	if !retry {
		return m.String(), nil
	}

	for attempt := 0; attempt < maxFlipAttempts; attempt++ {
		candidateBit := mrand.Intn(macBits)
		candidate := m.value ^ (1 << uint(candidateBit))
		if _, seen := m.history[candidate]; !seen {
			m.record(candidate, candidateBit, m.value)
			return m.String(), nil
		}
	}
	return "", &MeasurementError{Op: "mac_flip", Err: ErrMeasurementDegenerate}
}

func (m *MacIdentity) record(value uint64, bit int, previous uint64) {
	m.history[value] = historyEntry{bit: bit, previous: previous, hasPrev: true}
	m.order = append(m.order, value)
	m.value = value
}

// History returns the ordered sequence of values this identity has held,
// oldest first, for diagnostics.
func (m *MacIdentity) History() []uint64 {
	out := make([]uint64, len(m.order))
	copy(out, m.order)
	return out
}
