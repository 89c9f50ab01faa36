package bwav

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBextPayload(t *testing.T, payload []byte) *MetadataMap {
	t.Helper()

	buf := make([]byte, max(len(payload), bextMinScratch))
	copy(buf, payload)

	m := &MetadataMap{}
	decodeBroadcastChunk(buf, m)

	return m
}

func TestBroadcastChunkRoundTrip(t *testing.T) {
	in := NewBroadcastMetadata(
		"field recording, morning",
		"portable rig",
		"REF-0042",
		time.Date(2020, 3, 2, 8, 15, 0, 0, time.UTC),
		1234567890123,
		"A=PCM,F=48000,W=24,M=stereo")

	payload := encodeBroadcastChunk(in)
	require.NotEmpty(t, payload)

	out := decodeBextPayload(t, payload)

	for _, key := range in.Keys() {
		assert.Equal(t, in.Get(key), out.Get(key), "key %q", key)
	}
}

func TestEncodeBroadcastChunkEmptySentinel(t *testing.T) {
	assert.Nil(t, encodeBroadcastChunk(nil))
	assert.Nil(t, encodeBroadcastChunk(&MetadataMap{}))

	// all-empty broadcast fields serialize to zero bytes, not a blank chunk
	m := &MetadataMap{}
	m.Set(BWAVDescription, "")
	m.Set(BWAVTimeReference, "0")

	assert.Nil(t, encodeBroadcastChunk(m))
}

func TestEncodeBroadcastChunkAlignment(t *testing.T) {
	tests := []struct {
		name    string
		history string
	}{
		{"no history", ""},
		{"one byte", "x"},
		{"two bytes", "xy"},
		{"three bytes", "xyz"},
		{"four bytes", "wxyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MetadataMap{}
			m.Set(BWAVDescription, "d")
			m.Set(BWAVCodingHistory, tt.history)

			payload := encodeBroadcastChunk(m)
			require.NotEmpty(t, payload)

			assert.Zero(t, len(payload)%4, "payload length %d not 4-byte aligned", len(payload))

			// a NUL terminator is always reserved after the history
			require.Greater(t, len(payload), bextCodingHistoryOff+len(tt.history))
			assert.Zero(t, payload[bextCodingHistoryOff+len(tt.history)])
		})
	}
}

func TestEncodeBroadcastChunkTruncatesLongFields(t *testing.T) {
	m := &MetadataMap{}
	m.Set(BWAVDescription, strings.Repeat("d", bextDescriptionLen+50))
	m.Set(BWAVOriginator, strings.Repeat("o", bextOriginatorLen+10))

	payload := encodeBroadcastChunk(m)
	require.NotEmpty(t, payload)

	out := decodeBextPayload(t, payload)

	assert.Equal(t, strings.Repeat("d", bextDescriptionLen), out.Get(BWAVDescription))
	assert.Equal(t, strings.Repeat("o", bextOriginatorLen), out.Get(BWAVOriginator))
}

func TestDecodeBroadcastChunkTruncatedChunk(t *testing.T) {
	// only a partial description survives; the rest of the fixed prefix is
	// zero-filled by the scratch buffer
	out := decodeBextPayload(t, []byte("short bext"))

	assert.Equal(t, "short bext", out.Get(BWAVDescription))
	assert.Equal(t, "", out.Get(BWAVOriginator))
	assert.Equal(t, "0", out.Get(BWAVTimeReference))
	assert.Equal(t, "", out.Get(BWAVCodingHistory))
}

func TestBroadcastChunkTimeReference(t *testing.T) {
	tests := []struct {
		name string
		ref  string
	}{
		{"zero", "0"},
		{"small", "44100"},
		{"beyond 32 bits", "8589934592"},
		{"large", "123456789012345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MetadataMap{}
			m.Set(BWAVDescription, "t")
			m.Set(BWAVTimeReference, tt.ref)

			out := decodeBextPayload(t, encodeBroadcastChunk(m))

			assert.Equal(t, tt.ref, out.Get(BWAVTimeReference))
		})
	}
}
