package bwav

import (
	"strconv"
	"time"
)

// Well-known broadcast-wave metadata keys (case-sensitive).
const (
	BWAVDescription     = "bwav description"
	BWAVOriginator      = "bwav originator"
	BWAVOriginatorRef   = "bwav originator ref"
	BWAVOriginationDate = "bwav origination date"
	BWAVOriginationTime = "bwav origination time"
	BWAVTimeReference   = "bwav time reference"
	BWAVCodingHistory   = "bwav coding history"
)

// MetadataMap is an ordered, string-keyed, string-valued metadata mapping.
// Keys are unique and insertion order is preserved, so decoding a file and
// re-encoding its metadata is round-trip stable.
//
// The zero value is ready to use.
type MetadataMap struct {
	keys   []string
	values map[string]string
}

// Set stores value under key, keeping the key's original position if it was
// already present.
func (m *MetadataMap) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}

	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

// Get returns the value stored under key, or "" when absent.
func (m *MetadataMap) Get(key string) string {
	if m == nil {
		return ""
	}

	return m.values[key]
}

// Has reports whether key is present.
func (m *MetadataMap) Has(key string) bool {
	if m == nil {
		return false
	}

	_, ok := m.values[key]

	return ok
}

// Len returns the number of stored keys.
func (m *MetadataMap) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Keys returns the stored keys in insertion order.
func (m *MetadataMap) Keys() []string {
	if m == nil {
		return nil
	}

	return append([]string(nil), m.keys...)
}

// NewBroadcastMetadata builds a MetadataMap carrying the standard
// broadcast-wave fields. The date is serialized as origination date and
// time, the time reference is a sample count since midnight.
func NewBroadcastMetadata(description, originator, originatorRef string,
	date time.Time, timeReferenceSamples int64, codingHistory string) *MetadataMap {
	m := &MetadataMap{}

	m.Set(BWAVDescription, description)
	m.Set(BWAVOriginator, originator)
	m.Set(BWAVOriginatorRef, originatorRef)
	m.Set(BWAVOriginationDate, date.Format("2006-01-02"))
	m.Set(BWAVOriginationTime, date.Format("15:04:05"))
	m.Set(BWAVTimeReference, strconv.FormatInt(timeReferenceSamples, 10))
	m.Set(BWAVCodingHistory, codingHistory)

	return m
}
