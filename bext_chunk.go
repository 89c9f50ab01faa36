package bwav

import (
	"encoding/binary"
	"strconv"
)

// bext fixed-prefix layout, explicit byte offsets. The coding history is a
// variable-length NUL-terminated string that follows the prefix.
const (
	bextDescriptionLen         = 256
	bextOriginatorLen          = 32
	bextOriginatorReferenceLen = 32
	bextOriginationDateLen     = 10
	bextOriginationTimeLen     = 8
	bextUMIDLen                = 64
	bextReservedLen            = 190

	bextDescriptionOff   = 0
	bextOriginatorOff    = bextDescriptionOff + bextDescriptionLen
	bextOriginatorRefOff = bextOriginatorOff + bextOriginatorLen
	bextDateOff          = bextOriginatorRefOff + bextOriginatorReferenceLen
	bextTimeOff          = bextDateOff + bextOriginationDateLen
	bextTimeRefLowOff    = bextTimeOff + bextOriginationTimeLen
	bextTimeRefHighOff   = bextTimeRefLowOff + 4
	bextVersionOff       = bextTimeRefHighOff + 4
	bextUMIDOff          = bextVersionOff + 2
	bextReservedOff      = bextUMIDOff + bextUMIDLen
	bextCodingHistoryOff = bextReservedOff + bextReservedLen // 602

	// minimum scratch size so a short chunk still decodes against a
	// zero-filled fixed prefix
	bextMinScratch = bextCodingHistoryOff + 1
)

// decodeBroadcastChunk decodes a bext payload into the metadata map. buf
// must be zero-padded to at least bextMinScratch bytes so truncated chunks
// read as empty fields rather than out of range.
func decodeBroadcastChunk(buf []byte, m *MetadataMap) {
	offset := 0

	take := func(n int) []byte {
		out := buf[offset : offset+n]
		offset += n

		return out
	}

	readFixedString := func(n int) string {
		return nullTermStr(take(n))
	}

	m.Set(BWAVDescription, readFixedString(bextDescriptionLen))
	m.Set(BWAVOriginator, readFixedString(bextOriginatorLen))
	m.Set(BWAVOriginatorRef, readFixedString(bextOriginatorReferenceLen))
	m.Set(BWAVOriginationDate, readFixedString(bextOriginationDateLen))
	m.Set(BWAVOriginationTime, readFixedString(bextOriginationTimeLen))

	timeRefLow := binary.LittleEndian.Uint32(take(4))
	timeRefHigh := binary.LittleEndian.Uint32(take(4))
	timeRef := int64(timeRefHigh)<<32 + int64(timeRefLow)
	m.Set(BWAVTimeReference, strconv.FormatInt(timeRef, 10))

	// version, UMID and the reserved block are not surfaced
	take(2)
	take(bextUMIDLen)
	take(bextReservedLen)

	m.Set(BWAVCodingHistory, nullTermStr(buf[offset:]))
}

// encodeBroadcastChunk serializes the broadcast fields of m into a bext
// payload: the 602-byte fixed prefix plus the NUL-terminated coding
// history, zero-padded up to a 4-byte boundary. The terminator is always
// reserved so a payload patched over a larger existing chunk still ends
// the history where the new text ends. A map whose broadcast fields are
// all empty encodes to nil, the "no metadata" sentinel, rather than a
// blank full-size chunk.
func encodeBroadcastChunk(m *MetadataMap) []byte {
	if m == nil {
		return nil
	}

	description := m.Get(BWAVDescription)
	originator := m.Get(BWAVOriginator)
	date := m.Get(BWAVOriginationDate)
	timeOfDay := m.Get(BWAVOriginationTime)
	history := m.Get(BWAVCodingHistory)
	timeRef, _ := strconv.ParseInt(m.Get(BWAVTimeReference), 10, 64)

	if description == "" && originator == "" && date == "" &&
		timeOfDay == "" && history == "" && timeRef == 0 {
		return nil
	}

	size := bextCodingHistoryOff + len(history) + 1
	buf := make([]byte, (size+3)&^3)

	writeFixedString := func(off int, s string, n int) {
		copy(buf[off:off+n], s)
	}

	writeFixedString(bextDescriptionOff, description, bextDescriptionLen)
	writeFixedString(bextOriginatorOff, originator, bextOriginatorLen)
	writeFixedString(bextOriginatorRefOff, m.Get(BWAVOriginatorRef), bextOriginatorReferenceLen)
	writeFixedString(bextDateOff, date, bextOriginationDateLen)
	writeFixedString(bextTimeOff, timeOfDay, bextOriginationTimeLen)

	binary.LittleEndian.PutUint32(buf[bextTimeRefLowOff:], uint32(timeRef&0xffffffff))
	binary.LittleEndian.PutUint32(buf[bextTimeRefHighOff:], uint32(timeRef>>32))

	copy(buf[bextCodingHistoryOff:], history)

	return buf
}
