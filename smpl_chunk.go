package bwav

import (
	"encoding/binary"
	"strconv"
)

// smpl chunk layout: nine fixed 32-bit fields followed by numSampleLoops
// fixed-size loop records.
const (
	smplManufacturerOff      = 0
	smplProductOff           = 4
	smplSamplePeriodOff      = 8
	smplMIDIUnityNoteOff     = 12
	smplMIDIPitchFractionOff = 16
	smplSMPTEFormatOff       = 20
	smplSMPTEOffsetOff       = 24
	smplNumSampleLoopsOff    = 28
	smplSamplerDataOff       = 32

	smplFixedLen      = 36
	smplLoopRecordLen = 24

	// minimum scratch size so a short chunk still decodes against a
	// zero-filled layout
	smplMinScratch = smplFixedLen + smplLoopRecordLen
)

// decodeSamplerChunk decodes a smpl payload into the metadata map. buf must
// be zero-padded to at least smplMinScratch bytes. declaredLen is the
// chunk's declared byte length: loop records are never decoded past it,
// even when the declared loop count implies more records than fit.
func decodeSamplerChunk(buf []byte, declaredLen int, m *MetadataMap) {
	u32 := func(off int) uint32 {
		return binary.LittleEndian.Uint32(buf[off : off+4])
	}

	setU32 := func(key string, off int) {
		m.Set(key, strconv.FormatUint(uint64(u32(off)), 10))
	}

	setU32("Manufacturer", smplManufacturerOff)
	setU32("Product", smplProductOff)
	setU32("SamplePeriod", smplSamplePeriodOff)
	setU32("MidiUnityNote", smplMIDIUnityNoteOff)
	setU32("MidiPitchFraction", smplMIDIPitchFractionOff)
	setU32("SmpteFormat", smplSMPTEFormatOff)
	setU32("SmpteOffset", smplSMPTEOffsetOff)
	setU32("NumSampleLoops", smplNumSampleLoopsOff)
	setU32("SamplerData", smplSamplerDataOff)

	numLoops := int64(u32(smplNumSampleLoopsOff))
	for i := int64(0); i < numLoops; i++ {
		base := smplFixedLen + int(i)*smplLoopRecordLen
		if base+smplLoopRecordLen > declaredLen {
			break
		}

		prefix := "Loop" + strconv.FormatInt(i, 10)
		setU32(prefix+"Identifier", base)
		setU32(prefix+"Type", base+4)
		setU32(prefix+"Start", base+8)
		setU32(prefix+"End", base+12)
		setU32(prefix+"Fraction", base+16)
		setU32(prefix+"PlayCount", base+20)
	}
}
