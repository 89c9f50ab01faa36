package bwav

import (
	"encoding/binary"

	"github.com/go-audio/audio"
)

// sampleDecode32Func returns a function that converts one little-endian
// sample of the given bit depth into the canonical 32-bit domain, where the
// value occupies the high-order bits of an int32.
// Note that 8bit samples are unsigned, all other depths are signed.
func sampleDecode32Func(bitDepth int) func([]byte) int32 {
	switch bitDepth {
	case 8:
		// 8bit values are unsigned and biased around 128
		return func(b []byte) int32 {
			return (int32(b[0]) - 128) << 24
		}
	case 16:
		return func(b []byte) int32 {
			return int32(int16(binary.LittleEndian.Uint16(b[:2]))) << 16
		}
	case 24:
		return func(b []byte) int32 {
			return audio.Int24LETo32(b[:3]) << 8
		}
	case 32:
		// float and int are bit-identical here, only the format tag differs
		return func(b []byte) int32 {
			return int32(binary.LittleEndian.Uint32(b[:4]))
		}
	default:
		return nil
	}
}

// sampleEncode32Func returns the inverse of sampleDecode32Func: it truncates
// a canonical 32-bit value to the given bit depth and serializes it as
// little-endian bytes.
func sampleEncode32Func(bitDepth int) func(int32, []byte) {
	switch bitDepth {
	case 8:
		return func(v int32, b []byte) {
			b[0] = uint8(128 + (v >> 24))
		}
	case 16:
		return func(v int32, b []byte) {
			binary.LittleEndian.PutUint16(b[:2], uint16(v>>16))
		}
	case 24:
		return func(v int32, b []byte) {
			copy(b[:3], audio.Int32toInt24LEBytes(v>>8))
		}
	case 32:
		return func(v int32, b []byte) {
			binary.LittleEndian.PutUint32(b[:4], uint32(v))
		}
	default:
		return nil
	}
}
