package bwav

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempWavPath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "out.wav")
}

func createWavFile(t *testing.T, path string, sampleRate, numChans, bitDepth int,
	meta *MetadataMap, blocks ...[][]int32) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, f.Close())
	}()

	e, err := NewWriter(f, sampleRate, numChans, bitDepth, meta)
	require.NoError(t, err)

	for _, block := range blocks {
		require.NoError(t, e.WriteSamples(block, len(block[0])))
	}

	require.NoError(t, e.Close())
}

func TestNewWriterRejectsBadConfig(t *testing.T) {
	path := tempWavPath(t)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = NewWriter(f, 44100, 1, 12, nil)
	assert.ErrorIs(t, err, ErrUnsupportedBitDepth)

	_, err = NewWriter(f, 44100, 0, 16, nil)
	assert.ErrorIs(t, err, ErrInvalidChannelCount)
}

func TestWriterEmptyFileIs44Bytes(t *testing.T) {
	path := tempWavPath(t)
	createWavFile(t, path, 44100, 1, 16, nil)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 44)

	chunks, err := parseWavChunks(data)
	require.NoError(t, err)

	fmtChunk, _ := findChunk(chunks, "fmt ")
	require.NotNil(t, fmtChunk)
	assert.Equal(t, uint32(16), fmtChunk.size)

	dataChunk, _ := findChunk(chunks, "data")
	require.NotNil(t, dataChunk)
	assert.Equal(t, uint32(0), dataChunk.size)

	// declared total size covers the header minus the 8-byte RIFF preamble
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(data[4:8]))
}

func TestWriterHeaderFields(t *testing.T) {
	path := tempWavPath(t)
	createWavFile(t, path, 48000, 2, 24, nil,
		[][]int32{make([]int32, 100), make([]int32, 100)})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, err := parseWavChunks(data)
	require.NoError(t, err)

	fmtChunk, _ := findChunk(chunks, "fmt ")
	require.NotNil(t, fmtChunk)

	assert.Equal(t, uint16(wavFormatPCM), binary.LittleEndian.Uint16(fmtChunk.data[0:2]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(fmtChunk.data[2:4]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(fmtChunk.data[4:8]))
	assert.Equal(t, uint32(48000*6), binary.LittleEndian.Uint32(fmtChunk.data[8:12]))
	assert.Equal(t, uint16(6), binary.LittleEndian.Uint16(fmtChunk.data[12:14]))
	assert.Equal(t, uint16(24), binary.LittleEndian.Uint16(fmtChunk.data[14:16]))

	dataChunk, _ := findChunk(chunks, "data")
	require.NotNil(t, dataChunk)
	assert.Equal(t, uint32(600), dataChunk.size)
}

func TestWriter32BitIsFloatTagged(t *testing.T) {
	path := tempWavPath(t)
	createWavFile(t, path, 44100, 1, 32, nil, [][]int32{{1, 2, 3}})

	chunks, err := parseWavChunksFromFile(path)
	require.NoError(t, err)

	fmtChunk, _ := findChunk(chunks, "fmt ")
	require.NotNil(t, fmtChunk)
	assert.Equal(t, uint16(wavFormatIEEEFloat), binary.LittleEndian.Uint16(fmtChunk.data[0:2]))
}

func TestWriterBextChunkPlacement(t *testing.T) {
	meta := NewBroadcastMetadata("desc", "orig", "", time.Unix(0, 0).UTC(), 42, "h")

	path := tempWavPath(t)
	createWavFile(t, path, 44100, 1, 16, meta, [][]int32{{1 << 16, 2 << 16}})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	chunks, err := parseWavChunksFromFile(path)
	require.NoError(t, err)

	bextChunk, bextIdx := findChunk(chunks, "bext")
	require.NotNil(t, bextChunk)

	_, dataIdx := findChunk(chunks, "data")
	assert.Less(t, bextIdx, dataIdx, "bext must precede data")
	assert.Zero(t, bextChunk.size%4)

	wantTotal := uint32(4) /* data bytes */ + 44 + bextChunk.size
	assert.Equal(t, wantTotal, binary.LittleEndian.Uint32(data[4:8]))
}

func TestWriterEmptyMetadataOmitsBext(t *testing.T) {
	path := tempWavPath(t)
	createWavFile(t, path, 44100, 1, 16, &MetadataMap{}, [][]int32{{0}})

	chunks, err := parseWavChunksFromFile(path)
	require.NoError(t, err)

	bextChunk, _ := findChunk(chunks, "bext")
	assert.Nil(t, bextChunk)
}

func TestWriteReadRoundTripAllDepths(t *testing.T) {
	src := []int32{0, 1 << 24, -(1 << 24), 0x40000000, -0x40000000, 0x7fffff00, -0x7fffff00}

	tests := []struct {
		bitDepth  int
		keepMask  int32
		name      string
	}{
		{8, ^int32(0xffffff), "8-bit"},
		{16, ^int32(0xffff), "16-bit"},
		{24, ^int32(0xff), "24-bit"},
		{32, ^int32(0), "32-bit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tempWavPath(t)
			createWavFile(t, path, 44100, 1, tt.bitDepth, nil, [][]int32{src})

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			d, err := NewReader(f)
			require.NoError(t, err)
			require.Equal(t, int64(len(src)), d.NumSamples)

			got := make([]int32, len(src))
			d.ReadSamples([][]int32{got}, 0, 0, len(src))

			for i, v := range src {
				assert.Equal(t, v&tt.keepMask, got[i], "sample %d", i)
			}
		})
	}
}

func TestWriteReadRoundTripStereo(t *testing.T) {
	left := []int32{1 << 16, 2 << 16, 3 << 16}
	right := []int32{-1 << 16, -2 << 16, -3 << 16}

	path := tempWavPath(t)
	createWavFile(t, path, 48000, 2, 16, nil, [][]int32{left, right})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	d, err := NewReader(f)
	require.NoError(t, err)

	gotL := make([]int32, 3)
	gotR := make([]int32, 3)
	d.ReadSamples([][]int32{gotL, gotR}, 0, 0, 3)

	assert.Equal(t, left, gotL)
	assert.Equal(t, right, gotR)
}

func TestWriterMonoSourceDuplicatedToStereo(t *testing.T) {
	mono := []int32{5 << 16, 6 << 16}

	path := tempWavPath(t)
	createWavFile(t, path, 44100, 2, 16, nil, [][]int32{mono})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	d, err := NewReader(f)
	require.NoError(t, err)

	gotL := make([]int32, 2)
	gotR := make([]int32, 2)
	d.ReadSamples([][]int32{gotL, gotR}, 0, 0, 2)

	assert.Equal(t, mono, gotL)
	assert.Equal(t, mono, gotR)
}

func TestWriterQuantizationScenario(t *testing.T) {
	// mono 16-bit 44100 Hz: canonical 0x00004000 lands in the truncated low
	// bits and quantizes to 16-bit sample 0
	src := make([]int32, 100)
	for i := range src {
		src[i] = 0x00004000
	}

	path := tempWavPath(t)
	createWavFile(t, path, 44100, 1, 16, nil, [][]int32{src})

	chunks, err := parseWavChunksFromFile(path)
	require.NoError(t, err)

	dataChunk, _ := findChunk(chunks, "data")
	require.NotNil(t, dataChunk)
	require.Equal(t, uint32(200), dataChunk.size)

	for i := 0; i < 100; i++ {
		got := int16(binary.LittleEndian.Uint16(dataChunk.data[i*2:]))
		assert.Equal(t, int16(0), got)
	}

	// the same value in the high half survives as 0x4000
	src2 := []int32{0x4000 << 16}
	path2 := tempWavPath(t)
	createWavFile(t, path2, 44100, 1, 16, nil, [][]int32{src2})

	chunks2, err := parseWavChunksFromFile(path2)
	require.NoError(t, err)

	dataChunk2, _ := findChunk(chunks2, "data")
	require.NotNil(t, dataChunk2)
	assert.Equal(t, int16(0x4000), int16(binary.LittleEndian.Uint16(dataChunk2.data)))
}

func TestWriterOverflowGuard(t *testing.T) {
	path := tempWavPath(t)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	e, err := NewWriter(f, 44100, 1, 16, nil)
	require.NoError(t, err)

	block := [][]int32{make([]int32, 64)}
	require.NoError(t, e.WriteSamples(block, 64))

	// force the accumulated count up to just under the ceiling
	e.bytesWritten = writeCeilingBytes - 64

	err = e.WriteSamples(block, 64)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// the writer latches failed and the header reflects the last good write
	err = e.WriteSamples(block, 64)
	assert.ErrorIs(t, err, ErrWriterFailed)

	require.NoError(t, e.Close())

	chunks, err := parseWavChunksFromFile(path)
	require.NoError(t, err)

	dataChunk, _ := findChunk(chunks, "data")
	require.NotNil(t, dataChunk)
	assert.Equal(t, uint32(128), dataChunk.size)
}

func TestWriterCloseAfterFailureRewritesHeader(t *testing.T) {
	path := tempWavPath(t)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	e, err := NewWriter(f, 44100, 1, 16, nil)
	require.NoError(t, err)

	require.NoError(t, e.WriteSamples([][]int32{{1 << 16, 2 << 16}}, 2))

	e.bytesWritten = writeCeilingBytes
	require.Error(t, e.WriteSamples([][]int32{{3 << 16}}, 1))

	require.NoError(t, e.Close())

	chunks, err := parseWavChunksFromFile(path)
	require.NoError(t, err)

	dataChunk, _ := findChunk(chunks, "data")
	require.NotNil(t, dataChunk)
	assert.Equal(t, uint32(4), dataChunk.size)
}
