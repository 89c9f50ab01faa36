package bwav

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	// CIDBext is the chunk ID for the broadcast extension chunk.
	CIDBext = [4]byte{'b', 'e', 'x', 't'}
	// CIDSmpl is the chunk ID for a smpl chunk.
	CIDSmpl = [4]byte{'s', 'm', 'p', 'l'}

	// ErrFmtChunkNotFound is returned when a file carries no usable fmt chunk.
	ErrFmtChunkNotFound = errors.New("fmt chunk not found")
	// ErrUnsupportedWavFormat is returned when the fmt chunk declares a codec
	// other than linear PCM or IEEE float.
	ErrUnsupportedWavFormat = errors.New("unsupported wav format")
)

// readChunkBytes bounds the temporary read buffer; a multiple of every
// supported frame size so frames never straddle buffer boundaries.
const readChunkBytes = 480 * 3 * 4

// Reader decodes a wav stream. Construction parses the whole header region,
// all chunks before and after the data chunk, so metadata placed behind the
// sample payload is still picked up. Sample data is read on demand through
// ReadSamples.
//
// A Reader is not safe for concurrent use; it never closes the underlying
// stream.
type Reader struct {
	r io.ReadSeeker

	NumChans   uint16
	BitDepth   uint16
	SampleRate uint32
	// FloatingPoint reports IEEE float sample data. Conversion to the
	// canonical domain is bit-identical either way.
	FloatingPoint bool
	// NumSamples is the per-channel sample count of the data chunk.
	NumSamples int64

	// Metadata holds decoded bext/smpl fields, nil when the file carries
	// neither chunk.
	Metadata *MetadataMap

	bytesPerFrame int
	dataOffset    int64
	dataLength    int64
	bextOffset    int64
	bextSize      int64
}

// NewReader parses the header chunks of r and returns a ready Reader.
// It fails when the RIFF/WAVE tags are absent or the fmt chunk is missing
// or declares an unsupported codec; the stream is left open in every case.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	d := &Reader{r: r}

	if err := walkChunks(r, d.handleChunk); err != nil {
		return nil, err
	}

	if d.SampleRate == 0 {
		return nil, ErrFmtChunkNotFound
	}

	if d.bytesPerFrame == 0 {
		return nil, ErrUnsupportedWavFormat
	}

	return d, nil
}

func (d *Reader) handleChunk(ch *riff.Chunk, offset int64) error {
	switch ch.ID {
	case riff.FmtID:
		return d.parseFmtChunk(ch)
	case riff.DataFormatID:
		d.dataOffset = offset
		d.dataLength = int64(ch.Size)

		if d.bytesPerFrame > 0 {
			d.NumSamples = d.dataLength / int64(d.bytesPerFrame)
		}
	case CIDBext:
		d.bextOffset = offset
		d.bextSize = int64(ch.Size)

		return d.parseBextChunk(ch)
	case CIDSmpl:
		return d.parseSmplChunk(ch)
	}

	// unrecognized chunks are skipped by the walker's seek
	return nil
}

func (d *Reader) parseFmtChunk(ch *riff.Chunk) error {
	var (
		formatTag, numChans     uint16
		sampleRate, bytesPerSec uint32
	)

	if err := ch.ReadLE(&formatTag); err != nil {
		return fmt.Errorf("failed to read wav format: %w", err)
	}

	if err := ch.ReadLE(&numChans); err != nil {
		return fmt.Errorf("failed to read channels: %w", err)
	}

	if err := ch.ReadLE(&sampleRate); err != nil {
		return fmt.Errorf("failed to read sample rate: %w", err)
	}

	if err := ch.ReadLE(&bytesPerSec); err != nil {
		return fmt.Errorf("failed to read avg bytes/sec: %w", err)
	}

	d.NumChans = numChans
	d.SampleRate = sampleRate

	if sampleRate > 0 {
		d.bytesPerFrame = int(bytesPerSec / sampleRate)
	}

	if numChans > 0 {
		d.BitDepth = uint16(8 * d.bytesPerFrame / int(numChans))
	}

	switch formatTag {
	case wavFormatPCM:
	case wavFormatIEEEFloat:
		d.FloatingPoint = true
	default:
		// unsupported codec sentinel, makes the open fail
		d.bytesPerFrame = 0
	}

	return nil
}

func (d *Reader) parseBextChunk(ch *riff.Chunk) error {
	buf := make([]byte, max(ch.Size, bextMinScratch))

	// lenient: a short chunk decodes against the zero-filled remainder
	io.ReadFull(ch, buf[:ch.Size])

	if d.Metadata == nil {
		d.Metadata = &MetadataMap{}
	}

	decodeBroadcastChunk(buf, d.Metadata)

	return nil
}

func (d *Reader) parseSmplChunk(ch *riff.Chunk) error {
	buf := make([]byte, max(ch.Size, smplMinScratch))

	io.ReadFull(ch, buf[:ch.Size])

	if d.Metadata == nil {
		d.Metadata = &MetadataMap{}
	}

	decodeSamplerChunk(buf, ch.Size, d.Metadata)

	return nil
}

// ReadSamples decodes numSamples frames starting at startSample into the
// destination channel buffers, beginning at destOffset. Every sample is
// canonicalized to the 32-bit domain regardless of the source depth. A nil
// destination slice skips that channel without breaking interleaving
// alignment; channels beyond len(dest) are skipped the same way.
//
// The read is lenient by design: frames requested beyond the data region,
// and any bytes a truncated stream fails to deliver, come back as zeros
// rather than an error.
func (d *Reader) ReadSamples(dest [][]int32, destOffset int, startSample int64, numSamples int) {
	if numSamples <= 0 || len(dest) == 0 {
		return
	}

	n := numSamples

	if avail := d.NumSamples - startSample; int64(n) > avail {
		n = int(max(avail, 0))
	}

	// zero the tail beyond the available region up front
	zeroFill(dest, destOffset+n, numSamples-n)

	if n <= 0 {
		return
	}

	decode := sampleDecode32Func(int(d.BitDepth))
	if decode == nil {
		zeroFill(dest, destOffset, n)

		return
	}

	if _, err := d.r.Seek(d.dataOffset+startSample*int64(d.bytesPerFrame), io.SeekStart); err != nil {
		zeroFill(dest, destOffset, n)

		return
	}

	bytesPerSample := d.bytesPerFrame / int(d.NumChans)

	// at least one frame, even when a frame exceeds the chunk size
	tmp := make([]byte, max(readChunkBytes/d.bytesPerFrame, 1)*d.bytesPerFrame)

	for n > 0 {
		frames := min(len(tmp)/d.bytesPerFrame, n)
		want := frames * d.bytesPerFrame

		read, _ := io.ReadFull(d.r, tmp[:want])
		for i := read; i < want; i++ {
			tmp[i] = 0
		}

		src := 0

		for i := 0; i < frames; i++ {
			for c := 0; c < int(d.NumChans); c++ {
				if c < len(dest) && dest[c] != nil {
					dest[c][destOffset+i] = decode(tmp[src:])
				}

				src += bytesPerSample
			}
		}

		destOffset += frames
		n -= frames
	}
}

func zeroFill(dest [][]int32, offset, n int) {
	if n <= 0 {
		return
	}

	for c := range dest {
		if dest[c] == nil {
			continue
		}

		for i := offset; i < offset+n; i++ {
			dest[c][i] = 0
		}
	}
}

// Format returns the audio format of the decoded content.
func (d *Reader) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

// Duration returns the play time of the data chunk.
func (d *Reader) Duration() time.Duration {
	if d == nil || d.SampleRate == 0 {
		return 0
	}

	return time.Duration(d.NumSamples) * time.Second / time.Duration(d.SampleRate)
}

// FullBuffer reads the whole data chunk into an interleaved buffer with
// samples scaled back down to the source bit depth. The entire payload is
// held in memory; prefer ReadSamples for streaming access.
func (d *Reader) FullBuffer() (*audio.IntBuffer, error) {
	if d == nil {
		return nil, ErrFmtChunkNotFound
	}

	numSamples := int(d.NumSamples)
	numChans := int(d.NumChans)

	chans := make([][]int32, numChans)
	for c := range chans {
		chans[c] = make([]int32, numSamples)
	}

	d.ReadSamples(chans, 0, 0, numSamples)

	buf := &audio.IntBuffer{
		Format:         d.Format(),
		SourceBitDepth: int(d.BitDepth),
		Data:           make([]int, numSamples*numChans),
	}

	shift := 32 - int(d.BitDepth)
	for i := 0; i < numSamples; i++ {
		for c := 0; c < numChans; c++ {
			buf.Data[i*numChans+c] = int(chans[c][i] >> shift)
		}
	}

	return buf, nil
}
