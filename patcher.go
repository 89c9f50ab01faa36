package bwav

import (
	"fmt"
	"os"
	"path/filepath"
)

// patchBlockFrames is the copy granularity of the rebuild path.
const patchBlockFrames = 4096

// ReplaceMetadataInFile swaps the broadcast metadata of the wav file at
// path. When the file already carries a bext chunk large enough to hold the
// newly encoded payload, the chunk is patched in place, a constant-size
// update that leaves the rest of the file untouched. Otherwise the whole
// file is rebuilt with the new metadata into a temporary sibling which
// atomically replaces the original; if any rebuild step fails the sibling
// is removed and the original stays byte-for-byte intact.
func ReplaceMetadataInFile(path string, meta *MetadataMap) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	var bextOffset, bextSize int64

	d, readErr := NewReader(in)
	if readErr == nil {
		bextOffset = d.bextOffset
		bextSize = d.bextSize
	}

	if err := in.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if readErr == nil && bextSize > 0 {
		chunk := encodeBroadcastChunk(meta)

		if int64(len(chunk)) <= bextSize {
			// the replacement fits in the reserved space, patch it directly
			return patchChunkInPlace(path, bextOffset, chunk)
		}
	}

	return rewriteWithMetadata(path, meta)
}

func patchChunkInPlace(path string, offset int64, payload []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s for patching: %w", path, err)
	}

	if _, err := f.WriteAt(payload, offset); err != nil {
		f.Close()

		return fmt.Errorf("failed to patch bext chunk in %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}

// rewriteWithMetadata copies the file's audio stream through a fresh
// Reader/Writer pair with the replacement metadata, then renames the result
// over the original.
func rewriteWithMetadata(path string, meta *MetadataMap) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	d, err := NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create sibling file: %w", err)
	}

	tmpPath := tmp.Name()

	discard := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)

		return err
	}

	e, err := NewWriter(tmp, int(d.SampleRate), int(d.NumChans), int(d.BitDepth), meta)
	if err != nil {
		return discard(fmt.Errorf("failed to create writer for %s: %w", tmpPath, err))
	}

	chans := make([][]int32, d.NumChans)
	for c := range chans {
		chans[c] = make([]int32, patchBlockFrames)
	}

	block := make([][]int32, d.NumChans)

	for start := int64(0); start < d.NumSamples; start += patchBlockFrames {
		n := int(min(int64(patchBlockFrames), d.NumSamples-start))

		d.ReadSamples(chans, 0, start, n)

		for c := range chans {
			block[c] = chans[c][:n]
		}

		if err := e.WriteSamples(block, n); err != nil {
			return discard(fmt.Errorf("failed to copy samples to %s: %w", tmpPath, err))
		}
	}

	if err := e.Close(); err != nil {
		return discard(fmt.Errorf("failed to finalize %s: %w", tmpPath, err))
	}

	if err := tmp.Close(); err != nil {
		return discard(fmt.Errorf("failed to close %s: %w", tmpPath, err))
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
