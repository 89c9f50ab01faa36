// Package bwav reads and writes RIFF/WAVE audio files with broadcast-wave
// metadata support.
//
// The Reader parses an arbitrary, possibly malformed chunk stream into
// linear PCM or IEEE float sample data plus bext/smpl metadata. The Writer
// produces a well-formed file, writing a provisional header up front and
// finalizing sizes once the total sample count is known.
//
// Samples cross the API in a canonical 32-bit signed domain: every
// supported bit depth (8, 16, 24, 32) occupies the high-order bits of an
// int32, so callers process audio uniformly regardless of the file's depth.
//
// ReplaceMetadataInFile swaps a file's broadcast metadata, patching the
// existing bext chunk in place when the replacement fits and rebuilding the
// file atomically when it doesn't.
package bwav
