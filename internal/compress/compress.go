// Package compress provides gzip compression for rotated log archives.
// A Compressor holds a configurable compression level parsed from the
// config file; level "none" is rejected at validation time because an
// uncompressed rotation would defeat the point of archiving.
package compress

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Extension is appended to archive file names produced by a Compressor.
const Extension = ".gz"

// Level represents a gzip compression level.
type Level int

const (
	// LevelFast uses fastest compression (gzip level 1).
	LevelFast Level = gzip.BestSpeed
	// LevelDefault uses gzip's default compression (level 6).
	LevelDefault Level = 6
	// LevelMax uses maximum compression (gzip level 9).
	LevelMax Level = gzip.BestCompression
)

// Compressor compresses log contents into gzip archives.
type Compressor struct {
	level Level
}

// New creates a Compressor with the given level.
func New(level Level) *Compressor {
	return &Compressor{level: level}
}

// ParseLevel creates a Compressor from a config-file level string.
// Valid values: "fast", "default", "max".
func ParseLevel(level string) (*Compressor, error) {
	switch strings.ToLower(level) {
	case "fast":
		return New(LevelFast), nil
	case "default", "":
		return New(LevelDefault), nil
	case "max":
		return New(LevelMax), nil
	default:
		return nil, fmt.Errorf("compress: invalid compression level %q (must be fast, default, or max)", level)
	}
}

// String returns the config-file representation of the compressor's level.
func (c *Compressor) String() string {
	switch c.level {
	case LevelFast:
		return "fast"
	case LevelMax:
		return "max"
	default:
		return "default"
	}
}

// Compress gzips data and returns the compressed bytes.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	zw, err := gzip.NewWriterLevel(&buf, int(c.level))
	if err != nil {
		return nil, fmt.Errorf("compress: creating gzip writer: %w", err)
	}

	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress: writing gzip stream: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress: closing gzip stream: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile compresses data and writes it to path atomically: the archive
// is written to a temporary file in the same directory and renamed into
// place, so a crash mid-write never leaves a truncated archive behind.
func (c *Compressor) WriteFile(path string, data []byte, perm os.FileMode) error {
	compressed, err := c.Compress(data)
	if err != nil {
		return err
	}

	tmp := path + ".partial"
	if err := os.WriteFile(tmp, compressed, perm); err != nil {
		return fmt.Errorf("compress: writing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)

		return fmt.Errorf("compress: renaming %s into place: %w", tmp, err)
	}

	return nil
}

// Decompress gunzips data and returns the original bytes.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compress: opening gzip stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("compress: reading gzip stream: %w", err)
	}

	return out, nil
}

// ReadFile reads and decompresses a gzip archive.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compress: reading %s: %w", path, err)
	}

	return Decompress(data)
}
