// Package archive moves cold transcripts into zstd-compressed storage
// while keeping them readable.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const ext = ".jsonl.zst"

// Path returns where a session's archive lives under archiveDir.
func Path(sessionID, archiveDir string) string {
	return filepath.Join(archiveDir, sessionID+ext)
}

// IsArchive reports whether path points at a compressed transcript.
func IsArchive(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Compress writes srcPath into archiveDir/{session-id}.jsonl.zst and
// returns the archive path. The source file is left in place; removal
// is the caller's decision.
func Compress(srcPath, archiveDir string) (string, error) {
	sessionID := strings.TrimSuffix(filepath.Base(srcPath), ".jsonl")
	if sessionID == "" {
		return "", fmt.Errorf("cannot derive session id from %s", srcPath)
	}

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	destPath := Path(sessionID, archiveDir)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

type decodeReader struct {
	f       *os.File
	decoder *zstd.Decoder
}

func (r *decodeReader) Read(p []byte) (int, error) { return r.decoder.Read(p) }

func (r *decodeReader) Close() error {
	r.decoder.Close()
	return r.f.Close()
}

// Open opens a transcript for reading, decompressing transparently when
// path points at an archive.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !IsArchive(path) {
		return f, nil
	}

	decoder, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &decodeReader{f: f, decoder: decoder}, nil
}
