// Package jsonstore reads and writes the flat JSON documents the annotation
// and aggregation layers exchange. Paths ending in .lz4 are transparently
// compressed and decompressed.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// CompressedExt marks documents stored LZ4-compressed.
const CompressedExt = ".lz4"

// Write serializes v as JSON to path, creating parent directories as needed.
// The write goes through a temporary file renamed into place so readers never
// observe a partial document.
func Write(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}

	if err := encode(tmp, path, v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("renaming into place: %w", err)
	}

	return nil
}

func encode(w io.Writer, path string, v any) error {
	if strings.HasSuffix(path, CompressedExt) {
		zw := lz4.NewWriter(w)

		if err := encodeJSON(zw, v); err != nil {
			return err
		}

		if err := zw.Close(); err != nil {
			return fmt.Errorf("flushing compressed stream: %w", err)
		}

		return nil
	}

	return encodeJSON(w, v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// Read deserializes the JSON document at path into v.
func Read(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, CompressedExt) {
		r = lz4.NewReader(f)
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	return nil
}

// Fanout shards an identifier into a two-level path under dir, limiting the
// number of entries per directory: dir/ab/cdef...<ext>. Identifiers shorter
// than the shard prefix are stored flat.
func Fanout(dir, id, ext string) string {
	if len(id) <= 2 {
		return filepath.Join(dir, id+ext)
	}

	return filepath.Join(dir, id[:2], id[2:]+ext)
}
