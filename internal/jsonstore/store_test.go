package jsonstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	t.Parallel()

	t.Run("round_trips_plain_json", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "doc.json")
		in := map[string]any{"language": "Python", "n": float64(3)}

		require.NoError(t, Write(path, in))

		var out map[string]any

		require.NoError(t, Read(path, &out))
		assert.Equal(t, in, out)
	})

	t.Run("round_trips_compressed_json", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "doc.json"+CompressedExt)
		in := map[string]any{"purpose": "test"}

		require.NoError(t, Write(path, in))

		var out map[string]any

		require.NoError(t, Read(path, &out))
		assert.Equal(t, in, out)
	})

	t.Run("read_of_missing_file_fails", func(t *testing.T) {
		t.Parallel()

		var out map[string]any

		assert.Error(t, Read(filepath.Join(t.TempDir(), "absent.json"), &out))
	})
}

func TestFanout(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		filepath.Join("out", "c0", "ffee01.json"),
		Fanout("out", "c0ffee01", ".json"))
	assert.Equal(t,
		filepath.Join("out", "ab.json"),
		Fanout("out", "ab", ".json"))
}
