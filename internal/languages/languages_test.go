package languages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnotate(t *testing.T) {
	t.Parallel()

	ann := NewAnnotator(nil)

	t.Run("python_source_is_programming", func(t *testing.T) {
		t.Parallel()

		info := ann.Annotate("src/module/core.py")
		assert.Equal(t, "Python", info.Language)
		assert.Equal(t, "programming", info.Type)
		assert.Equal(t, "programming", info.Purpose)
	})

	t.Run("test_path_overrides_purpose", func(t *testing.T) {
		t.Parallel()

		info := ann.Annotate("tests/engine/check_training.py")
		assert.Equal(t, "Python", info.Language)
		assert.Equal(t, "test", info.Purpose)
	})

	t.Run("markdown_is_prose_documentation", func(t *testing.T) {
		t.Parallel()

		info := ann.Annotate("README.md")
		assert.Equal(t, "Markdown", info.Language)
		assert.Equal(t, "prose", info.Type)
		assert.Equal(t, "documentation", info.Purpose)
	})

	t.Run("build_manifest_is_project", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "project", ann.Annotate("go.mod").Purpose)
		assert.Equal(t, "project", ann.Annotate("lib/CMakeLists.txt").Purpose)
		assert.Equal(t, "project", ann.Annotate("pkg/pyproject.toml").Purpose)
	})

	t.Run("dev_null_is_other", func(t *testing.T) {
		t.Parallel()

		info := ann.Annotate(DevNull)
		assert.Equal(t, DevNull, info.Language)
		assert.Equal(t, "other", info.Type)
		assert.Equal(t, "other", info.Purpose)
	})

	t.Run("unknown_extension", func(t *testing.T) {
		t.Parallel()

		info := ann.Annotate("data/blob.zzznoext")
		assert.Equal(t, "unknown", info.Language)
		assert.Equal(t, "other", info.Type)
	})

	t.Run("bare_text_file_names", func(t *testing.T) {
		t.Parallel()

		info := ann.Annotate("AUTHORS")
		assert.Equal(t, "Text", info.Language)
	})
}

func TestExtensionOverride(t *testing.T) {
	t.Parallel()

	t.Run("override_wins_over_detection", func(t *testing.T) {
		t.Parallel()

		ann := NewAnnotator(map[string]string{".pl": "Perl"})
		assert.Equal(t, "Perl", ann.Annotate("scripts/munge.pl").Language)
	})

	t.Run("missing_leading_dot_is_normalized", func(t *testing.T) {
		t.Parallel()

		ann := NewAnnotator(map[string]string{"cfg": "INI"})
		assert.Equal(t, "INI", ann.Annotate("app.cfg").Language)
	})
}
