package mapx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAdditive(t *testing.T) {
	t.Parallel()

	t.Run("nil_dst_is_noop", func(t *testing.T) {
		t.Parallel()

		MergeAdditive[string, int](nil, map[string]int{"a": 1})
	})

	t.Run("counts_add", func(t *testing.T) {
		t.Parallel()

		dst := map[string]int{"code": 2, "documentation": 1}
		MergeAdditive(dst, map[string]int{"code": 3, "test": 1})

		assert.Equal(t, map[string]int{"code": 5, "documentation": 1, "test": 1}, dst)
	})

	t.Run("commutative", func(t *testing.T) {
		t.Parallel()

		a := map[string]int{"x": 1, "y": 2}
		b := map[string]int{"y": 3, "z": 4}

		ab := Clone(a)
		MergeAdditive(ab, b)

		ba := Clone(b)
		MergeAdditive(ba, a)

		assert.Equal(t, ab, ba)
	})
}

func TestDeepMerge(t *testing.T) {
	t.Parallel()

	t.Run("sibling_keys_survive", func(t *testing.T) {
		t.Parallel()

		dst := map[string]any{"a": map[string]any{"b": 1}}
		got := DeepMerge(dst, map[string]any{"a": map[string]any{"c": 2}})

		assert.Equal(t, map[string]any{"a": map[string]any{"b": 1, "c": 2}}, got)
	})

	t.Run("lists_concatenate", func(t *testing.T) {
		t.Parallel()

		dst := map[string]any{"+": []any{"one"}}
		got := DeepMerge(dst, map[string]any{"+": []any{"two"}})

		assert.Equal(t, map[string]any{"+": []any{"one", "two"}}, got)
	})

	t.Run("scalars_overwrite", func(t *testing.T) {
		t.Parallel()

		dst := map[string]any{"purpose": "programming"}
		got := DeepMerge(dst, map[string]any{"purpose": "test"})

		assert.Equal(t, "test", got["purpose"])
	})

	t.Run("nil_dst_allocates", func(t *testing.T) {
		t.Parallel()

		got := DeepMerge(nil, map[string]any{"k": 1})
		assert.Equal(t, map[string]any{"k": 1}, got)
	})

	t.Run("repeated_merge_keeps_earlier_nested_values", func(t *testing.T) {
		t.Parallel()

		dst := map[string]any{}
		dst = DeepMerge(dst, map[string]any{"file.go": map[string]any{"+": []any{1}, "language": "Go"}})
		dst = DeepMerge(dst, map[string]any{"file.go": map[string]any{"+": []any{2}}})

		file, ok := dst["file.go"].(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, "Go", file["language"])
		assert.Equal(t, []any{1, 2}, file["+"])
	})
}

func TestFrontFill(t *testing.T) {
	t.Parallel()

	t.Run("fills_gap_with_preceding_value", func(t *testing.T) {
		t.Parallel()

		got := FrontFill(map[int]string{1: "a", 3: "c"})
		assert.Equal(t, map[int]string{1: "a", 2: "a", 3: "c"}, got)
	})

	t.Run("empty_input_is_empty", func(t *testing.T) {
		t.Parallel()

		got := FrontFill(map[int]string{})
		assert.Empty(t, got)
	})

	t.Run("no_keys_outside_range", func(t *testing.T) {
		t.Parallel()

		got := FrontFill(map[int]int{2: 20, 4: 40})

		assert.NotContains(t, got, 1)
		assert.NotContains(t, got, 5)
		assert.Equal(t, map[int]int{2: 20, 3: 20, 4: 40}, got)
	})

	t.Run("contiguous_input_unchanged", func(t *testing.T) {
		t.Parallel()

		in := map[int]int{0: 1, 1: 2, 2: 3}
		assert.Equal(t, in, FrontFill(in))
	})
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SortedKeys[string, int](nil))
	assert.Equal(t, []int{1, 2, 9}, SortedKeys(map[int]string{9: "c", 1: "a", 2: "b"}))
}
