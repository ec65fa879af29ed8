// Package mapx provides generic map operations used by the annotation and
// aggregation layers: additive counter merging, deep document merging,
// gap front-filling, and sorted-key extraction.
package mapx

import (
	"cmp"
	stdmaps "maps"
	"slices"
)

// Numeric is the constraint for types that support the += operator.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Clone returns a shallow copy of m.
// Returns nil for a nil map.
func Clone[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}

	clone := make(map[K]V, len(m))
	stdmaps.Copy(clone, m)

	return clone
}

// MergeAdditive additively merges src into dst: dst[k] += src[k] for every key
// in src. Counter merging is commutative and associative under this operation,
// with the empty map as identity.
// If dst is nil, this is a no-op.
func MergeAdditive[K comparable, V Numeric](dst, src map[K]V) {
	if dst == nil {
		return
	}

	for k, v := range src {
		dst[k] += v
	}
}

// DeepMerge merges src into dst without clobbering deeply nested values:
// map values merge key-wise recursively, slice values concatenate, and scalar
// values overwrite. dst is modified in place and returned; a nil dst is
// allocated. Values already present in dst survive when src does not mention
// their key.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}

	for k, v := range src {
		switch sv := v.(type) {
		case map[string]any:
			dv, ok := dst[k].(map[string]any)
			if !ok {
				dv = make(map[string]any, len(sv))
			}

			dst[k] = DeepMerge(dv, sv)
		case []any:
			dv, _ := dst[k].([]any)
			dst[k] = append(dv, sv...)
		default:
			dst[k] = v
		}
	}

	return dst
}

// FrontFill fills gaps in the integer-keyed map m with the value of the
// nearest preceding key. Only keys within [min(m), max(m)] are created;
// a gap before the first present key stays absent. An empty or nil input
// yields an empty map.
func FrontFill[T any](m map[int]T) map[int]T {
	filled := make(map[int]T, len(m))
	if len(m) == 0 {
		return filled
	}

	keys := SortedKeys(m)
	minKey, maxKey := keys[0], keys[len(keys)-1]

	previous, havePrevious := *new(T), false

	for key := minKey; key <= maxKey; key++ {
		value, ok := m[key]
		if ok {
			previous, havePrevious = value, true
		}

		if havePrevious {
			filled[key] = previous
		}
	}

	return filled
}

// SortedKeys returns the keys of m in sorted order.
// Returns nil for a nil map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	if m == nil {
		return nil
	}

	keys := make([]K, 0, len(m))

	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
