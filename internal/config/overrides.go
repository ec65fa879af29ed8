package config

import "strings"

// ParsePairs turns KEY:VALUE override arguments into a mapping. A bare KEY
// maps to itself, and an empty-string entry resets the mapping to empty, so
// "--purpose-to-annotation ''" clears the built-in defaults. Later entries
// win over earlier ones.
func ParsePairs(pairs []string) map[string]string {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		if pair == "" {
			result = make(map[string]string)

			continue
		}

		key, value, found := strings.Cut(pair, ":")
		if !found {
			value = key
		}

		result[key] = value
	}

	return result
}
