package sig

import (
	"encoding/json"
	"sort"
)

func sortJSON(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		sorted := make(map[string]any, len(keys))
		for _, key := range keys {
			sorted[key] = sortJSON(typed[key])
		}
		return sorted
	case []any:
		items := make([]any, 0, len(typed))
		for _, item := range typed {
			items = append(items, sortJSON(item))
		}
		return items
	default:
		return value
	}
}

// Canonicalize renders the value as deterministic JSON with
// recursively sorted object keys. Both signature schemes sign this
// form.
func Canonicalize(value any) string {
	sorted := sortJSON(value)
	encoded, err := json.Marshal(sorted)
	if err != nil {
		return ""
	}
	return string(encoded)
}
