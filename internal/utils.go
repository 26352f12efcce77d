package internal

// MergeMaps merges maps into a single map. Later maps override earlier ones.
func MergeMaps[K comparable, V any](maps ...map[K]V) map[K]V {
	result := make(map[K]V)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// TruncateString truncates a string to the given length, leaving the
// string unchanged if it is already short enough.
func TruncateString(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}
