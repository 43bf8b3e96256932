package utils

import "strings"

// ParseTagList splits a comma-separated tag string. Blanks are trimmed and
// dropped; repeats keep their first position.
func ParseTagList(raw string) []string {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// JoinTagList is the inverse of ParseTagList for display and form values.
func JoinTagList(names []string) string {
	return strings.Join(names, ", ")
}
