package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID parses a positive decimal surrogate key. Keys are stored as signed
// 64-bit integers, so anything above math.MaxInt64 is rejected.
func ParseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 63)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// IsNumericRef reports whether a path reference looks like a surrogate key
// rather than a uid.
func IsNumericRef(ref string) bool {
	_, err := ParseID(ref)
	return err == nil
}

// UniqueIDs drops zero and repeated ids, keeping first-seen order.
func UniqueIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
