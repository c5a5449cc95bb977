package mutate

import (
	"strconv"
	"time"
)

// NewID returns the creation timestamp in Unix milliseconds, bumped by one until it is not
// taken. Two creates within the same millisecond therefore still get distinct ids.
func NewID(now time.Time, taken func(id string) bool) string {
	n := now.UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if taken == nil || !taken(id) {
			return id
		}
		n++
	}
}

func idSet[T any](xs []T, id func(T) string) func(string) bool {
	seen := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		seen[id(x)] = struct{}{}
	}
	return func(s string) bool {
		_, ok := seen[s]
		return ok
	}
}
