package idgen

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderPrefix marks ids handed out in dry-run mode.
const PlaceholderPrefix = "DRYRUN"

// NextKey returns the first free key of the form PROJECT-N, starting at
// start (or 1). existsFn reports whether a key is taken.
func NextKey(project string, start int, existsFn func(string) bool) (string, error) {
	const maxProbe = 100000
	if start < 1 {
		start = 1
	}
	for n := start; n < start+maxProbe; n++ {
		key := fmt.Sprintf("%s-%d", project, n)
		if existsFn == nil || !existsFn(key) {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free key in %s after %d attempts", project, maxProbe)
}

// KeyNumber extracts N from a PROJECT-N key.
func KeyNumber(key string) (int, bool) {
	i := strings.LastIndex(key, "-")
	if i < 0 || i == len(key)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Placeholder returns the n-th dry-run id. Placeholders are deterministic
// for a given traversal order.
func Placeholder(n int) string {
	return fmt.Sprintf("%s-%d", PlaceholderPrefix, n)
}

// IsPlaceholder reports whether id came from Placeholder.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix+"-")
}
