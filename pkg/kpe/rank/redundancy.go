// Package rank selects the final keyphrases: it orders weighted candidates
// and optionally suppresses candidates already covered by a better one.
package rank

// IsRedundant reports whether target, of at least minLength tokens, occurs
// as a contiguous, order-preserving run of tokens inside one of prev.
func IsRedundant(target []string, prev [][]string, minLength int) bool {
	if len(target) < minLength || len(target) == 0 {
		return false
	}
	for _, form := range prev {
		for i := 0; i+len(target) <= len(form); i++ {
			if equal(form[i:i+len(target)], target) {
				return true
			}
		}
	}
	return false
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
