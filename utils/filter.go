package utils

// Filter returns a function keeping the elements for which keep is true.
func Filter[T any](keep func(n T) bool) func(list []T) []T {
	return func(list []T) []T {
		r := make([]T, 0, len(list))
		for _, n := range list {
			if keep(n) {
				r = append(r, n)
			}
		}
		return r
	}
}
