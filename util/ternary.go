package util

// Tern returns a if cond, else b. Both are always evaluated.
func Tern[T any](cond bool, a T, b T) T {
	if cond {
		return a
	}
	return b
}
