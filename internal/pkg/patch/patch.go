// Package patch holds helpers for partial updates where a nil pointer means "leave as is".
package patch

// Assign copies *src into dst when src is set and reports whether it did.
func Assign[T any](dst *T, src *T) bool {
	if src == nil {
		return false
	}
	*dst = *src
	return true
}
