// Package ptr has helpers for optional values carried as pointers.
package ptr

// New returns a pointer to v.
func New[T any](v T) *T { return &v }

// Deref returns the value p points to, or the zero value of T when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
