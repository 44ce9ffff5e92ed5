//go:build !petdebug

package systems

// assertf checks programming invariants. It compiles to nothing unless the
// petdebug build tag is set.
func assertf(bool, string, ...any) {}
