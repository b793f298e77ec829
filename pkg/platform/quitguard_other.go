//go:build !darwin

package platform

// BlockQuitShortcut is a no-op on non-macOS platforms
func BlockQuitShortcut() (release func()) {
	return func() {}
}
