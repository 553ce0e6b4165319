//go:build !windows

package sync

// notifyShellUpdate is a no-op: macOS and Linux file managers pick up
// filesystem changes on their own.
func notifyShellUpdate(string) {}
