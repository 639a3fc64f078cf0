// internal/storage/archive/interface_test.go
package archive

import "testing"

// Compile-time interface compliance checks will be added
// as implementations are created

func TestInterfaceDefined(t *testing.T) {
	// Placeholder to ensure package compiles
	var _ Storage = nil
}
