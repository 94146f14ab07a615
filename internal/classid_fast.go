//go:build !nounsafe
// +build !nounsafe

package internal

import "unsafe"

// Using unsafe to retrieve the class's address avoids reflect on every
// ancestor walk, which happens for each method send.

// uintptrOf returns the class's address.
func uintptrOf(c *Class) uintptr {
	return uintptr(unsafe.Pointer(c))
}
