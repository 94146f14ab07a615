//go:build nounsafe
// +build nounsafe

package internal

import "reflect"

// The default implementation of uintptrOf uses unsafe.Pointer. If you can't
// use packages importing unsafe, you can build with -tags=nounsafe to select
// this implementation instead.

// uintptrOf returns the class's address.
func uintptrOf(c *Class) uintptr {
	return reflect.ValueOf(c).Pointer()
}
