// Package coreext registers the optional core extensions. Importing it for
// side effects makes every VM created afterward include them.
package coreext

import (
	// importing for side effects
	_ "github.com/zephyrtronium/rcore/coreext/marshal"
)
