//go:build !debug

package block

// Debug is true when contract violations panic.
const Debug = false
