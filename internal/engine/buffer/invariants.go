//go:build !textcore_debug

package buffer

const debugInvariants = false
