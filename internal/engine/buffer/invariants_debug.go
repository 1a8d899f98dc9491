//go:build textcore_debug

package buffer

// Built with -tags textcore_debug, every mutation re-checks the storage and
// mark invariants and panics on the first violation.
const debugInvariants = true
