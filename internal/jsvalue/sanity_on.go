//go:build jsjit_sanity

package jsvalue

// sanityCheck enables construction-time category assertions.
const sanityCheck = true
