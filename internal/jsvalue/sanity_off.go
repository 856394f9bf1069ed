//go:build !jsjit_sanity

package jsvalue

const sanityCheck = false
