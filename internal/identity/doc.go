// Package identity hands out canonical resource handles.
//
// A Resolver guarantees that resolving the same URI with the same kind
// returns the same *ir.Resource for the resolver's lifetime, so handles can
// be compared with ==. Each Session owns one Resolver; tests that need
// isolation create a fresh one with New.
//
// URIs are NFC normalized before they are keyed, so composed and
// decomposed spellings of the same URI share a handle.
package identity
