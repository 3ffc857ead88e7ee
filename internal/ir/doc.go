// Package ir provides the term-level representation shared by every
// activegraph package.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal. This keeps the term model the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Terms are a sealed set: Resource, Literal and Variable
//   - Resource handles are immutable once created; identity is pointer
//     identity, handed out by the identity package
//   - Canonical keys are NFC normalized so visually equal URIs and
//     literals deduplicate the same way everywhere
//   - Error values carry a Code so callers can tell "not found" (absent
//     results, never an error) from "invalid request"
package ir
