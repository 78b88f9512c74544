// Package types defines the value types shared by the aperture compiler:
// memory regions, per-master policies, whole configurations, compiled
// register images, and the typed errors every layer reports.
//
// Design goals:
//   - Plain values. Configurations and images are copied, never shared, so
//     a compile or decompile call cannot observe or cause mutation.
//   - Priority is list order. A master's regions are an ordered slice and a
//     single first-match function decides which one governs an address.
//   - Typed errors with stable categories so callers can branch on intent
//     rather than text, and so diagnostics name the failing master and slot.
//
// This package has no dependencies beyond the standard library.
package types
