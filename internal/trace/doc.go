// Package trace defines the per-tick sample log produced by running probes
// against an engine, and its canonical JSON encoding.
//
// Canonical encoding is the only serialization used for golden files,
// recorded runs, and replay comparison. Two traces are equal exactly when
// their canonical encodings are byte-identical.
//
// Canonical rules:
//   - Object keys sorted, no insignificant whitespace
//   - No HTML escaping (< > & are NOT escaped)
//   - Strings are NFC normalized
//   - Integers are written as-is
//   - Floats are rounded to FloatPrecision decimals; NaN and Inf are rejected
//   - null is rejected
package trace
