// Package governor provides the internal per-reference refresh gate: re-entrancy,
// attempt ceiling, and debounce checks applied to every refresh trigger.
//
// # Gate order
//
// Admit evaluates three checks in a fixed order under one lock:
//
//  1. re-entrancy — a refresh is already in flight, skip
//  2. exhaustion  — the attempt ceiling was reached, terminal until Reset
//  3. debounce    — the previous attempt was too recent, skip
//
// Because the check and the in-flight set happen inside a single critical
// section, two triggers racing on the same reference admit exactly one.
//
// # What this package must NOT do
//
//   - Perform network I/O or schedule timers (those live with the caller).
//   - Be imported outside the urlkeeper module.
package governor
