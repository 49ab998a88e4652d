// Package schedule provides the internal one-shot, rearmable timer that owns the
// single pending proactive refresh per tracked reference.
//
// # Single-timer invariant
//
// Arming always cancels the previous pending callback first, so at most one
// callback is pending per [Timer] at any time. Cancel is safe to call at any
// point, including after the callback fired.
//
// # What this package must NOT do
//
//   - Decide refresh policy — it runs whatever callback the caller arms.
//   - Be imported outside the urlkeeper module.
package schedule
