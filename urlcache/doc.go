// Package urlcache provides Redis-backed caching of the last known-good signed
// URL per tenant and storage key.
//
// # Purpose
//
// The cache warm-starts tracking across page loads and processes: when a
// reference is first tracked, a cached URL that is still comfortably inside
// its validity window is served immediately instead of spending a refresh
// round trip. The cache is an optimization, never a source of truth — a miss,
// a corrupt entry, or an unavailable Redis all degrade to a normal refresh.
//
// # Key layout
//
//	<prefix>:u:<tenant>:<fileKey> -> "<unixExpiry>|<url>"  (TTL = time to expiry)
//
// Entries expire with the URL itself, so Redis never serves a URL past its
// signed window.
//
// # What this package must NOT do
//
//   - Refresh URLs or talk to the signing backend.
//   - Import the root urlkeeper package (no upward imports).
package urlcache
