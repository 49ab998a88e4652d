// Package tokens provides bearer-token sources for the refresh client.
//
// # Sources
//
// A Source yields the bearer token to attach to refresh requests. [Static]
// wraps a fixed token, [Func] adapts a closure (a session store lookup, a
// secret manager read). The lifecycle engine never assumes a storage
// mechanism; it only calls Source.Token.
//
// # Expiry guard
//
// [Guard] wraps a Source and, when the token is a JWT, inspects its exp claim
// with an unverified parse. An already-expired bearer is withheld so a
// refresh attempt is not spent on a request that is guaranteed to be
// rejected. Opaque (non-JWT) tokens pass through untouched; verification is
// the backend's job, not this package's.
//
// # What this package must NOT do
//
//   - Verify signatures or mint tokens.
//   - Cache or persist tokens.
//   - Import any other urlkeeper package.
package tokens
