// Package keyref normalizes caller-supplied resource references into canonical
// object-storage keys.
//
// # Accepted shapes
//
// A reference is one of:
//
//   - a bare storage key ("images/a.png") — returned unchanged
//   - a path-style signed URL ("https://host/file/<bucket>/<key>?...")
//   - a virtual-host-style signed URL ("https://<bucket>.s3.<region>.host/<key>?...")
//
// Query strings are stripped; the key is everything past the bucket segment.
//
// # Failure mode
//
// Resolution never returns an error. Empty references and absolute URLs in an
// unrecognized shape resolve to ("", false), which callers surface as a
// non-retryable condition — retrying cannot make an unresolvable reference
// resolvable.
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Import any other urlkeeper package.
package keyref
