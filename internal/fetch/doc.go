// Package fetch provides the internal HTTP client for the signed-URL refresh
// endpoint.
//
// # Round trip contract
//
// One Refresh call performs exactly one network round trip:
//
//	GET <base>/files/refresh-url?fileKey=<key>[&entityType=<t>&entityId=<id>]
//	Authorization: Bearer <token>   (when a token is available)
//
// and decodes the JSON envelope {success, data:{fileKey, presignedUrl,
// expiresIn}, message}. Non-2xx status, success=false, and a missing
// presignedUrl are all failures.
//
// # What this package must NOT do
//
//   - Mutate shared lifecycle state, schedule timers, or retry — the caller's
//     gate owns attempt policy.
//   - Be imported outside the urlkeeper module.
package fetch
