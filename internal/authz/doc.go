// Package authz derives permission principals from authenticated
// identities and carries the identity through the request context.
//
// Core concepts:
//
//   - Identity: The authenticated actor of a request. A user, an auth
//     client, or both together (a client acting on behalf of a forwarded
//     user). Set via WithIdentity with set-once semantics.
//
//   - Principal: An opaque permission token granted to an identity.
//     Authorization checks test membership of the principal set returned
//     by PrincipalsForIdentity. Tokens are plain strings but must be
//     built through the typed constructors (GroupPrincipal,
//     AuthorityPrincipal, ...) so malformed tokens cannot be minted.
//
// Usage rules:
//
//  1. An identity with neither user nor auth client yields nil
//     principals, never an empty set.
//  2. Never format principal tokens by hand; use the constructors.
//  3. Middleware must set the identity exactly once per request.
package authz
