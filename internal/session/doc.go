// Package session implements the authentication lifecycle.
//
// The session moves through four phases:
//
//	anonymous -> authenticating -> authenticated
//	                            \-> anonymous (validation error)
//	authenticated -> expired -> anonymous
//
// Controller operations never touch state directly. They call the external
// collaborators (token validator, token store, cookie probe, remote session
// clearer) and emit actions. Reduce turns those actions into the next State.
//
// Two identity modes exist. In token mode the user supplies a bearer token
// that is validated against the API server and persisted locally. In OIDC
// mode an auth proxy owns the session; locally it is only a cookie, and
// logging out means asking the proxy to drop it.
package session
