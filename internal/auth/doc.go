// Package auth provides the concrete collaborators behind the session
// controller: where tokens and cookies are persisted, how a bearer token is
// validated against the cluster, how an auth proxy cookie is probed, and how
// the proxy session is cleared on logout.
package auth
