package auth

import (
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const fallbackNamespace = "default"

// Algorithms accepted when decoding a token's payload. The signature is not
// checked here; the API server does that.
var tokenAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.HS256, jose.HS384, jose.HS512,
	jose.EdDSA,
}

type serviceAccountClaims struct {
	LegacyNamespace string `json:"kubernetes.io/serviceaccount/namespace"`
	Kubernetes      struct {
		Namespace string `json:"namespace"`
	} `json:"kubernetes.io"`
}

// DefaultNamespaceFromToken returns the namespace a service account token is
// bound to, or "default" when the token carries none or is not a JWT.
func DefaultNamespaceFromToken(token string) string {
	if token == "" {
		return fallbackNamespace
	}
	parsed, err := jwt.ParseSigned(token, tokenAlgorithms)
	if err != nil {
		return fallbackNamespace
	}
	var claims serviceAccountClaims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return fallbackNamespace
	}
	switch {
	case claims.LegacyNamespace != "":
		return claims.LegacyNamespace
	case claims.Kubernetes.Namespace != "":
		return claims.Kubernetes.Namespace
	default:
		return fallbackNamespace
	}
}
