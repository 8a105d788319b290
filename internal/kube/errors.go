package kube

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// IsUnauthorized reports whether err is a 401 from the API server, meaning the
// session credentials are no longer accepted.
func IsUnauthorized(err error) bool {
	return apierrors.IsUnauthorized(err)
}

// IsNotFound reports whether err is a 404 from the API server.
func IsNotFound(err error) bool {
	return apierrors.IsNotFound(err)
}
