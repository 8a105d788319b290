// Package kube is instancectl's Kubernetes layer.
//
// It builds REST configs from kubeconfig with an optional bearer token
// override, applies edited resources with server-side apply, and reads the
// two inputs the instance form starts from:
//
//   - Default values: the example for a kind, taken from the
//     alm-examples annotation of the operator's ClusterServiceVersion.
//   - Deployed values: the live object, stripped of server-populated fields.
//
// Both are rendered as YAML so they can be placed directly into the form draft.
//
// Unauthorized responses are detected with IsUnauthorized so callers can
// expire the session.
package kube
