package auth

import (
	"context"
	"fmt"

	"instancectl/internal/config"
	"instancectl/internal/kube"

	authenticationv1 "k8s.io/api/authentication/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ClientFactory builds a clientset that authenticates with token.
type ClientFactory func(token string) (kubernetes.Interface, error)

// KubeTokenValidator checks a bearer token by asking the API server who it
// belongs to.
type KubeTokenValidator struct {
	newClient ClientFactory
}

// NewKubeTokenValidator validates tokens against the cluster cfg points at.
func NewKubeTokenValidator(cfg config.AuthConfig) *KubeTokenValidator {
	return NewKubeTokenValidatorWithFactory(func(token string) (kubernetes.Interface, error) {
		rc, err := kube.NewRESTConfig(cfg, token)
		if err != nil {
			return nil, err
		}
		return kubernetes.NewForConfig(rc)
	})
}

// NewKubeTokenValidatorWithFactory creates a validator using newClient.
func NewKubeTokenValidatorWithFactory(newClient ClientFactory) *KubeTokenValidator {
	return &KubeTokenValidator{newClient: newClient}
}

// ValidateToken returns nil when the API server accepts token, ErrUnauthorized
// when it rejects it, and a wrapped error for anything else.
func (v *KubeTokenValidator) ValidateToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}
	client, err := v.newClient(token)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	if _, err := client.AuthenticationV1().SelfSubjectReviews().Create(ctx, &authenticationv1.SelfSubjectReview{}, metav1.CreateOptions{}); err != nil {
		if kube.IsUnauthorized(err) {
			return ErrUnauthorized
		}
		return fmt.Errorf("failed to review token: %w", err)
	}
	return nil
}
