package namespace

import (
	"context"
	"fmt"

	"instancectl/internal/action"
	"instancectl/pkg/logging"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

const listerSubsystem = "Namespaces"

// Lister fetches the namespaces visible to the current session.
type Lister struct {
	client kubernetes.Interface
}

// NewLister creates a Lister backed by client.
func NewLister(client kubernetes.Interface) *Lister {
	return &Lister{client: client}
}

// Fetch lists namespaces and dispatches the outcome. Users that may not list
// namespaces still get their current namespace, so a 403 is not an error.
func (l *Lister) Fetch(ctx context.Context, d action.Dispatcher, current string) error {
	list, err := l.client.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		if apierrors.IsForbidden(err) && current != "" {
			logging.Debug(listerSubsystem, "Listing namespaces forbidden, falling back to %q", current)
			d.Dispatch(ReceiveNamespacesAction{Namespaces: []string{current}})
			return nil
		}
		wrapped := fmt.Errorf("list namespaces: %w", err)
		d.Dispatch(ErrorNamespacesAction{Message: wrapped.Error()})
		return wrapped
	}

	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	logging.Debug(listerSubsystem, "Received %d namespaces", len(names))
	d.Dispatch(ReceiveNamespacesAction{Namespaces: names})
	return nil
}
