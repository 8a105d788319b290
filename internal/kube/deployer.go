package kube

import (
	"context"
	"encoding/json"
	"fmt"

	"instancectl/pkg/logging"

	meta "k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
)

const deployerSubsystem = "Deployer"

// DeployOptions configures server-side apply.
type DeployOptions struct {
	// FieldManager sets the field manager for SSA; defaults to "instancectl".
	FieldManager string
	// ForceConflicts takes ownership of fields other managers hold.
	ForceConflicts bool
}

func (o *DeployOptions) defaults() {
	if o.FieldManager == "" {
		o.FieldManager = "instancectl"
	}
}

// Clients bundles the dynamic client and REST mapper shared by Deployer and InstanceSource.
type Clients struct {
	Dynamic dynamic.Interface
	Mapper  meta.RESTMapper
}

// NewClients builds a dynamic client and a discovery-backed REST mapper for rc.
func NewClients(rc *rest.Config) (Clients, error) {
	dc, err := discovery.NewDiscoveryClientForConfig(rc)
	if err != nil {
		return Clients{}, fmt.Errorf("create discovery client: %w", err)
	}
	dy, err := dynamic.NewForConfig(rc)
	if err != nil {
		return Clients{}, fmt.Errorf("create dynamic client: %w", err)
	}
	return Clients{
		Dynamic: dy,
		Mapper:  restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(dc)),
	}, nil
}

// Deployer installs or upgrades a single resource with server-side apply.
type Deployer struct {
	clients Clients
	opts    DeployOptions
}

// NewDeployer creates a Deployer.
func NewDeployer(clients Clients, opts DeployOptions) *Deployer {
	opts.defaults()
	return &Deployer{clients: clients, opts: opts}
}

// Deploy applies u. Namespaced kinds without metadata.namespace land in
// defaultNamespace, or "default" when that is empty too. u is updated in place
// with the namespace it was applied to.
func (d *Deployer) Deploy(ctx context.Context, u *unstructured.Unstructured, defaultNamespace string) (*unstructured.Unstructured, error) {
	if u.GetKind() == "" || u.GetAPIVersion() == "" {
		return nil, fmt.Errorf("object is missing apiVersion or kind")
	}
	gvk := schema.FromAPIVersionAndKind(u.GetAPIVersion(), u.GetKind())
	mapping, err := d.clients.Mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, fmt.Errorf("rest mapping %s: %w", gvk.String(), err)
	}

	if mapping.Scope.Name() == meta.RESTScopeNameNamespace && u.GetNamespace() == "" {
		ns := defaultNamespace
		if ns == "" {
			ns = "default"
		}
		u.SetNamespace(ns)
	}
	if u.GetName() == "" {
		return nil, fmt.Errorf("object %s missing metadata.name", gvk.String())
	}

	body, err := json.Marshal(u.Object)
	if err != nil {
		return nil, fmt.Errorf("marshal %s/%s: %w", u.GetKind(), u.GetName(), err)
	}
	ri := resourceInterfaceFor(d.clients.Dynamic, mapping.Resource, u.GetNamespace())
	force := d.opts.ForceConflicts

	applied, err := ri.Patch(ctx, u.GetName(), types.ApplyPatchType, body, metav1.PatchOptions{FieldManager: d.opts.FieldManager, Force: &force})
	if err != nil {
		logging.Error(deployerSubsystem, err, "Apply %s %s/%s failed", u.GetKind(), u.GetNamespace(), u.GetName())
		return nil, fmt.Errorf("apply %s %s: %w", u.GetKind(), u.GetName(), err)
	}
	logging.Info(deployerSubsystem, "Applied %s %s/%s", u.GetKind(), u.GetNamespace(), u.GetName())
	return applied, nil
}

// resourceInterfaceFor returns the dynamic resource interface for gvr/namespace.
func resourceInterfaceFor(dy dynamic.Interface, gvr schema.GroupVersionResource, namespace string) dynamic.ResourceInterface {
	if namespace == "" {
		return dy.Resource(gvr)
	}
	return dy.Resource(gvr).Namespace(namespace)
}
