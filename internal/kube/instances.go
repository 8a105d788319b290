package kube

import (
	"context"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/yaml"
)

// ExamplesAnnotation holds the JSON array of example instances an operator
// ships with its ClusterServiceVersion.
const ExamplesAnnotation = "alm-examples"

// ClusterServiceVersionGVR identifies OLM ClusterServiceVersions.
var ClusterServiceVersionGVR = schema.GroupVersionResource{
	Group:    "operators.coreos.com",
	Version:  "v1alpha1",
	Resource: "clusterserviceversions",
}

// Target identifies the instance being edited.
type Target struct {
	APIVersion string
	Kind       string
	Name       string
	Namespace  string
	// CSV is the ClusterServiceVersion that provides example values; empty
	// means there are no defaults.
	CSV string
}

// GVK returns the target's GroupVersionKind.
func (t Target) GVK() schema.GroupVersionKind {
	return schema.FromAPIVersionAndKind(t.APIVersion, t.Kind)
}

// InstanceSource reads default and deployed values for an instance.
type InstanceSource struct {
	clients Clients
}

// NewInstanceSource creates an InstanceSource.
func NewInstanceSource(clients Clients) *InstanceSource {
	return &InstanceSource{clients: clients}
}

// DefaultValues returns the example for kind from csvName's alm-examples
// annotation as YAML. A missing CSV, annotation or example yields "".
func (s *InstanceSource) DefaultValues(ctx context.Context, namespace, csvName, kind string) (string, error) {
	if csvName == "" {
		return "", nil
	}
	csv, err := s.clients.Dynamic.Resource(ClusterServiceVersionGVR).Namespace(namespace).Get(ctx, csvName, metav1.GetOptions{})
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get ClusterServiceVersion %s/%s: %w", namespace, csvName, err)
	}

	raw, ok := csv.GetAnnotations()[ExamplesAnnotation]
	if !ok || raw == "" {
		return "", nil
	}
	var examples []map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &examples); err != nil {
		return "", fmt.Errorf("parse %s annotation of %s: %w", ExamplesAnnotation, csvName, err)
	}
	for _, ex := range examples {
		if k, _ := ex["kind"].(string); k == kind {
			return toYAML(ex)
		}
	}
	return "", nil
}

// DeployedValues returns the live object as YAML with server-populated fields
// removed. A missing object yields "".
func (s *InstanceSource) DeployedValues(ctx context.Context, namespace string, gvk schema.GroupVersionKind, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	mapping, err := s.clients.Mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return "", fmt.Errorf("rest mapping %s: %w", gvk.String(), err)
	}
	obj, err := resourceInterfaceFor(s.clients.Dynamic, mapping.Resource, namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get %s %s/%s: %w", gvk.Kind, namespace, name, err)
	}
	StripServerFields(obj)
	return toYAML(obj.Object)
}

// StripServerFields removes the fields the API server owns, leaving what a
// user would write.
func StripServerFields(u *unstructured.Unstructured) {
	unstructured.RemoveNestedField(u.Object, "status")
	for _, f := range []string{"managedFields", "resourceVersion", "uid", "creationTimestamp", "generation", "selfLink"} {
		unstructured.RemoveNestedField(u.Object, "metadata", f)
	}
}

func toYAML(obj map[string]interface{}) (string, error) {
	out, err := yaml.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("render yaml: %w", err)
	}
	return string(out), nil
}
