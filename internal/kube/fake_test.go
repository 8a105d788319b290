package kube

import (
	meta "k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

var (
	widgetGVK     = schema.GroupVersionKind{Group: "example.com", Version: "v1", Kind: "Widget"}
	widgetGVR     = schema.GroupVersionResource{Group: "example.com", Version: "v1", Resource: "widgets"}
	clusterGVK    = schema.GroupVersionKind{Group: "example.com", Version: "v1", Kind: "Gadget"}
	clusterGVR    = schema.GroupVersionResource{Group: "example.com", Version: "v1", Resource: "gadgets"}
	csvGVK        = schema.GroupVersionKind{Group: "operators.coreos.com", Version: "v1alpha1", Kind: "ClusterServiceVersion"}
	listKindsByGR = map[schema.GroupVersionResource]string{
		widgetGVR:                "WidgetList",
		clusterGVR:               "GadgetList",
		ClusterServiceVersionGVR: "ClusterServiceVersionList",
	}
)

func newFakeClients(objs ...runtime.Object) (Clients, *dynamicfake.FakeDynamicClient) {
	mapper := meta.NewDefaultRESTMapper([]schema.GroupVersion{widgetGVK.GroupVersion(), csvGVK.GroupVersion()})
	mapper.Add(widgetGVK, meta.RESTScopeNamespace)
	mapper.Add(clusterGVK, meta.RESTScopeRoot)
	mapper.Add(csvGVK, meta.RESTScopeNamespace)

	dy := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), listKindsByGR, objs...)
	return Clients{Dynamic: dy, Mapper: mapper}, dy
}

func newWidget(namespace, name string, spec map[string]interface{}) *unstructured.Unstructured {
	u := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "example.com/v1",
		"kind":       "Widget",
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": namespace,
		},
	}}
	if spec != nil {
		u.Object["spec"] = spec
	}
	return u
}
