package namespace

import (
	"context"
	"errors"
	"testing"

	"instancectl/internal/action"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func TestReduce(t *testing.T) {
	s := State{}

	s = Reduce(s, SetNamespaceAction{Namespace: "team-a"})
	assert.Equal(t, "team-a", s.Current)

	s = Reduce(s, ReceiveNamespacesAction{Namespaces: []string{"zeta", "alpha"}})
	assert.Equal(t, []string{"alpha", "zeta"}, s.Namespaces)

	s = Reduce(s, ErrorNamespacesAction{Message: "boom"})
	assert.Equal(t, "boom", s.ErrorMsg)
	assert.Equal(t, "team-a", s.Current)

	s = Reduce(s, ClearNamespacesAction{})
	assert.Equal(t, State{}, s)
}

func TestReduce_DoesNotAliasInput(t *testing.T) {
	in := []string{"b", "a"}
	s := Reduce(State{}, ReceiveNamespacesAction{Namespaces: in})
	assert.Equal(t, []string{"b", "a"}, in)
	assert.Equal(t, []string{"a", "b"}, s.Namespaces)
}

func TestLister_Fetch(t *testing.T) {
	client := fake.NewSimpleClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "kube-system"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
	)
	rec := &action.Recorder{}

	err := NewLister(client).Fetch(context.Background(), rec, "default")
	require.NoError(t, err)

	actions := rec.Actions()
	require.Len(t, actions, 1)
	got, ok := actions[0].(ReceiveNamespacesAction)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"default", "kube-system"}, got.Namespaces)
}

func TestLister_FetchForbiddenFallsBackToCurrent(t *testing.T) {
	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "namespaces", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewForbidden(schema.GroupResource{Resource: "namespaces"}, "", errors.New("nope"))
	})
	rec := &action.Recorder{}

	err := NewLister(client).Fetch(context.Background(), rec, "team-a")
	require.NoError(t, err)
	require.Len(t, rec.Actions(), 1)
	assert.Equal(t, ReceiveNamespacesAction{Namespaces: []string{"team-a"}}, rec.Actions()[0])
}

func TestLister_FetchError(t *testing.T) {
	client := fake.NewSimpleClientset()
	client.PrependReactor("list", "namespaces", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})
	rec := &action.Recorder{}

	err := NewLister(client).Fetch(context.Background(), rec, "")
	require.Error(t, err)
	require.Len(t, rec.Actions(), 1)
	errAction, ok := rec.Actions()[0].(ErrorNamespacesAction)
	require.True(t, ok)
	assert.Contains(t, errAction.Message, "connection refused")
}
