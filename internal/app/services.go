package app

import (
	"context"
	"fmt"

	"instancectl/internal/auth"
	"instancectl/internal/config"
	"instancectl/internal/form"
	"instancectl/internal/kube"
	"instancectl/internal/namespace"
	"instancectl/internal/session"
	"instancectl/internal/store"
	"instancectl/pkg/logging"

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

const servicesSubsystem = "Services"

// Services holds the collaborators shared by the CLI commands, the TUI and
// the MCP server.
type Services struct {
	Config  config.InstancectlConfig
	Tokens  *auth.FileTokenStore
	Store   *store.Store
	Session *session.Controller
	Watcher *session.Watcher

	// Replaced in tests.
	restConfig   func(cfg config.AuthConfig, bearerToken string) (*rest.Config, error)
	newClients   func(rc *rest.Config) (kube.Clients, error)
	newClientset func(rc *rest.Config) (kubernetes.Interface, error)
}

// InitializeServices builds the session collaborators, seeds the store with
// whatever session an earlier run left behind and wires the controller.
func InitializeServices(cfg *Config) (*Services, error) {
	ic := *cfg.InstancectlConfig

	tokens, err := auth.NewFileTokenStore(ic.Session.StateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open session state: %w", err)
	}

	var probe session.CookieProbe
	if ic.Auth.OIDC.IssuerURL != "" {
		logging.Debug(servicesSubsystem, "Verifying session cookies as ID tokens from %s", ic.Auth.OIDC.IssuerURL)
		probe = auth.NewIDTokenProbe(ic.Auth.OIDC, tokens)
	} else {
		probe = auth.NewHTTPCookieProbe(ic.Auth.OIDC, tokens, nil)
	}

	return newServices(ic, tokens, auth.NewKubeTokenValidator(ic.Auth), probe, auth.NewLogoutRedirector(tokens, nil))
}

func newServices(ic config.InstancectlConfig, tokens *auth.FileTokenStore, validator session.TokenValidator, probe session.CookieProbe, clearer session.SessionClearer) (*Services, error) {
	initial := session.InitialState(tokens)
	st := store.New(store.AppState{
		Auth:      initial,
		Namespace: namespace.State{Current: initial.DefaultNamespace},
		Config:    ic,
	})

	ctrl, err := session.NewController(session.Dependencies{
		Dispatcher: st,
		Validator:  validator,
		Tokens:     tokens,
		Clearer:    clearer,
		Probe:      probe,
		Config:     st,
	})
	if err != nil {
		return nil, err
	}
	if initial.Authenticated {
		mode := "token"
		if initial.OIDC {
			mode = "OIDC"
		}
		logging.Info(servicesSubsystem, "Restored %s session (namespace %q)", mode, initial.DefaultNamespace)
	}

	return &Services{
		Config:     ic,
		Tokens:     tokens,
		Store:      st,
		Session:    ctrl,
		Watcher:    session.NewWatcher(ctrl, st.Auth, ic.Session.CheckInterval),
		restConfig: kube.NewRESTConfig,
		newClients: kube.NewClients,
		newClientset: func(rc *rest.Config) (kubernetes.Interface, error) {
			return kubernetes.NewForConfig(rc)
		},
	}, nil
}

// sessionRESTConfig builds a REST config for the current session: the stored
// bearer token in token mode, the auth proxy cookie in OIDC mode.
func (s *Services) sessionRESTConfig() (*rest.Config, error) {
	rc, err := s.restConfig(s.Config.Auth, s.Tokens.Token())
	if err != nil {
		return nil, err
	}
	if s.Tokens.IsUsingOIDC() {
		name := s.Config.Auth.OIDC.CookieName
		if name == "" {
			name = config.DefaultCookieName
		}
		kube.WithSessionCookie(rc, name, s.Tokens.SessionCookie())
	}
	return rc, nil
}

func (s *Services) clients() (kube.Clients, error) {
	rc, err := s.sessionRESTConfig()
	if err != nil {
		return kube.Clients{}, err
	}
	return s.newClients(rc)
}

// namespaceFor returns ns, or the session's current namespace when ns is empty.
func (s *Services) namespaceFor(ns string) string {
	if ns != "" {
		return ns
	}
	if current := s.Store.GetState().Namespace.Current; current != "" {
		return current
	}
	return "default"
}

// LoadInstance reads the target's example defaults and its deployed values
// concurrently. A target without a name has no deployed values.
func (s *Services) LoadInstance(ctx context.Context, target kube.Target) (defaults, deployed string, err error) {
	clients, err := s.clients()
	if err != nil {
		return "", "", err
	}
	src := kube.NewInstanceSource(clients)
	ns := s.namespaceFor(target.Namespace)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := src.DefaultValues(gctx, ns, target.CSV, target.Kind)
		if err != nil {
			return fmt.Errorf("failed to load default values: %w", err)
		}
		defaults = v
		return nil
	})
	if target.Name != "" {
		g.Go(func() error {
			v, err := src.DeployedValues(gctx, ns, target.GVK(), target.Name)
			if err != nil {
				return fmt.Errorf("failed to load deployed values: %w", err)
			}
			deployed = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	logging.Debug(servicesSubsystem, "Loaded %s/%s in %s (defaults: %t, deployed: %t)",
		target.Kind, target.Name, ns, defaults != "", deployed != "")
	return defaults, deployed, nil
}

func (s *Services) newForm(defaults, deployed string, deploy form.DeployFunc) *form.Controller {
	return form.NewController(defaults, deployed, deploy, form.WithDiffContext(s.Config.Form.DiffContext))
}

// NewForm loads the target and returns a form over its values.
func (s *Services) NewForm(ctx context.Context, target kube.Target, deploy form.DeployFunc) (*form.Controller, error) {
	defaults, deployed, err := s.LoadInstance(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.newForm(defaults, deployed, deploy), nil
}

// Validate runs text through form submission without deploying and returns
// the parsed object.
func (s *Services) Validate(text string) (*unstructured.Unstructured, error) {
	var submitted *unstructured.Unstructured
	f := s.newForm("", "", func(u *unstructured.Unstructured) { submitted = u })
	f.OnDraftChange(text)
	if err := f.OnSubmit(); err != nil {
		return nil, err
	}
	return submitted, nil
}

// TargetFor returns the target that u would be applied to.
func TargetFor(u *unstructured.Unstructured) kube.Target {
	return kube.Target{
		APIVersion: u.GetAPIVersion(),
		Kind:       u.GetKind(),
		Name:       u.GetName(),
		Namespace:  u.GetNamespace(),
	}
}

// Diff compares text with the target's deployed values, or with its example
// defaults when nothing is deployed. text is not validated.
func (s *Services) Diff(ctx context.Context, text string, target kube.Target) (form.DiffView, error) {
	defaults, deployed, err := s.LoadInstance(ctx, target)
	if err != nil {
		s.expireOnUnauthorized(ctx, err)
		return form.DiffView{}, err
	}
	f := s.newForm(defaults, deployed, nil)
	f.OnDraftChange(text)
	return f.Diff(), nil
}

// DiffAgainstDeployed validates text and diffs it against the live object it
// names. Nothing deployed yields an install diff against an empty base.
func (s *Services) DiffAgainstDeployed(ctx context.Context, text string) (form.DiffView, error) {
	u, err := s.Validate(text)
	if err != nil {
		return form.DiffView{}, err
	}
	return s.Diff(ctx, text, TargetFor(u))
}

// Apply server-side applies u into the session namespace when u names none.
func (s *Services) Apply(ctx context.Context, u *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	clients, err := s.clients()
	if err != nil {
		return nil, err
	}
	d := kube.NewDeployer(clients, kube.DeployOptions{
		FieldManager:   s.Config.Form.FieldManager,
		ForceConflicts: s.Config.Form.ForceConflicts,
	})
	return d.Deploy(ctx, u, s.namespaceFor(""))
}

// Deploy is Apply that also expires the session when the cluster rejects its
// credentials.
func (s *Services) Deploy(ctx context.Context, u *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	applied, err := s.Apply(ctx, u)
	if err != nil {
		s.expireOnUnauthorized(ctx, err)
		return nil, err
	}
	return applied, nil
}

func (s *Services) expireOnUnauthorized(ctx context.Context, err error) {
	if !kube.IsUnauthorized(err) {
		return
	}
	logging.Warn(servicesSubsystem, "Cluster rejected the session credentials, expiring session")
	if _, expErr := s.Session.ExpireSession(ctx); expErr != nil {
		logging.Error(servicesSubsystem, expErr, "Failed to expire session")
	}
}

// RefreshNamespaces lists the namespaces visible to the session into the store.
func (s *Services) RefreshNamespaces(ctx context.Context) error {
	rc, err := s.sessionRESTConfig()
	if err != nil {
		return err
	}
	cs, err := s.newClientset(rc)
	if err != nil {
		return fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	err = namespace.NewLister(cs).Fetch(ctx, s.Store, s.Store.GetState().Namespace.Current)
	s.expireOnUnauthorized(ctx, err)
	return err
}
