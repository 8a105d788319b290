package app

import (
	"context"
	"fmt"
	"io"

	"instancectl/internal/kube"
	"instancectl/internal/session"
	"instancectl/internal/tui/controller"
	"instancectl/internal/tui/design"
	"instancectl/internal/tui/model"
	"instancectl/pkg/logging"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// instanceBackend serves one target to the TUI. Unauthorized results are
// left to the TUI, which expires the session itself.
type instanceBackend struct {
	services *Services
	target   kube.Target
}

func (b instanceBackend) LoadInstance(ctx context.Context) (string, string, error) {
	return b.services.LoadInstance(ctx, b.target)
}

func (b instanceBackend) Deploy(ctx context.Context, u *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	return b.services.Apply(ctx, u)
}

// runCLIMode prints the draft the editor would open with, so it can be edited
// offline and applied with `instancectl deploy -f`.
func runCLIMode(ctx context.Context, config *Config, services *Services, out io.Writer) error {
	logging.Info("CLI", "Running in no-TUI mode.")

	if services.Store.Auth().Phase() != session.PhaseAuthenticated {
		return fmt.Errorf("no active session, run `instancectl login` first")
	}

	f, err := services.NewForm(ctx, config.Target, nil)
	if err != nil {
		services.expireOnUnauthorized(ctx, err)
		logging.Error("CLI", err, "Failed to load %s/%s", config.Target.Kind, config.Target.Name)
		return err
	}

	logging.Info("CLI", "Submitting this draft will %s %s/%s", f.DeploymentEvent(), config.Target.Kind, config.Target.Name)
	_, err = io.WriteString(out, f.Values())
	return err
}

// runTUIMode executes the interactive terminal UI mode
func runTUIMode(ctx context.Context, config *Config, services *Services) error {
	logging.Info("CLI", "Starting TUI mode...")

	// Initialize design system for TUI (dark mode by default)
	design.Initialize(true)

	// Switch logging to channel-based system for TUI integration
	logLevel := logging.LevelInfo
	if config.Debug {
		logLevel = logging.LevelDebug
	}
	logChan := logging.InitForTUI(logLevel)
	defer logging.CloseTUIChannel()

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go services.Watcher.Run(watchCtx)

	p, err := controller.NewProgram(model.TUIConfig{
		DebugMode:          config.Debug,
		Target:             config.Target,
		DiffContext:        services.Config.Form.DiffContext,
		CheckCookieOnStart: services.Config.Auth.OIDC.Enabled && !services.Store.Auth().Authenticated,
		Session:            services.Session,
		Instance:           instanceBackend{services: services, target: config.Target},
		Store:              services.Store,
		LogChannel:         logChan,
	})
	if err != nil {
		logging.Error("TUI-Lifecycle", err, "Error creating TUI program")
		return err
	}

	// Run the TUI until user exits
	if _, err := p.Run(); err != nil {
		logging.Error("TUI-Lifecycle", err, "Error running TUI program")
		return err
	}
	logging.Info("TUI-Lifecycle", "TUI exited.")

	return nil
}
