package form

import (
	"instancectl/pkg/logging"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

const subsystem = "Form"

// DeployFunc receives a validated resource. What happens next is up to the caller.
type DeployFunc func(u *unstructured.Unstructured)

// Event says whether submitting installs a new instance or upgrades one.
type Event string

const (
	EventInstall Event = "install"
	EventUpgrade Event = "upgrade"
)

// Draft is the editable state of the form.
type Draft struct {
	Values           string
	ParseError       string
	RestoreModalOpen bool
}

// Controller owns a Draft and the two inputs it is reset from.
type Controller struct {
	draft          Draft
	defaultValues  string
	deployedValues string
	inputsSeen     bool
	deploy         DeployFunc
	diffContext    int
}

// Option configures a Controller.
type Option func(*Controller)

// WithDiffContext sets the number of context lines in Diff.
func WithDiffContext(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.diffContext = n
		}
	}
}

// NewController creates a form whose draft starts from deployedValues, or
// defaultValues when nothing is deployed.
func NewController(defaultValues, deployedValues string, deploy DeployFunc, opts ...Option) *Controller {
	c := &Controller{deploy: deploy, diffContext: 3}
	for _, o := range opts {
		o(c)
	}
	c.OnExternalValuesChange(defaultValues, deployedValues)
	return c
}

// OnDraftChange replaces the draft text. Nothing is validated until submit.
func (c *Controller) OnDraftChange(text string) {
	c.draft.Values = text
}

// OnExternalValuesChange resets the draft when either input changed since the
// last call. Calls with the same inputs leave the draft alone.
func (c *Controller) OnExternalValuesChange(defaultValues, deployedValues string) {
	if c.inputsSeen && defaultValues == c.defaultValues && deployedValues == c.deployedValues {
		return
	}
	c.inputsSeen = true
	c.defaultValues = defaultValues
	c.deployedValues = deployedValues
	if deployedValues != "" {
		c.draft.Values = deployedValues
	} else {
		c.draft.Values = defaultValues
	}
}

// OnSubmit validates the draft and hands it to the deploy callback. A rejected
// draft sets ParseError and returns the *ValidationError; the callback is not
// called.
func (c *Controller) OnSubmit() error {
	c.draft.ParseError = ""

	u, err := Parse(c.draft.Values)
	submissions.WithLabelValues(submissionResult(err)).Inc()
	if err != nil {
		c.draft.ParseError = err.Error()
		logging.Debug(subsystem, "Draft rejected: %s", c.draft.ParseError)
		return err
	}

	logging.Debug(subsystem, "Submitting %s %s (%s)", u.GetKind(), u.GetName(), c.DeploymentEvent())
	if c.deploy != nil {
		c.deploy(u)
	}
	return nil
}

// OnRestoreDefaults replaces the draft with the default values and closes the
// confirmation dialog.
func (c *Controller) OnRestoreDefaults() {
	c.draft.Values = c.defaultValues
	c.draft.RestoreModalOpen = false
}

// OpenRestoreModal asks for confirmation before restoring defaults.
func (c *Controller) OpenRestoreModal() {
	c.draft.RestoreModalOpen = true
}

// CloseRestoreModal dismisses the confirmation dialog.
func (c *Controller) CloseRestoreModal() {
	c.draft.RestoreModalOpen = false
}

func (c *Controller) Draft() Draft { return c.draft }
func (c *Controller) Values() string { return c.draft.Values }
func (c *Controller) ParseError() string { return c.draft.ParseError }
func (c *Controller) RestoreModalOpen() bool { return c.draft.RestoreModalOpen }
func (c *Controller) DefaultValues() string { return c.defaultValues }
func (c *Controller) DeployedValues() string { return c.deployedValues }

// DeploymentEvent is EventUpgrade when something is deployed, EventInstall otherwise.
func (c *Controller) DeploymentEvent() Event {
	if c.deployedValues != "" {
		return EventUpgrade
	}
	return EventInstall
}
