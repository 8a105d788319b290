package model

import (
	"instancectl/internal/store"
	"instancectl/pkg/logging"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// StateChangeMsg carries a store notification into the update loop.
type StateChangeMsg struct {
	Change store.StateChange
}

// NewLogEntryMsg carries a log entry from the logging channel.
type NewLogEntryMsg struct {
	Entry logging.LogEntry
}

// ClearStatusBarMsg clears the status bar message.
type ClearStatusBarMsg struct{}

// ---- Session results ----

type AuthResultMsg struct {
	Err error
}

type CookieCheckResultMsg struct {
	Err error
}

type LogoutResultMsg struct {
	Err error
}

type ExpireSessionResultMsg struct {
	Err error
}

// ---- Instance results ----

type InstanceLoadedMsg struct {
	DefaultValues  string
	DeployedValues string
	Err            error
}

type DeployResultMsg struct {
	Object *unstructured.Unstructured
	Err    error
}
