package certgen

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrExitedBeforeReady is reported when the generator exits without logging the ready message.
	ErrExitedBeforeReady = errors.New("container exited before becoming ready")

	// ErrNotUnstarted is returned by Start on a container that was already started or stopped.
	ErrNotUnstarted = errors.New("container is not in the unstarted state")

	// ErrDisposed is returned when the container was stopped while the operation was in progress
	// or before it began.
	ErrDisposed = errors.New("container was disposed")

	errNotReady = errors.New("ready message not logged yet")
)

// ConfigurationError reports invalid builder input. It is returned before any runtime call.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("certgen: invalid %s: %s", e.Field, e.Reason)
}

// ContainerCreationError reports a runtime failure while pulling, creating or starting
// the container.
type ContainerCreationError struct {
	Op  string
	Err error
}

func (e *ContainerCreationError) Error() string {
	return fmt.Sprintf("certgen: %s: %v", e.Op, e.Err)
}

func (e *ContainerCreationError) Unwrap() error {
	return e.Err
}

// ReadinessTimeoutError reports that the ready message was not logged in time.
type ReadinessTimeoutError struct {
	Timeout   time.Duration
	Condition string
	// Logs holds the container output seen at the last check, if any.
	Logs string
	// Cause is the runtime error of the last check, nil when the checks succeeded
	// but the message never appeared.
	Cause error
}

func (e *ReadinessTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("certgen: %s not observed within %s: %v", e.Condition, e.Timeout, e.Cause)
	}
	return fmt.Sprintf("certgen: %s not observed within %s", e.Condition, e.Timeout)
}

func (e *ReadinessTimeoutError) Unwrap() error {
	return e.Cause
}

// DisposalError reports a failure to stop or remove a container.
type DisposalError struct {
	ContainerID string
	Err         error
}

func (e *DisposalError) Error() string {
	return fmt.Sprintf("certgen: dispose container %s: %v", e.ContainerID, e.Err)
}

func (e *DisposalError) Unwrap() error {
	return e.Err
}
