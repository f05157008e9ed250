package certgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
)

const (
	stopTimeout    = 10 * time.Second
	disposeTimeout = 30 * time.Second
)

// Container is a handle to one cert-generator container created by Builder.Build.
// It is safe for concurrent use.
type Container struct {
	config fixture.ContainerConfiguration
	logger *slog.Logger
	id     string

	mu    sync.Mutex
	inst  ports.ContainerInstance
	state fixture.State
	// cancelStart ends an in-flight Start; set only while Start runs.
	cancelStart context.CancelCauseFunc
}

func newContainer(inst ports.ContainerInstance, cfg fixture.ContainerConfiguration, logger *slog.Logger) *Container {
	return &Container{
		config: cfg,
		logger: logger,
		id:     inst.ID(),
		inst:   inst,
		state:  fixture.StateUnstarted,
	}
}

// ID returns the runtime's identifier for the container.
func (c *Container) ID() string {
	return c.id
}

// State reports where the container is in its lifecycle.
func (c *Container) State() fixture.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Configuration returns a copy of the configuration the container was created with.
func (c *Container) Configuration() fixture.ContainerConfiguration {
	return c.config.Clone()
}

// Start starts the container and blocks until the generator logs its ready message,
// the startup timeout elapses, or ctx is done. On failure the container is disposed
// and the state becomes Failed. A concurrent Stop ends the wait with ErrDisposed.
//
// Generated files must not be read from the mounted directory before Start returns.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != fixture.StateUnstarted {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("start %s container: %w", state, ErrNotUnstarted)
	}
	c.state = fixture.StateStarting
	inst := c.inst
	ctx, cancel := context.WithCancelCause(ctx)
	c.cancelStart = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.cancelStart = nil
		c.mu.Unlock()
		cancel(nil)
	}()

	c.logger.Info("starting container", "timeout", c.config.StartupTimeout)
	begin := time.Now()

	err := inst.Start(ctx)
	switch {
	case errors.Is(context.Cause(ctx), ErrDisposed):
		err = fmt.Errorf("start container: %w", ErrDisposed)
	case err != nil:
		err = &ContainerCreationError{Op: "start container", Err: err}
	default:
		err = c.awaitReadiness(ctx, inst)
	}
	if err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	if c.state != fixture.StateStarting {
		c.mu.Unlock()
		return fmt.Errorf("start container: %w", ErrDisposed)
	}
	c.state = fixture.StateReady
	c.mu.Unlock()

	c.logger.Info("container ready", "elapsed", time.Since(begin).Round(time.Millisecond))
	return nil
}

func (c *Container) awaitReadiness(ctx context.Context, inst ports.ContainerInstance) error {
	timeout := c.config.StartupTimeout
	cond := c.config.Readiness

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		lastLogs string
		lastErr  error
	)
	backoff := retry.WithMaxDuration(timeout, retry.NewConstant(c.config.PollInterval))
	err := retry.Do(waitCtx, backoff, func(ctx context.Context) error {
		if c.disposed(inst) {
			return ErrDisposed
		}

		ready, logs, err := c.checkLogs(ctx, inst, cond)
		if err != nil {
			lastErr = err
			return retry.RetryableError(err)
		}
		lastLogs = logs
		if ready {
			return nil
		}

		status, err := inst.Status(ctx)
		if err != nil {
			lastErr = err
			return retry.RetryableError(err)
		}
		lastErr = nil
		if status.Running {
			return retry.RetryableError(errNotReady)
		}

		// the process may have logged the message and exited between the two calls
		ready, logs, err = c.checkLogs(ctx, inst, cond)
		if err == nil && ready {
			return nil
		}
		if err == nil {
			lastLogs = logs
		}
		return &ContainerCreationError{
			Op:  "await readiness",
			Err: fmt.Errorf("%w (exit code %d)", ErrExitedBeforeReady, status.ExitCode),
		}
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDisposed), errors.Is(context.Cause(ctx), ErrDisposed):
		return fmt.Errorf("await readiness: %w", ErrDisposed)
	case ctx.Err() != nil:
		return fmt.Errorf("await readiness: %w", ctx.Err())
	case errors.As(err, new(*ContainerCreationError)):
		return err
	default:
		c.logger.Debug("readiness wait ended", "error", err)
		return &ReadinessTimeoutError{Timeout: timeout, Condition: cond.String(), Logs: lastLogs, Cause: lastErr}
	}
}

func (c *Container) disposed(inst ports.ContainerInstance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inst != inst
}

func (c *Container) checkLogs(ctx context.Context, inst ports.ContainerInstance, cond fixture.ReadinessCondition) (bool, string, error) {
	stdout, stderr, err := inst.Logs(ctx)
	if err != nil {
		return false, "", err
	}
	return cond.Satisfied(stdout, stderr), stdout + stderr, nil
}

func (c *Container) fail(cause error) {
	c.mu.Lock()
	if c.state == fixture.StateStarting {
		c.state = fixture.StateFailed
	}
	inst := c.inst
	c.inst = nil
	c.mu.Unlock()

	if inst == nil {
		c.logger.Debug("start ended after the container was disposed", "error", cause)
		return
	}
	c.logger.Warn("container failed to start", "error", cause)

	ctx, cancel := context.WithTimeout(context.Background(), disposeTimeout)
	defer cancel()
	if err := dispose(ctx, inst); err != nil {
		c.logger.Warn("failed to dispose container after start failure", "error", err)
	}
}

// Stop stops and removes the container. It is safe to call more than once, before
// Start, during Start and after a failed Start; only the first call reaches the runtime.
func (c *Container) Stop(ctx context.Context) error {
	c.mu.Lock()
	inst := c.inst
	c.inst = nil
	c.state = fixture.StateStopped
	cancelStart := c.cancelStart
	c.mu.Unlock()

	if cancelStart != nil {
		cancelStart(ErrDisposed)
	}

	if inst == nil {
		return nil
	}

	c.logger.Debug("stopping container")
	if err := dispose(ctx, inst); err != nil {
		return &DisposalError{ContainerID: c.id, Err: err}
	}
	c.logger.Debug("container removed")
	return nil
}

func dispose(ctx context.Context, inst ports.ContainerInstance) (retErr error) {
	retErr = multierr.Append(retErr, inst.Stop(ctx, stopTimeout))
	retErr = multierr.Append(retErr, inst.Remove(ctx))
	return retErr
}

// Logs returns the output the container has produced so far.
func (c *Container) Logs(ctx context.Context) (stdout, stderr string, err error) {
	inst, err := c.instance()
	if err != nil {
		return "", "", err
	}
	return inst.Logs(ctx)
}

// Wait blocks until the generator process exits and returns its exit code.
func (c *Container) Wait(ctx context.Context) (int64, error) {
	inst, err := c.instance()
	if err != nil {
		return -1, err
	}
	return inst.Wait(ctx)
}

// Certificate reads name.crt and name.key from the certificate directory inside the
// container. It works for host and volume mounts alike.
func (c *Container) Certificate(ctx context.Context, name string) (crt, key []byte, err error) {
	if name == "" {
		return nil, nil, &ConfigurationError{Field: "certificate name", Reason: "must not be empty"}
	}
	inst, err := c.instance()
	if err != nil {
		return nil, nil, err
	}

	crt, err = inst.CopyFileFromContainer(ctx, path.Join(fixture.CertsPath, name+".crt"))
	if err != nil {
		return nil, nil, fmt.Errorf("read certificate %s: %w", name, err)
	}
	key, err = inst.CopyFileFromContainer(ctx, path.Join(fixture.CertsPath, name+".key"))
	if err != nil {
		return nil, nil, fmt.Errorf("read key %s: %w", name, err)
	}
	return crt, key, nil
}

func (c *Container) instance() (ports.ContainerInstance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inst == nil {
		return nil, fmt.Errorf("container %s: %w", shortID(c.id), ErrDisposed)
	}
	return c.inst, nil
}
