package tcruntime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/errdefs"
	"github.com/sethvargo/go-retry"
	"github.com/testcontainers/testcontainers-go"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
)

var errStillRunning = errors.New("container still running")

type instance struct {
	ctr          testcontainers.Container
	pollInterval time.Duration
}

var _ ports.ContainerInstance = (*instance)(nil)

func (c *instance) ID() string {
	return c.ctr.GetContainerID()
}

func (c *instance) Start(ctx context.Context) error {
	if err := c.ctr.Start(ctx); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	return nil
}

// Logs returns the combined output; testcontainers does not keep the streams apart.
func (c *instance) Logs(ctx context.Context) (stdout, stderr string, err error) {
	reader, err := c.ctr.Logs(ctx)
	if err != nil {
		return "", "", fmt.Errorf("fetch logs: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("read logs: %w", err)
	}
	return string(data), "", nil
}

func (c *instance) Status(ctx context.Context) (fixture.ContainerStatus, error) {
	state, err := c.ctr.State(ctx)
	if err != nil {
		return fixture.ContainerStatus{}, fmt.Errorf("inspect container: %w", err)
	}
	return fixture.ContainerStatus{
		Running:   state.Running || state.Restarting,
		ExitCode:  int64(state.ExitCode),
		OOMKilled: state.OOMKilled,
	}, nil
}

func (c *instance) Wait(ctx context.Context) (int64, error) {
	var exitCode int64 = -1
	err := retry.Do(ctx, retry.NewConstant(c.pollInterval), func(ctx context.Context) error {
		status, err := c.Status(ctx)
		if err != nil {
			return err
		}
		if status.Running {
			return retry.RetryableError(errStillRunning)
		}
		exitCode = status.ExitCode
		return nil
	})
	if err != nil {
		return -1, fmt.Errorf("wait for container: %w", err)
	}
	return exitCode, nil
}

func (c *instance) CopyFileFromContainer(ctx context.Context, path string) ([]byte, error) {
	reader, err := c.ctr.CopyFileFromContainer(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("copy from container: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read file contents: %w", err)
	}
	return data, nil
}

func (c *instance) Stop(ctx context.Context, timeout time.Duration) error {
	var t *time.Duration
	if timeout > 0 {
		t = &timeout
	}
	if err := c.ctr.Stop(ctx, t); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("stop container: %w", err)
	}
	return nil
}

func (c *instance) Remove(ctx context.Context) error {
	if err := c.ctr.Terminate(ctx); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("remove container: %w", err)
	}
	return nil
}
