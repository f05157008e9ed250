package docker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
)

// instance is a single container created by Runtime.
type instance struct {
	cli dockerClient
	id  string
}

var _ ports.ContainerInstance = (*instance)(nil)

func (c *instance) ID() string {
	return c.id
}

func (c *instance) Start(ctx context.Context) error {
	if err := c.cli.ContainerStart(ctx, c.id, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	return nil
}

func (c *instance) Logs(ctx context.Context) (stdout, stderr string, err error) {
	stdout, stderr, err = c.fetchLogs(ctx)
	if err != nil {
		return "", "", fmt.Errorf("fetch logs: %w", err)
	}
	return stdout, stderr, nil
}

func (c *instance) Status(ctx context.Context) (fixture.ContainerStatus, error) {
	inspect, err := c.cli.ContainerInspect(ctx, c.id)
	if err != nil {
		return fixture.ContainerStatus{}, fmt.Errorf("inspect container: %w", err)
	}
	if inspect.ContainerJSONBase == nil || inspect.State == nil {
		return fixture.ContainerStatus{}, fmt.Errorf("inspect container: no state reported for %s", c.id)
	}

	return fixture.ContainerStatus{
		Running:   inspect.State.Running || inspect.State.Restarting,
		ExitCode:  int64(inspect.State.ExitCode),
		OOMKilled: inspect.State.OOMKilled,
	}, nil
}

func (c *instance) Wait(ctx context.Context) (int64, error) {
	status, err := c.waitForExit(ctx)
	if err != nil {
		return -1, err
	}
	return status.StatusCode, nil
}

func (c *instance) CopyFileFromContainer(ctx context.Context, path string) ([]byte, error) {
	return c.copyFileFromContainer(ctx, path)
}

func (c *instance) Stop(ctx context.Context, timeout time.Duration) error {
	opts := container.StopOptions{}
	if timeout > 0 {
		seconds := int(math.Ceil(timeout.Seconds()))
		opts.Timeout = &seconds
	}

	if err := c.cli.ContainerStop(ctx, c.id, opts); err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("stop container: %w", err)
	}
	return nil
}

func (c *instance) Remove(ctx context.Context) error {
	err := c.cli.ContainerRemove(ctx, c.id, container.RemoveOptions{Force: true, RemoveVolumes: true})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("remove container: %w", err)
	}
	return nil
}

func (c *instance) waitForExit(ctx context.Context) (*container.WaitResponse, error) {
	statusCh, errCh := c.cli.ContainerWait(ctx, c.id, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil {
			return nil, fmt.Errorf("container error: %s", status.Error.Message)
		}
		return &status, nil
	case err := <-errCh:
		if err == nil {
			err = errors.New("wait channel closed")
		}
		return nil, fmt.Errorf("wait for container: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for container: %w", ctx.Err())
	}
}
