// Package tcruntime runs fixture containers through testcontainers-go.
package tcruntime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/testcontainers/testcontainers-go"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
	"github.com/goldsam/cert-generator/internal/runtime/docker"
)

// Name identifies this runtime in the runtime registry.
const Name = "testcontainers"

type createFunc func(ctx context.Context, req testcontainers.GenericContainerRequest) (testcontainers.Container, error)

// Runtime implements ports.ContainerRuntime with testcontainers-go. Containers it
// creates are also tracked by the testcontainers reaper, so they are removed even if
// the test process dies before Stop is called.
type Runtime struct {
	logger *slog.Logger
	create createFunc
}

var _ ports.ContainerRuntime = (*Runtime)(nil)

// New returns a Runtime logging through logger, or slog.Default when nil.
func New(logger *slog.Logger) *Runtime {
	return newRuntime(logger, testcontainers.GenericContainer)
}

func newRuntime(logger *slog.Logger, create createFunc) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		logger: logger.With("runtime", Name),
		create: create,
	}
}

func (r *Runtime) Name() string {
	return Name
}

// Create builds the container request and creates the container without starting it.
func (r *Runtime) Create(ctx context.Context, cfg fixture.ContainerConfiguration) (ports.ContainerInstance, error) {
	if cfg.Image == "" {
		return nil, fmt.Errorf("testcontainers runtime: image is required")
	}

	ctr, err := r.create(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request(cfg),
		Started:          false,
		Logger:           logAdapter{logger: r.logger},
	})
	if err != nil {
		if ctr != nil {
			// testcontainers may return a partially created container
			_ = ctr.Terminate(context.Background())
		}
		return nil, fmt.Errorf("create container: %w", err)
	}

	return &instance{ctr: ctr, pollInterval: pollInterval(cfg)}, nil
}

// Close is a no-op; testcontainers shares one Docker provider per process.
func (r *Runtime) Close() error {
	return nil
}

func request(cfg fixture.ContainerConfiguration) testcontainers.ContainerRequest {
	mounts := docker.HostMounts(cfg)
	return testcontainers.ContainerRequest{
		Image:           cfg.Image,
		Name:            cfg.Name,
		Cmd:             cfg.Cmd,
		Labels:          cfg.Labels,
		AlwaysPullImage: cfg.AlwaysPull,
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.Mounts = append(hc.Mounts, mounts...)
		},
	}
}

func pollInterval(cfg fixture.ContainerConfiguration) time.Duration {
	if cfg.PollInterval > 0 {
		return cfg.PollInterval
	}
	return fixture.DefaultPollInterval
}

type logAdapter struct {
	logger *slog.Logger
}

func (l logAdapter) Printf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
