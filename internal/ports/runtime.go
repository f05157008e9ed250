package ports

import (
	"context"
	"time"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
)

// ContainerRuntime materializes containers from a fixture configuration.
type ContainerRuntime interface {
	Name() string
	// Create pulls the image when needed and creates, but does not start, a container.
	Create(ctx context.Context, cfg fixture.ContainerConfiguration) (ContainerInstance, error)
	Close() error
}

// ContainerInstance is one runtime-managed container.
type ContainerInstance interface {
	ID() string
	Start(ctx context.Context) error
	Logs(ctx context.Context) (stdout, stderr string, err error)
	Status(ctx context.Context) (fixture.ContainerStatus, error)
	// Wait blocks until the container is no longer running and returns its exit code.
	Wait(ctx context.Context) (int64, error)
	CopyFileFromContainer(ctx context.Context, path string) ([]byte, error)
	Stop(ctx context.Context, timeout time.Duration) error
	// Remove deletes the container and its anonymous volumes. Removing a container
	// that no longer exists is not an error.
	Remove(ctx context.Context) error
}
