package runtime

import (
	"log/slog"

	"github.com/goldsam/cert-generator/internal/ports"
	"github.com/goldsam/cert-generator/internal/runtime/docker"
	"github.com/goldsam/cert-generator/internal/runtime/tcruntime"
)

// DefaultName is the runtime used when none is configured.
const DefaultName = docker.Name

// NewDefaultRegistry returns a registry with the Docker SDK and testcontainers runtimes.
func NewDefaultRegistry(logger *slog.Logger, dockerCfg docker.Config) *Registry {
	reg := NewRegistry()
	// names are constants and distinct, registration cannot fail
	_ = reg.Register(docker.Name, func() (ports.ContainerRuntime, error) {
		return docker.New(dockerCfg)
	})
	_ = reg.Register(tcruntime.Name, func() (ports.ContainerRuntime, error) {
		return tcruntime.New(logger), nil
	})
	return reg
}
