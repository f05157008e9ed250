package docker

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	specs "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
)

// Name identifies this runtime in the runtime registry.
const Name = "docker"

// Runtime implements ports.ContainerRuntime on top of the Docker Engine SDK.
type Runtime struct {
	cli      dockerClient
	platform *specs.Platform

	pullMu sync.Mutex
	pulled map[string]bool
}

var _ ports.ContainerRuntime = (*Runtime)(nil)

// New constructs a Runtime using the Docker environment (DOCKER_HOST and friends).
func New(cfg Config) (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker runtime: create client: %w", err)
	}

	rt, err := newRuntimeWithClient(cli, cfg)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	return rt, nil
}

func newRuntimeWithClient(cli dockerClient, cfg Config) (*Runtime, error) {
	platform, err := parsePlatform(cfg.Platform)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		cli:      cli,
		platform: platform,
		pulled:   make(map[string]bool),
	}, nil
}

func (r *Runtime) Name() string {
	return Name
}

// Create pulls the image if it is missing and creates a stopped container.
func (r *Runtime) Create(ctx context.Context, cfg fixture.ContainerConfiguration) (ports.ContainerInstance, error) {
	if cfg.Image == "" {
		return nil, fmt.Errorf("docker runtime: image is required")
	}

	if err := r.ensureImage(ctx, cfg.Image, cfg.AlwaysPull); err != nil {
		return nil, err
	}

	resp, err := r.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:        cfg.Image,
			Cmd:          cfg.Cmd,
			Labels:       cfg.Labels,
			AttachStdout: true,
			AttachStderr: true,
		},
		&container.HostConfig{
			Mounts: HostMounts(cfg),
		},
		nil,
		r.platform,
		cfg.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	return &instance{cli: r.cli, id: resp.ID}, nil
}

// Close releases the underlying Docker client.
func (r *Runtime) Close() error {
	if r.cli == nil {
		return nil
	}
	return r.cli.Close()
}

func (r *Runtime) ensureImage(ctx context.Context, ref string, always bool) error {
	r.pullMu.Lock()
	defer r.pullMu.Unlock()

	if !always {
		if r.pulled[ref] {
			return nil
		}
		_, _, err := r.cli.ImageInspectWithRaw(ctx, ref)
		if err == nil {
			r.pulled[ref] = true
			return nil
		}
		if !client.IsErrNotFound(err) {
			return fmt.Errorf("inspect image %s: %w", ref, err)
		}
	}

	if err := r.pullImage(ctx, ref); err != nil {
		return err
	}
	r.pulled[ref] = true
	return nil
}

func (r *Runtime) pullImage(ctx context.Context, ref string) error {
	reader, err := r.cli.ImagePull(ctx, ref, image.PullOptions{Platform: formatPlatform(r.platform)})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", ref, err)
	}
	defer reader.Close()
	_, err = io.Copy(io.Discard, reader)
	if err != nil {
		return fmt.Errorf("consume pull output for %s: %w", ref, err)
	}
	return nil
}

// HostMounts translates fixture mounts into Docker host-config mounts.
func HostMounts(cfg fixture.ContainerConfiguration) []mount.Mount {
	if len(cfg.Mounts) == 0 {
		return nil
	}

	mounts := make([]mount.Mount, 0, len(cfg.Mounts))
	for _, m := range cfg.Mounts {
		typ := mount.TypeBind
		if m.Kind == fixture.MountVolume {
			typ = mount.TypeVolume
		}
		mounts = append(mounts, mount.Mount{
			Type:     typ,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		})
	}
	return mounts
}
