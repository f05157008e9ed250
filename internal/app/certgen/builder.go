// Package certgen launches the cert-generator image as a test fixture.
//
// A Builder accumulates an immutable container configuration; Build asks a container
// runtime to create the container and returns a Container handle that drives its
// lifecycle:
//
//	ctr, err := certgen.NewBuilder(rt).
//		WithHostConfiguration(configPath).
//		WithHostCertificates(certsDir).
//		Build(ctx)
//	if err != nil { ... }
//	defer ctr.Stop(context.Background())
//	if err := ctr.Start(ctx); err != nil { ... }
package certgen

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
)

// FixtureLabel is set on every container created by a Builder, with a unique value.
const FixtureLabel = "org.goldsam.certgen.fixture"

// Builder configures a cert-generator container. Builder is a value: every With*
// method returns a new Builder and leaves the receiver unchanged, so a partially
// configured Builder can be shared between tests.
type Builder struct {
	runtime ports.ContainerRuntime
	logger  *slog.Logger
	config  fixture.ContainerConfiguration
	errs    []error
}

// NewBuilder returns a Builder that creates containers through rt, using the public
// cert-generator image unless WithImage overrides it.
func NewBuilder(rt ports.ContainerRuntime) Builder {
	return Builder{
		runtime: rt,
		config: fixture.ContainerConfiguration{
			Image:          fixture.DefaultImage,
			StartupTimeout: fixture.DefaultStartupTimeout,
			PollInterval:   fixture.DefaultPollInterval,
		},
	}
}

// WithImage overrides the image reference.
func (b Builder) WithImage(ref string) Builder {
	if ref == "" {
		return b.fail("image", "reference must not be empty")
	}
	return b.merge(fixture.ContainerConfiguration{Image: ref})
}

// WithHostCertificates binds hostPath to the directory the certificates are written to.
func (b Builder) WithHostCertificates(hostPath string) Builder {
	if hostPath == "" {
		return b.fail("certificates host path", "must not be empty")
	}
	return b.mount(fixture.BindMount(hostPath, fixture.CertsPath))
}

// WithVolumeCertificates mounts the named volume at the certificate directory.
func (b Builder) WithVolumeCertificates(volume string) Builder {
	if volume == "" {
		return b.fail("certificates volume", "name must not be empty")
	}
	return b.mount(fixture.VolumeMount(volume, fixture.CertsPath))
}

// WithHostConfiguration binds the generator configuration file at hostConfigPath.
// The file's existence is checked by the runtime when the container is created.
func (b Builder) WithHostConfiguration(hostConfigPath string) Builder {
	if hostConfigPath == "" {
		return b.fail("configuration host path", "must not be empty")
	}
	m := fixture.BindMount(hostConfigPath, fixture.ConfigPath)
	m.ReadOnly = true
	return b.mount(m)
}

// WithStartupTimeout bounds how long Start waits for the ready message.
func (b Builder) WithStartupTimeout(d time.Duration) Builder {
	if d <= 0 {
		return b.fail("startup timeout", "must be positive")
	}
	return b.merge(fixture.ContainerConfiguration{StartupTimeout: d})
}

// WithPollInterval sets the delay between readiness checks.
func (b Builder) WithPollInterval(d time.Duration) Builder {
	if d <= 0 {
		return b.fail("poll interval", "must be positive")
	}
	return b.merge(fixture.ContainerConfiguration{PollInterval: d})
}

// WithName sets the container name. Unnamed containers get a runtime-assigned name.
func (b Builder) WithName(name string) Builder {
	return b.merge(fixture.ContainerConfiguration{Name: name})
}

// WithLabel adds a container label.
func (b Builder) WithLabel(key, value string) Builder {
	if key == "" {
		return b.fail("label", "key must not be empty")
	}
	return b.merge(fixture.ContainerConfiguration{Labels: map[string]string{key: value}})
}

// WithAlwaysPull forces an image pull even if the image is present locally.
func (b Builder) WithAlwaysPull(always bool) Builder {
	out := b.clone()
	out.config.AlwaysPull = always
	return out
}

// WithLogger sets the logger used by the containers this builder creates.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	out := b.clone()
	out.logger = logger
	return out
}

// WithConfiguration merges cfg over the current configuration. Zero fields in cfg
// leave the current values alone, so use WithAlwaysPull(false) to turn pulling off.
func (b Builder) WithConfiguration(cfg fixture.ContainerConfiguration) Builder {
	return b.merge(cfg)
}

// Configuration returns a copy of the accumulated configuration.
func (b Builder) Configuration() fixture.ContainerConfiguration {
	return b.config.Clone()
}

// Build validates the configuration, finalizes it for the generator image and asks the
// runtime to create the container. The returned Container has not been started.
func (b Builder) Build(ctx context.Context) (*Container, error) {
	cfg, err := b.finalize()
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("image", cfg.Image, "fixture", cfg.Labels[FixtureLabel], "runtime", b.runtime.Name())

	logger.Debug("creating container", "mounts", len(cfg.Mounts))
	inst, err := b.runtime.Create(ctx, cfg)
	if err != nil {
		return nil, &ContainerCreationError{Op: "create container", Err: err}
	}

	logger = logger.With("container", shortID(inst.ID()))
	logger.Debug("container created")

	return newContainer(inst, cfg, logger), nil
}

func (b Builder) finalize() (fixture.ContainerConfiguration, error) {
	if len(b.errs) > 0 {
		return fixture.ContainerConfiguration{}, b.errs[0]
	}
	if b.runtime == nil {
		return fixture.ContainerConfiguration{}, &ConfigurationError{Field: "runtime", Reason: "no container runtime configured"}
	}
	if b.config.Image == "" {
		return fixture.ContainerConfiguration{}, &ConfigurationError{Field: "image", Reason: "reference must not be empty"}
	}

	cfg := fixture.Merge(b.config, fixture.ContainerConfiguration{
		Cmd:       []string{fixture.ConfigPath},
		Readiness: fixture.UntilMessageIsLogged(fixture.ReadyMessage),
		Labels:    map[string]string{FixtureLabel: uuid.NewString()},
	})
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = fixture.DefaultStartupTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = fixture.DefaultPollInterval
	}
	return cfg, nil
}

func (b Builder) merge(cfg fixture.ContainerConfiguration) Builder {
	out := b.clone()
	out.config = fixture.Merge(b.config, cfg)
	return out
}

func (b Builder) mount(m fixture.Mount) Builder {
	out := b.clone()
	out.config = b.config.WithMount(m)
	return out
}

func (b Builder) fail(field, reason string) Builder {
	out := b.clone()
	out.errs = append(out.errs, &ConfigurationError{Field: field, Reason: reason})
	return out
}

func (b Builder) clone() Builder {
	b.config = b.config.Clone()
	b.errs = slices.Clip(b.errs)
	return b
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
