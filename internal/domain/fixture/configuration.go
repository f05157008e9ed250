package fixture

import (
	"maps"
	"slices"
	"time"
)

const (
	// DefaultImage is the public cert-generator image used when no image is configured.
	DefaultImage = "ghcr.io/goldsam/cert-generator:latest"

	// ConfigPath is where the generator expects its configuration file.
	ConfigPath = "/config.yml"

	// CertsPath is the directory the generator writes certificates and keys into.
	CertsPath = "/certs"

	// ReadyMessage is logged by the generator once every certificate was written.
	// The spelling matches the image output and must not be corrected.
	ReadyMessage = "Certificates were succesully updated."

	DefaultStartupTimeout = 2 * time.Minute
	DefaultPollInterval   = 250 * time.Millisecond
)

// ContainerConfiguration describes a container to be materialized by a runtime.
//
// A ContainerConfiguration is treated as a value: operations that change it return a
// new configuration and never modify the receiver's slices or maps.
type ContainerConfiguration struct {
	Image  string
	Name   string
	Cmd    []string
	Mounts []Mount
	Labels map[string]string

	// Readiness decides when a started container is ready for use.
	Readiness ReadinessCondition
	// StartupTimeout bounds the readiness wait. Zero means unset.
	StartupTimeout time.Duration
	// PollInterval is the delay between readiness checks. Zero means unset.
	PollInterval time.Duration
	// AlwaysPull forces an image pull even when the image is cached locally.
	// Like the other zero values, false means unset: Merge can turn it on but never off.
	AlwaysPull bool
}

// Clone returns a deep copy of the configuration.
func (c ContainerConfiguration) Clone() ContainerConfiguration {
	c.Cmd = slices.Clone(c.Cmd)
	c.Mounts = slices.Clone(c.Mounts)
	c.Labels = maps.Clone(c.Labels)
	return c
}

// WithMount returns a copy of the configuration with m attached. A mount already
// targeting the same container path is replaced.
func (c ContainerConfiguration) WithMount(m Mount) ContainerConfiguration {
	out := c.Clone()
	out.Mounts = slices.DeleteFunc(out.Mounts, func(existing Mount) bool {
		return existing.Target == m.Target
	})
	out.Mounts = append(out.Mounts, m)
	return out
}

// WithLabel returns a copy of the configuration with the label set.
func (c ContainerConfiguration) WithLabel(key, value string) ContainerConfiguration {
	out := c.Clone()
	if out.Labels == nil {
		out.Labels = make(map[string]string, 1)
	}
	out.Labels[key] = value
	return out
}

// Merge produces a configuration whose fields are the union of oldValue and newValue,
// with newValue winning field by field whenever it sets a value. Mounts and labels are
// unioned; a mount in newValue replaces one in oldValue with the same target.
// AlwaysPull is sticky: once either side sets it, the result pulls.
func Merge(oldValue, newValue ContainerConfiguration) ContainerConfiguration {
	out := oldValue.Clone()

	if newValue.Image != "" {
		out.Image = newValue.Image
	}
	if newValue.Name != "" {
		out.Name = newValue.Name
	}
	if len(newValue.Cmd) > 0 {
		out.Cmd = slices.Clone(newValue.Cmd)
	}
	for _, m := range newValue.Mounts {
		out = out.WithMount(m)
	}
	for k, v := range newValue.Labels {
		out = out.WithLabel(k, v)
	}
	if newValue.Readiness.Match != nil {
		out.Readiness = newValue.Readiness
	}
	if newValue.StartupTimeout > 0 {
		out.StartupTimeout = newValue.StartupTimeout
	}
	if newValue.PollInterval > 0 {
		out.PollInterval = newValue.PollInterval
	}
	out.AlwaysPull = out.AlwaysPull || newValue.AlwaysPull

	return out
}
