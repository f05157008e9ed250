package docker

import (
	"fmt"
	"strings"

	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

// Config describes how to create a Docker-backed container runtime.
type Config struct {
	// Platform optionally pins the image platform, e.g. "linux/amd64" or "linux/arm64/v8".
	Platform string
}

func parsePlatform(raw string) (*specs.Platform, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("docker runtime: invalid platform %q, expected os/arch[/variant]", raw)
	}

	platform := &specs.Platform{OS: parts[0], Architecture: parts[1]}
	if len(parts) == 3 {
		platform.Variant = parts[2]
	}
	return platform, nil
}

func formatPlatform(p *specs.Platform) string {
	if p == nil {
		return ""
	}
	out := p.OS + "/" + p.Architecture
	if p.Variant != "" {
		out += "/" + p.Variant
	}
	return out
}
