package testhelpers

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/docker/docker/client"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
	"github.com/goldsam/cert-generator/internal/runtime"
	"github.com/goldsam/cert-generator/internal/runtime/docker"
)

const dockerPingTimeout = 10 * time.Second

// RuntimeEnv selects the container runtime used by integration tests.
const RuntimeEnv = "CERTGEN_RUNTIME"

// RequireDocker skips the test when no Docker daemon answers.
func RequireDocker(t testing.TB) {
	t.Helper()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), dockerPingTimeout)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
}

// OpenRuntime opens the runtime named by CERTGEN_RUNTIME (docker by default) and
// closes it when the test finishes. The test is skipped when Docker is unavailable.
func OpenRuntime(t testing.TB) ports.ContainerRuntime {
	t.Helper()
	RequireDocker(t)

	name := os.Getenv(RuntimeEnv)
	if name == "" {
		name = runtime.DefaultName
	}

	rt, err := runtime.NewDefaultRegistry(slog.Default(), docker.Config{}).Open(name)
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() {
		if err := rt.Close(); err != nil {
			t.Logf("close runtime: %v", err)
		}
	})
	return rt
}

// WriteGeneratorConfig writes a generator configuration listing certs to a temporary
// file and returns its path.
func WriteGeneratorConfig(t testing.TB, certs ...fixture.Certificate) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := (fixture.GeneratorConfig{Certificates: certs}).WriteFile(path); err != nil {
		t.Fatalf("write generator config: %v", err)
	}
	return path
}

// CertsDir creates a temporary directory the generator can write into regardless of
// the user it runs as inside the container.
func CertsDir(t testing.TB) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o777); err != nil {
		t.Fatalf("chmod certs dir: %v", err)
	}
	return dir
}

// ListFiles returns the sorted names of the regular files in dir.
func ListFiles(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names
}
