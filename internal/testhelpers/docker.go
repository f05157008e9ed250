package testhelpers

import (
	"context"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

func dockerClient(t testing.TB) *client.Client {
	t.Helper()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Fatalf("create docker client: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	return cli
}

// CountContainers returns how many containers, running or not, carry label key=value.
func CountContainers(t testing.TB, key, value string) int {
	t.Helper()

	cli := dockerClient(t)
	list, err := cli.ContainerList(context.Background(), container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", key+"="+value)),
	})
	if err != nil {
		t.Fatalf("list containers: %v", err)
	}
	return len(list)
}

// RemoveVolumeOnCleanup removes the named volume when the test finishes.
func RemoveVolumeOnCleanup(t testing.TB, name string) {
	t.Helper()

	cli := dockerClient(t)
	t.Cleanup(func() {
		if err := cli.VolumeRemove(context.Background(), name, true); err != nil && !client.IsErrNotFound(err) {
			t.Logf("remove volume %s: %v", name, err)
		}
	})
}
