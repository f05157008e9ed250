package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeDockerClient struct {
	mu           sync.Mutex
	nextID       int
	images       map[string]bool
	imagePulls   []image.PullOptions
	pulledRefs   []string
	createCalls  []containerCreateCall
	createErr    error
	startCalls   []string
	stopCalls    []container.StopOptions
	removeCalls  []container.RemoveOptions
	stopErr      error
	removeErr    error
	waitCalls    map[string][]waitCall
	logs         map[string][]byte
	inspect      map[string]types.ContainerJSON
	copyFromData map[string][]byte
	closed       bool
}

type containerCreateCall struct {
	id         string
	name       string
	config     *container.Config
	hostConfig *container.HostConfig
	platform   *specs.Platform
}

type waitCall struct {
	status *container.WaitResponse
	err    error
}

func newFakeDockerClient() *fakeDockerClient {
	return &fakeDockerClient{
		images:       make(map[string]bool),
		waitCalls:    make(map[string][]waitCall),
		logs:         make(map[string][]byte),
		inspect:      make(map[string]types.ContainerJSON),
		copyFromData: make(map[string][]byte),
	}
}

func (f *fakeDockerClient) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.images[imageID] {
		return types.ImageInspect{}, nil, errdefs.NotFound(fmt.Errorf("no such image: %s", imageID))
	}
	return types.ImageInspect{ID: imageID}, nil, nil
}

func (f *fakeDockerClient) ImagePull(ctx context.Context, ref string, opts image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	f.pulledRefs = append(f.pulledRefs, ref)
	f.imagePulls = append(f.imagePulls, opts)
	f.images[ref] = true
	f.mu.Unlock()
	return io.NopCloser(bytes.NewReader([]byte(`{"status":"Pull complete"}`))), nil
}

func (f *fakeDockerClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return container.CreateResponse{}, f.createErr
	}
	id := fmt.Sprintf("container-%d", f.nextID)
	f.nextID++
	f.createCalls = append(f.createCalls, containerCreateCall{
		id:         id,
		name:       containerName,
		config:     config,
		hostConfig: hostConfig,
		platform:   platform,
	})
	return container.CreateResponse{ID: id}, nil
}

func (f *fakeDockerClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	f.mu.Lock()
	f.startCalls = append(f.startCalls, containerID)
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	statusCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)

	f.mu.Lock()
	calls := f.waitCalls[containerID]
	if len(calls) > 0 {
		call := calls[0]
		f.waitCalls[containerID] = calls[1:]
		f.mu.Unlock()

		if call.status != nil {
			statusCh <- *call.status
		}
		if call.err != nil {
			errCh <- call.err
		}
		return statusCh, errCh
	}
	f.mu.Unlock()

	return statusCh, errCh
}

func (f *fakeDockerClient) ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.inspect[containerID]
	if !ok {
		return types.ContainerJSON{}, errdefs.NotFound(fmt.Errorf("no such container: %s", containerID))
	}
	return info, nil
}

func (f *fakeDockerClient) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	data := f.logs[containerID]
	f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeDockerClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls = append(f.stopCalls, options)
	return f.stopErr
}

func (f *fakeDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, options)
	return f.removeErr
}

func (f *fakeDockerClient) CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, types.ContainerPathStat, error) {
	key := copyKey(containerID, srcPath)
	f.mu.Lock()
	data, ok := f.copyFromData[key]
	f.mu.Unlock()
	if !ok {
		return nil, types.ContainerPathStat{}, errdefs.NotFound(errors.New("not found"))
	}
	return io.NopCloser(bytes.NewReader(data)), types.ContainerPathStat{}, nil
}

func (f *fakeDockerClient) setWaitSequence(containerID string, calls ...waitCall) {
	f.mu.Lock()
	f.waitCalls[containerID] = append([]waitCall{}, calls...)
	f.mu.Unlock()
}

func (f *fakeDockerClient) setLogs(containerID string, stdout, stderr string) {
	var buf bytes.Buffer
	if stdout != "" {
		w := stdcopy.NewStdWriter(&buf, stdcopy.Stdout)
		_, _ = w.Write([]byte(stdout))
	}
	if stderr != "" {
		w := stdcopy.NewStdWriter(&buf, stdcopy.Stderr)
		_, _ = w.Write([]byte(stderr))
	}
	f.mu.Lock()
	f.logs[containerID] = buf.Bytes()
	f.mu.Unlock()
}

func (f *fakeDockerClient) setState(containerID string, state types.ContainerState) {
	f.mu.Lock()
	f.inspect[containerID] = types.ContainerJSON{
		ContainerJSONBase: &types.ContainerJSONBase{ID: containerID, State: &state},
	}
	f.mu.Unlock()
}

func (f *fakeDockerClient) setCopyFrom(containerID, srcPath string, files map[string][]byte) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, data := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o600, Size: int64(len(data)), Typeflag: tar.TypeReg}); err != nil {
			return err
		}
		if _, err := tw.Write(data); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	f.mu.Lock()
	f.copyFromData[copyKey(containerID, srcPath)] = buf.Bytes()
	f.mu.Unlock()
	return nil
}

func copyKey(containerID, srcPath string) string {
	return containerID + "|" + srcPath
}
