package certgen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goldsam/cert-generator/internal/domain/fixture"
	"github.com/goldsam/cert-generator/internal/ports"
)

type fakeRuntime struct {
	mu        sync.Mutex
	created   []fixture.ContainerConfiguration
	instances []*fakeInstance
	createErr error
	// configure, when set, prepares each new instance before it is returned.
	configure func(*fakeInstance)
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{}
}

func (f *fakeRuntime) Name() string { return "fake" }

func (f *fakeRuntime) Create(ctx context.Context, cfg fixture.ContainerConfiguration) (ports.ContainerInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	inst := &fakeInstance{id: fmt.Sprintf("fake-%d", len(f.instances)), running: true}
	if f.configure != nil {
		f.configure(inst)
	}
	f.created = append(f.created, cfg)
	f.instances = append(f.instances, inst)
	return inst, nil
}

func (f *fakeRuntime) Close() error { return nil }

type fakeInstance struct {
	mu          sync.Mutex
	id          string
	startErr    error
	removeErr   error
	statusErr   error
	started     bool
	removed     bool
	running     bool
	exitCode    int64
	stdout      string
	logCalls    int
	readyAfter  int
	exitAfter   int
	stopCalls   int
	removeCalls int
	files       map[string][]byte
}

func (f *fakeInstance) ID() string { return f.id }

func (f *fakeInstance) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

// Logs returns the ready message once readyAfter log calls happened (when readyAfter > 0),
// and marks the process exited after exitAfter calls (when exitAfter > 0).
func (f *fakeInstance) Logs(context.Context) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logCalls++
	if f.removed {
		return "", "", errNoSuchContainer(f.id)
	}
	if f.readyAfter > 0 && f.logCalls >= f.readyAfter {
		return f.stdout + fixture.ReadyMessage + "\n", "", nil
	}
	if f.exitAfter > 0 && f.logCalls >= f.exitAfter {
		f.running = false
	}
	return f.stdout, "", nil
}

func (f *fakeInstance) Status(context.Context) (fixture.ContainerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removed {
		return fixture.ContainerStatus{}, errNoSuchContainer(f.id)
	}
	if f.statusErr != nil {
		return fixture.ContainerStatus{}, f.statusErr
	}
	return fixture.ContainerStatus{Running: f.running, ExitCode: f.exitCode}, nil
}

func (f *fakeInstance) Wait(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exitCode, nil
}

func (f *fakeInstance) CopyFileFromContainer(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such file: " + path)
	}
	return data, nil
}

func (f *fakeInstance) Stop(context.Context, time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	f.running = false
	return nil
}

func (f *fakeInstance) Remove(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = true
	return nil
}

func errNoSuchContainer(id string) error {
	return fmt.Errorf("Error response from daemon: No such container: %s", id)
}

func (f *fakeInstance) counts() (stops, removes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls, f.removeCalls
}
