package fixture

import "fmt"

// MountKind distinguishes host bind mounts from runtime-managed volumes.
type MountKind int

const (
	MountBind MountKind = iota
	MountVolume
)

func (k MountKind) String() string {
	switch k {
	case MountBind:
		return "bind"
	case MountVolume:
		return "volume"
	default:
		return fmt.Sprintf("MountKind(%d)", int(k))
	}
}

// Mount maps a host path or named volume onto a path inside the container.
type Mount struct {
	Kind MountKind
	// Source is a host path for bind mounts and a volume name for volume mounts.
	Source   string
	Target   string
	ReadOnly bool
}

// BindMount mounts hostPath at target.
func BindMount(hostPath, target string) Mount {
	return Mount{Kind: MountBind, Source: hostPath, Target: target}
}

// VolumeMount mounts the named volume at target.
func VolumeMount(name, target string) Mount {
	return Mount{Kind: MountVolume, Source: name, Target: target}
}

func (m Mount) String() string {
	return fmt.Sprintf("%s:%s:%s", m.Kind, m.Source, m.Target)
}
