// Package sandbox runs one job inside an ephemeral, locked-down Docker
// container and returns its captured, sanitized output (spec.md §4.1–4.2).
package sandbox

import "fmt"

// allowedImages is the fixed set of image tags the sandbox is permitted
// to launch. Any other image is rejected before a container is created.
var allowedImages = map[string]bool{
	"python-runner": true,
	"r-runner":      true,
	"julia-runner":  true,
	"lean-runner":   true,
}

// ImageAllowed reports whether image may be launched.
func ImageAllowed(image string) bool {
	return allowedImages[image]
}

// Policy is an immutable set of resource and capability limits for one
// sandbox run.
type Policy struct {
	MemoryMB         int
	CPUPeriodMicros  int64
	CPUQuotaMicros   int64
	MaxPIDs          int
	TmpfsMB          int
	WallClockSeconds int
}

// DefaultPolicy mirrors model.DefaultResourceLimits with one CPU core's
// worth of quota/period.
func DefaultPolicy() Policy {
	return Policy{
		MemoryMB:         2048,
		CPUPeriodMicros:  100_000,
		CPUQuotaMicros:   100_000,
		MaxPIDs:          64,
		TmpfsMB:          256,
		WallClockSeconds: 120,
	}
}

// Validate enforces spec.md §4.1's construction invariants: every numeric
// limit must be strictly positive. Network is always disabled and is not
// a configurable field, so there is nothing to validate there.
func (p Policy) Validate() error {
	switch {
	case p.MemoryMB <= 0:
		return fmt.Errorf("sandbox: memory_mb must be positive")
	case p.CPUPeriodMicros <= 0 || p.CPUQuotaMicros <= 0:
		return fmt.Errorf("sandbox: cpu period/quota must be positive")
	case p.MaxPIDs <= 0:
		return fmt.Errorf("sandbox: max_pids must be positive")
	case p.TmpfsMB <= 0:
		return fmt.Errorf("sandbox: tmpfs_mb must be positive")
	case p.WallClockSeconds <= 0:
		return fmt.Errorf("sandbox: wall_clock_seconds must be positive")
	}
	return nil
}

// ContainerConfig is the backend-agnostic projection of a Policy plus one
// run's binds and environment — the shape executor.go turns into a Docker
// container create call.
type ContainerConfig struct {
	Image       string
	Command     []string
	Env         []string
	Binds       []Bind
	NetworkMode string
	ReadOnlyRootfs bool
	MemoryBytes int64
	MemorySwapBytes int64
	CPUPeriod   int64
	CPUQuota    int64
	PidsLimit   int64
	CapDropAll  bool
	NoNewPrivileges bool
	Tmpfs       map[string]string
}

// Bind is a host-directory-to-container-path mount; ReadOnly selects a
// read-only ("ro") or read-write ("rw") bind.
type Bind struct {
	HostPath      string
	ContainerPath string
	ReadOnly      bool
}

// ToContainerConfig projects p, plus one run's binds and sanitized env,
// into a ContainerConfig. /tmp is executable (nosuid only) because
// interpreters need to write and exec their own bytecode/cache there;
// /output is non-executable and exists solely to receive artifacts.
func (p Policy) ToContainerConfig(image string, command []string, binds []Bind, env []string) ContainerConfig {
	return ContainerConfig{
		Image:           image,
		Command:         command,
		Env:             env,
		Binds:           binds,
		NetworkMode:     "none",
		ReadOnlyRootfs:  true,
		MemoryBytes:     int64(p.MemoryMB) * 1024 * 1024,
		MemorySwapBytes: int64(p.MemoryMB) * 1024 * 1024,
		CPUPeriod:       p.CPUPeriodMicros,
		CPUQuota:        p.CPUQuotaMicros,
		PidsLimit:       int64(p.MaxPIDs),
		CapDropAll:      true,
		NoNewPrivileges: true,
		Tmpfs: map[string]string{
			"/tmp":    fmt.Sprintf("size=%dm,nosuid", p.TmpfsMB),
			"/output": fmt.Sprintf("size=%dm,nosuid,noexec", p.TmpfsMB),
		},
	}
}

// FromResourceLimits builds a Policy from a job's resource limits,
// deriving tmpfs size from the disk limit (spec.md §4.7 step 3). CPU
// quota/period is fixed at one core's worth of rate limiting; cpuSeconds
// bounds total CPU time, which Docker's cgroup quota/period doesn't
// express directly, so the hard stop for runaway CPU use is the wall
// clock timeout, not this field.
func FromResourceLimits(cpuSeconds, memoryMB, diskMB, wallClockSeconds, maxPIDs int) Policy {
	_ = cpuSeconds
	return Policy{
		MemoryMB:         memoryMB,
		CPUPeriodMicros:  100_000,
		CPUQuotaMicros:   100_000,
		MaxPIDs:          maxPIDs,
		TmpfsMB:          diskMB,
		WallClockSeconds: wallClockSeconds,
	}
}
