package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"github.com/Noah-Everett/phiacta-verify/internal/logging"
	"github.com/Noah-Everett/phiacta-verify/internal/runner"
)

// Result is one sandbox execution's outcome (spec.md §4.2).
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Files    map[string][]byte
	Elapsed  time.Duration
	TimedOut bool
}

// Docker wraps a Docker Engine client and runs jobs in ephemeral,
// locked-down containers.
type Docker struct {
	cli *client.Client
}

// NewDocker connects to the Docker daemon using the standard DOCKER_HOST
// environment conventions.
func NewDocker() (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("sandbox: connect to docker: %w", err)
	}
	return &Docker{cli: cli}, nil
}

// Run executes exec under policy and returns its captured, sanitized
// result. Every exit path removes the container and its scoped temp
// directories (spec.md §4.2 step 12).
func (d *Docker) Run(ctx context.Context, exec runner.PreparedExecution, policy Policy) (*Result, error) {
	if !ImageAllowed(exec.Image) {
		return nil, fmt.Errorf("sandbox: image %q is not on the allow-list", exec.Image)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	codeDir, err := materialize("phiacta-code-", exec.CodeFiles)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(codeDir)

	binds := []Bind{{HostPath: codeDir, ContainerPath: "/code", ReadOnly: true}}

	var dataDir string
	if len(exec.DataFiles) > 0 {
		dataDir, err = materialize("phiacta-data-", exec.DataFiles)
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dataDir)
		binds = append(binds, Bind{HostPath: dataDir, ContainerPath: "/data", ReadOnly: true})
	}

	cfg := policy.ToContainerConfig(exec.Image, exec.Command, binds, sanitizeEnv(exec.Env))

	created, err := d.cli.ContainerCreate(ctx, toContainerConfig(cfg), toHostConfig(cfg), nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("sandbox: create container: %w", err)
	}
	containerID := created.ID
	defer func() {
		removeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.cli.ContainerRemove(removeCtx, containerID, container.RemoveOptions{Force: true}); err != nil {
			logging.L().Warn("sandbox: container remove failed", zap.String("container_id", containerID), zap.Error(err))
		}
	}()

	start := time.Now()
	if err := d.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("sandbox: start container: %w", err)
	}

	timeout := time.Duration(policy.WallClockSeconds) * time.Second
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	statusCh, errCh := d.cli.ContainerWait(waitCtx, containerID, container.WaitConditionNotRunning)

	var exitCode int
	timedOut := false
	select {
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
	case <-errCh:
		_ = d.cli.ContainerKill(context.Background(), containerID, "KILL")
		exitCode = -1
		timedOut = waitCtx.Err() != nil
	}

	elapsed := time.Since(start)

	stdout, stderr := d.captureLogs(context.Background(), containerID)
	stdout = truncateCapture(sanitizeText(stdout))
	stderr = truncateCapture(sanitizeText(stderr))

	files := map[string][]byte{}
	if !timedOut {
		if archive, err := d.copyOutput(context.Background(), containerID); err == nil {
			if extracted, err := extractOutputArchive(archive); err == nil {
				files = extracted
			} else {
				logging.L().Warn("sandbox: failed to extract output archive")
			}
		}
	}

	return &Result{
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		Files:    files,
		Elapsed:  elapsed,
		TimedOut: timedOut,
	}, nil
}

func (d *Docker) captureLogs(ctx context.Context, containerID string) (stdout, stderr string) {
	rc, err := d.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", ""
	}
	defer rc.Close()

	var outBuf, errBuf bytes.Buffer
	_, _ = stdcopy.StdCopy(&outBuf, &errBuf, rc)
	return outBuf.String(), errBuf.String()
}

func (d *Docker) copyOutput(ctx context.Context, containerID string) ([]byte, error) {
	rc, _, err := d.cli.CopyFromContainer(ctx, containerID, "/output")
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readArchiveLimited(rc)
}

// materialize writes files (relative path -> content) under a freshly
// created, uniquely named temp directory and returns its path.
func materialize(prefix string, files map[string]string) (string, error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return "", fmt.Errorf("sandbox: create temp dir: %w", err)
	}
	for name, content := range files {
		if err := validateRelPath(name); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

func toContainerConfig(cfg ContainerConfig) *container.Config {
	return &container.Config{
		Image: cfg.Image,
		Cmd:   cfg.Command,
		Env:   cfg.Env,
	}
}

func toHostConfig(cfg ContainerConfig) *container.HostConfig {
	binds := make([]string, 0, len(cfg.Binds))
	for _, b := range cfg.Binds {
		mode := "ro"
		if !b.ReadOnly {
			mode = "rw"
		}
		binds = append(binds, fmt.Sprintf("%s:%s:%s", b.HostPath, b.ContainerPath, mode))
	}
	return &container.HostConfig{
		Binds:          binds,
		NetworkMode:    container.NetworkMode(cfg.NetworkMode),
		ReadonlyRootfs: cfg.ReadOnlyRootfs,
		CapDrop:        []string{"ALL"},
		SecurityOpt:    []string{"no-new-privileges"},
		Tmpfs:          cfg.Tmpfs,
		Resources: container.Resources{
			Memory:     cfg.MemoryBytes,
			MemorySwap: cfg.MemorySwapBytes,
			CPUPeriod:  cfg.CPUPeriod,
			CPUQuota:   cfg.CPUQuota,
			PidsLimit:  &cfg.PidsLimit,
		},
	}
}
