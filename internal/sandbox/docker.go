package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DockerSandbox runs code in Docker containers.
type DockerSandbox struct {
	Policy Policy
	Binary string // defaults to "docker"
}

// NewDockerSandbox creates a sandbox with the given policy.
func NewDockerSandbox(policy Policy) *DockerSandbox {
	return &DockerSandbox{Policy: policy, Binary: "docker"}
}

// Available reports whether the docker binary can be found.
func (d *DockerSandbox) Available() bool {
	_, err := exec.LookPath(d.binary())
	return err == nil
}

func (d *DockerSandbox) binary() string {
	if d.Binary == "" {
		return "docker"
	}
	return d.Binary
}

func (d *DockerSandbox) Exec(ctx context.Context, opts ExecOpts) (*ExecResult, error) {
	if !d.Policy.IsImageAllowed(opts.Image) {
		return nil, fmt.Errorf("image %q not in allowlist", opts.Image)
	}

	// Create a temp dir for the code file
	tmpDir, err := os.MkdirTemp("", "codepad-sandbox-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	codePath := filepath.Join(tmpDir, "code")
	if err := os.WriteFile(codePath, []byte(opts.Code), 0o644); err != nil {
		return nil, fmt.Errorf("writing code file: %w", err)
	}

	timeout := d.Policy.MaxTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := []string{
		"run", "--rm", "-i",
		"--memory", d.Policy.MaxMemory,
		"--stop-timeout", fmt.Sprintf("%d", int(timeout.Seconds())),
		"-v", tmpDir + ":/workspace:ro",
		"-w", "/workspace",
	}

	if !d.Policy.Network {
		args = append(args, "--network=none")
	}

	args = append(args, opts.Image)
	args = append(args, opts.Command...)

	cmd := exec.CommandContext(ctx, d.binary(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}

	err = cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		default:
			return nil, fmt.Errorf("running docker: %w", err)
		}
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("execution timed out after %s: %w", timeout, ctx.Err())
	}

	return &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}
