// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs external text-extraction tools: local binaries
// such as pdftotext and tesseract, and container images through docker or
// podman.
package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available(ctx context.Context) bool

	// ImageExists checks whether the named image exists locally.
	// Returns nil when the image is found, or an error describing the failure.
	ImageExists(ctx context.Context, image string) error

	// Run executes a container with the given image, piping stdin and stdout.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// Executor abstracts command execution so tools can be faked in tests.
type Executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// OSExecutor is the production Executor backed by os/exec. RunPiped folds
// the tail of stderr into the returned error.
type OSExecutor struct{}

func (OSExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OSExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

func (OSExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			if len(msg) > 512 {
				msg = msg[len(msg)-512:]
			}
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// engine implements Runtime for one container CLI. Docker and podman accept
// the same run flags and differ only in how an image is looked up.
type engine struct {
	bin     string
	inspect []string
	exec    Executor
}

// candidates lists the supported engines in detection order.
var candidates = []struct {
	bin     string
	inspect []string
}{
	{binDocker, []string{"image", "inspect"}},
	{binPodman, []string{"image", "exists"}},
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available(ctx context.Context) bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	return e.exec.RunSilent(ctx, e.bin, "info") == nil
}

func (e *engine) ImageExists(ctx context.Context, image string) error {
	args := append(append([]string(nil), e.inspect...), image)
	if err := e.exec.RunSilent(ctx, e.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, e.bin, err)
	}
	return nil
}

// Run starts a throwaway container that reads the document on stdin and
// writes text on stdout. Converters never need the network.
func (e *engine) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	args := []string{"run", "--rm", "-i", "--network", "none", image}
	if err := e.exec.RunPiped(ctx, e.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", e.bin, image, err)
	}
	return nil
}

// ErrNoRuntime is returned by Detect when neither docker nor podman works.
var ErrNoRuntime = errors.New("no container runtime available")

// Detect returns the first operational engine, trying docker before podman.
func Detect(ctx context.Context, exec Executor) (Runtime, error) {
	if exec == nil {
		exec = OSExecutor{}
	}
	for _, c := range candidates {
		e := &engine{bin: c.bin, inspect: c.inspect, exec: exec}
		if e.Available(ctx) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: neither %s nor %s found or operational", ErrNoRuntime, binDocker, binPodman)
}
