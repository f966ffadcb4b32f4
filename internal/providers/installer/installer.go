package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrUnsupportedPlatform = errors.New("package installation is only supported on windows")
	ErrNotPackage          = errors.New("file is not an installable package")
	ErrEmptyPath           = errors.New("package path is empty")
)

// Runner executes a command and returns its combined output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Options configures an Installer. Zero values use the host defaults.
type Options struct {
	Shell  string
	GOOS   string
	Runner Runner
	Logger *zap.Logger
}

// Installer adds packages to the host with Add-AppxPackage
type Installer struct {
	shell string
	goos  string
	run   Runner
	log   *zap.Logger
}

// New creates an installer
func New(opts Options) *Installer {
	if opts.Shell == "" {
		opts.Shell = "powershell"
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Installer{shell: opts.Shell, goos: opts.GOOS, run: opts.Runner, log: opts.Logger}
}

// Supported reports whether the host can install packages
func (i *Installer) Supported() bool {
	return i.goos == "windows"
}

// Command returns the shell and arguments that install path
func (i *Installer) Command(path string) (string, []string) {
	return i.shell, []string{"-NoProfile", "-Command", "Add-AppxPackage -Path " + quote(path)}
}

// Install adds the package at path to the current user
func (i *Installer) Install(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if !i.Supported() {
		return ErrUnsupportedPlatform
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("package not found: %w", err)
	}
	if err := checkContainer(abs); err != nil {
		return err
	}

	name, args := i.Command(abs)
	i.log.Info("installing package", zap.String("path", abs))

	out, err := i.run(ctx, name, args...)
	if err != nil {
		if output := strings.TrimSpace(string(out)); output != "" {
			return fmt.Errorf("Add-AppxPackage failed: %w: %s", err, output)
		}
		return fmt.Errorf("Add-AppxPackage failed: %w", err)
	}

	i.log.Info("package installed", zap.String("path", abs))
	return nil
}

// quote makes s a PowerShell single-quoted literal
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
