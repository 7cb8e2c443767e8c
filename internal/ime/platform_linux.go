//go:build linux

package ime

import (
	"errors"
	"os"
	"os/exec"
	"strings"
)

// LinuxPlatform registers the engine as an IBus component.
type LinuxPlatform struct {
	config PlatformConfig
}

// NewPlatform returns the platform integration for this system.
func NewPlatform(config PlatformConfig) Platform {
	return &LinuxPlatform{config: config}
}

func (p *LinuxPlatform) Name() string {
	return "linux"
}

// Available reports whether an IBus daemon is installed.
func (p *LinuxPlatform) Available() bool {
	if _, err := os.Stat("/usr/share/ibus/component"); err == nil {
		return true
	}
	_, err := exec.LookPath("ibus-daemon")
	return err == nil
}

func (p *LinuxPlatform) Install() error {
	if p.config.Exec == "" {
		return errors.New("engine executable path is required")
	}
	if _, err := InstallComponent(p.config.IBus, p.config.Exec); err != nil {
		return err
	}
	p.restartIBus()
	return nil
}

func (p *LinuxPlatform) Uninstall() error {
	if err := UninstallComponent(p.config.IBus); err != nil {
		return err
	}
	p.restartIBus()
	return nil
}

func (p *LinuxPlatform) restartIBus() {
	// Best effort; the daemon may not be running.
	exec.Command("ibus", "restart").Run()
}

func (p *LinuxPlatform) IsInstalled() bool {
	path, err := ComponentPath(p.config.IBus.EngineName)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (p *LinuxPlatform) IsActive() bool {
	output, err := exec.Command("ibus", "engine").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == p.config.IBus.EngineName
}

func (p *LinuxPlatform) Activate() error {
	return exec.Command("ibus", "engine", p.config.IBus.EngineName).Run()
}

var _ Platform = (*LinuxPlatform)(nil)
