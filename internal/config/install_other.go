//go:build !linux

package config

import (
	"fmt"
	"log/slog"
	"runtime"
)

// InstallCommand is a stub outside Linux: the gadget character device this
// bridge drives is a Linux kernel feature, so there is no service manager
// integration to offer elsewhere.
type InstallCommand struct{}

// UninstallCommand mirrors InstallCommand's stub on non-Linux platforms.
type UninstallCommand struct{}

func (c *InstallCommand) Run(logger *slog.Logger) error {
	return fmt.Errorf("install is not supported on %s: USB gadget mode is Linux-only", runtime.GOOS)
}

func (c *UninstallCommand) Run(logger *slog.Logger) error {
	return fmt.Errorf("uninstall is not supported on %s: USB gadget mode is Linux-only", runtime.GOOS)
}
