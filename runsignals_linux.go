//go:build linux
// +build linux

package ui

import (
	"os"
	"syscall"
)

// signals that end the session of a Viewer
func signals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
}
