//go:build !(freebsd || openbsd || netbsd || dragonfly || darwin || windows || linux || solaris)
// +build !freebsd,!openbsd,!netbsd,!dragonfly,!darwin,!windows,!linux,!solaris

package ui

import (
	"errors"

	"github.com/fsnotify/fsnotify"
)

func newFsWatcher() (*fsnotify.Watcher, error) {
	return nil, errors.New("directory feeds are not supported on this platform")
}
