//go:build freebsd || openbsd || netbsd || dragonfly || darwin || windows || linux || solaris
// +build freebsd openbsd netbsd dragonfly darwin windows linux solaris

package ui

import "github.com/fsnotify/fsnotify"

// newFsWatcher creates the watcher used by DirFeed (only on platforms supported by fsnotify).
func newFsWatcher() (*fsnotify.Watcher, error) {
	return fsnotify.NewWatcher()
}
