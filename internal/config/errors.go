package config

import "errors"

var (
	// ErrClosed indicates the config system has been shut down.
	ErrClosed = errors.New("config: closed")

	// ErrNotLoaded is returned by the watcher setup when none of the
	// config directories could be watched.
	ErrNotLoaded = errors.New("config: not loaded")
)
