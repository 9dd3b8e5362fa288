// Package config loads and watches the editor's settings.
//
// Settings are layered: built-in defaults, then the user settings file,
// then the project settings file, then KEYSTORM_* environment variables.
// Later layers win per field. Files are TOML; a watcher reloads them on
// change and notifies subscribers with the new snapshot.
//
// The settings surface is deliberately small: the core's tunables (tab
// width, wrap width, history depth, the debounce intervals, LSP server
// commands) and nothing renderer-specific.
package config
