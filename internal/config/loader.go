package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// SettingsFileName is the file loaded from the user and project config
// directories.
const SettingsFileName = "keystorm.toml"

// mergeFile decodes a TOML file over the settings in place. A missing
// file is not an error; a malformed one is.
func mergeFile(s *Settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// envPrefix namespaces the environment overrides.
const envPrefix = "KEYSTORM_"

// mergeEnvironment applies KEYSTORM_* overrides. Unknown names are
// ignored; unparsable values leave the field alone.
func mergeEnvironment(s *Settings, environ []string) {
	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		applyEnvOverride(s, strings.TrimPrefix(key, envPrefix), value)
	}
}

func applyEnvOverride(s *Settings, name, value string) {
	switch name {
	case "EDITOR_TAB_WIDTH":
		if n, err := strconv.Atoi(value); err == nil {
			s.Editor.TabWidth = n
		}
	case "EDITOR_INSERT_SPACES":
		if b, err := strconv.ParseBool(value); err == nil {
			s.Editor.InsertSpaces = b
		}
	case "EDITOR_MAX_UNDO_ENTRIES":
		if n, err := strconv.Atoi(value); err == nil {
			s.Editor.MaxUndoEntries = n
		}
	case "EDITOR_LINE_ENDING":
		s.Editor.LineEnding = strings.ToLower(value)
	case "DISPLAY_WRAP_WIDTH":
		if n, err := strconv.Atoi(value); err == nil {
			s.Display.WrapWidth = n
		}
	case "DISPLAY_TAB_SIZE":
		if n, err := strconv.Atoi(value); err == nil {
			s.Display.TabSize = n
		}
	case "LSP_ENABLED":
		if b, err := strconv.ParseBool(value); err == nil {
			s.LSP.Enabled = b
		}
	case "LSP_REQUEST_TIMEOUT_MS":
		if n, err := strconv.Atoi(value); err == nil {
			s.LSP.RequestTimeoutMs = n
		}
	case "LOG_LEVEL":
		s.Logging.Level = strings.ToLower(value)
	case "LOG_FILE":
		s.Logging.File = value
	}
}
