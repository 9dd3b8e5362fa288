package lsp

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// ServerConfig defines how to start a language server.
type ServerConfig struct {
	// Command is the executable to run.
	Command string

	// Args are command-line arguments.
	Args []string

	// WorkDir is not read when the server starts: the process always runs
	// in the editor's own working directory.
	WorkDir string
}

// DefaultServerConfigs maps language ids to stock server commands.
func DefaultServerConfigs() map[string]ServerConfig {
	return map[string]ServerConfig{
		"go":         {Command: "gopls", Args: []string{"serve"}},
		"rust":       {Command: "rust-analyzer"},
		"python":     {Command: "pylsp"},
		"typescript": {Command: "typescript-language-server", Args: []string{"--stdio"}},
		"javascript": {Command: "typescript-language-server", Args: []string{"--stdio"}},
		"c":          {Command: "clangd"},
		"cpp":        {Command: "clangd"},
		"zig":        {Command: "zls"},
	}
}

// languageByExtension maps file extensions to language ids.
var languageByExtension = map[string]string{
	".go":    "go",
	".rs":    "rust",
	".py":    "python",
	".pyi":   "python",
	".ts":    "typescript",
	".tsx":   "typescriptreact",
	".js":    "javascript",
	".jsx":   "javascriptreact",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".zig":   "zig",
	".java":  "java",
	".rb":    "ruby",
	".php":   "php",
	".lua":   "lua",
	".sh":    "shellscript",
	".bash":  "shellscript",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".md":    "markdown",
	".html":  "html",
	".css":   "css",
	".sql":   "sql",
	".proto": "proto",
}

// DetectLanguageID returns the language id for a file path, or "" when
// the extension is unknown.
func DetectLanguageID(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return languageByExtension[ext]
}

// FilePathToURI converts a filesystem path to a file:// URI.
func FilePathToURI(path string) DocumentURI {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.ToSlash(abs)
	if runtime.GOOS == "windows" && !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	u := url.URL{Scheme: "file", Path: abs}
	return DocumentURI(u.String())
}

// URIToFilePath converts a file:// URI back to a filesystem path.
// Non-file URIs are returned as-is.
func URIToFilePath(uri DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return string(uri)
	}
	path := u.Path
	if runtime.GOOS == "windows" {
		path = strings.TrimPrefix(path, "/")
	}
	return filepath.FromSlash(path)
}
