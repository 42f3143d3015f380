package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace roots all file access at one directory and rejects paths that
// resolve outside it.
type Workspace struct {
	root string
}

// New creates a Workspace rooted at dir. The directory must exist.
func New(dir string) (*Workspace, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", root)
	}
	return &Workspace{root: root}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string { return w.root }

// Resolve validates path and returns its absolute form inside the workspace.
// Relative paths are joined to the root; any path escaping the root is
// rejected.
func (w *Workspace) Resolve(path string) (string, error) {
	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Join(w.root, path)
	}
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path outside workspace: %s", path)
	}
	return abs, nil
}

// ReadFile returns the whole file content.
func (w *Workspace) ReadFile(path string) (string, error) {
	abs, err := w.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// ReadLines returns lines startLine..endLine (1-indexed, inclusive).
// endLine <= 0 means end of file.
func (w *Workspace) ReadLines(path string, startLine, endLine int) (string, error) {
	content, err := w.ReadFile(path)
	if err != nil {
		return "", err
	}
	lines := strings.Split(content, "\n")

	start := startLine - 1
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return "", nil
	}
	end := len(lines)
	if endLine > 0 && endLine < end {
		end = endLine
	}
	return strings.Join(lines[start:end], "\n"), nil
}

// Snippet extracts the lines around line (1-indexed) with context lines on
// each side. A line below 1 returns the whole file, matching the upstream
// report convention for file-level issues.
func (w *Workspace) Snippet(path string, line, context int) (string, error) {
	content, err := w.ReadFile(path)
	if err != nil {
		return "", err
	}
	if line < 1 {
		return strings.TrimRight(content, "\n"), nil
	}

	lines := strings.Split(content, "\n")
	start := line - context - 1
	if start < 0 {
		start = 0
	}
	end := line + context
	if end > len(lines) {
		end = len(lines)
	}
	if start >= len(lines) {
		start = len(lines) - 1
	}
	return strings.TrimRight(strings.Join(lines[start:end], "\n"), "\n"), nil
}
