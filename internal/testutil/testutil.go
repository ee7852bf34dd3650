// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// WriteFile writes body to rel under root, creating parent directories, and
// returns the absolute path.
func WriteFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// WriteTree writes every rel -> body pair under root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		WriteFile(t, root, rel, body)
	}
}

// Doc returns a document with a title front matter block. extra is appended
// verbatim inside the block, one "key: value" per line.
func Doc(title, body string, extra ...string) string {
	var b strings.Builder
	b.WriteString("---\ntitle: ")
	b.WriteString(title)
	b.WriteString("\n")
	for _, line := range extra {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String()
}

// SetMTime sets both access and modification time of path.
func SetMTime(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mod, mod))
}

// FileAssertions checks file system state below a base directory.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// Exists fails the test when rel is missing.
func (fa *FileAssertions) Exists(rel string) *FileAssertions {
	fa.t.Helper()
	_, err := os.Stat(filepath.Join(fa.baseDir, filepath.FromSlash(rel)))
	require.NoError(fa.t, err, "expected %s to exist", rel)
	return fa
}

// Contains fails the test when rel does not contain want.
func (fa *FileAssertions) Contains(rel, want string) *FileAssertions {
	fa.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(filepath.Join(fa.baseDir, filepath.FromSlash(rel)))
	require.NoError(fa.t, err)
	require.Contains(fa.t, string(data), want, "file %s", rel)
	return fa
}
