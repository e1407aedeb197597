package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportDoc = `{
  "bookmarks": [
    {"id": "bool-basics", "title": "Boolean Basics", "type": "lesson", "category": "Training", "dateAdded": "2025-03-10T12:00:00Z", "tags": ["boolean"]},
    {"id": "sourcing", "title": "Sourcing Prompt", "type": "prompt", "category": "Prompts", "dateAdded": "2025-03-09T12:00:00Z"}
  ],
  "exportDate": "2025-03-10T12:00:00Z",
  "version": "1.0"
}`

func setupWorkspace(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HUBMARKS_STORAGE", "sqlite")
	t.Setenv("HUBMARKS_SQLITE_PATH", filepath.Join(dir, "hubmarks.db"))
	t.Setenv("HUBMARKS_PRETTY_LOG", "false")

	path := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(path, []byte(exportDoc), 0o644))
	return path
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := fn(cmd, args)
	return out.String(), err
}

func TestImportListStats(t *testing.T) {
	path := setupWorkspace(t)

	out, err := run(t, runImport, path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 bookmark(s), 2 total")

	// Importing again adds nothing
	out, err = run(t, runImport, path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 0 bookmark(s), 2 total")

	out, err = run(t, runList)
	require.NoError(t, err)
	assert.Contains(t, out, "bool-basics")
	assert.Contains(t, out, "sourcing")
	assert.Contains(t, out, "2 bookmark(s)")

	listType = "prompt"
	defer func() { listType = "" }()
	out, err = run(t, runList)
	require.NoError(t, err)
	assert.NotContains(t, out, "bool-basics")
	assert.Contains(t, out, "1 bookmark(s)")

	out, err = run(t, runStats)
	require.NoError(t, err)
	assert.Contains(t, out, "Total:          2")
	assert.Contains(t, out, "Training")
}

func TestImportInvalidFile(t *testing.T) {
	dir := filepath.Dir(setupWorkspace(t))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))

	_, err := run(t, runImport, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid export file")
}

func TestExportToFile(t *testing.T) {
	path := setupWorkspace(t)
	_, err := run(t, runImport, path)
	require.NoError(t, err)

	exportOut = filepath.Join(filepath.Dir(path), "out.json")
	defer func() { exportOut = "" }()

	_, err = run(t, runExport)
	require.NoError(t, err)

	data, err := os.ReadFile(exportOut)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"bookmarks\": ["))
	assert.Contains(t, string(data), `"version": "1.0"`)
}

func TestClearRequiresYes(t *testing.T) {
	path := setupWorkspace(t)
	_, err := run(t, runImport, path)
	require.NoError(t, err)

	_, err = run(t, runClear)
	assert.Error(t, err)

	clearYes = true
	defer func() { clearYes = false }()

	out, err := run(t, runClear)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 2 bookmark(s)")

	out, err = run(t, runList)
	require.NoError(t, err)
	assert.Contains(t, out, "0 bookmark(s)")
}

func TestImportHTML(t *testing.T) {
	dir := filepath.Dir(setupWorkspace(t))
	path := filepath.Join(dir, "bookmarks.html")
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3>Tools</H3>
    <DL><p>
        <DT><A HREF="https://go.dev">Go</A>
        <DT><A HREF="https://pkg.go.dev">Packages</A>
    </DL><p>
</DL><p>
`
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	out, err := run(t, runImportHTML, path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 link(s), skipped 0, 2 total")

	out, err = run(t, runImportHTML, path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 0 link(s), skipped 2, 2 total")

	listCategory = "Tools"
	defer func() { listCategory = "" }()
	out, err = run(t, runList)
	require.NoError(t, err)
	assert.Contains(t, out, "Packages")
	assert.Contains(t, out, "2 bookmark(s)")
}
