package hooks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wpstrap/wpstrap/pkg/hooks"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// writeHook drops a shell script into dir that appends its own name to
// the marker file, so tests can assert execution and ordering.
func writeHook(t *testing.T, dir, name, marker string, mode os.FileMode) {
	t.Helper()
	script := "#!/bin/sh\necho " + name + " >> " + marker + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), mode))
}

func TestRunDirExecutesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "marker")

	writeHook(t, dir, "20-second.sh", marker, 0o755)
	writeHook(t, dir, "10-first.sh", marker, 0o755)

	require.NoError(t, hooks.RunDir(context.Background(), dir))

	out, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "10-first.sh\n20-second.sh\n", string(out))
}

func TestRunDirSkipsNonExecutable(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "marker")

	writeHook(t, dir, "10-skipped.sh", marker, 0o644)
	writeHook(t, dir, "20-run.sh", marker, 0o755)

	require.NoError(t, hooks.RunDir(context.Background(), dir))

	out, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "20-run.sh\n", string(out))
}

func TestRunDirSkipsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	require.NoError(t, hooks.RunDir(context.Background(), dir))
}

func TestRunDirMissingDirectoryIsNoOp(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	require.NoError(t, hooks.RunDir(context.Background(), missing))
}

func TestRunDirFailingHookAborts(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "marker")

	script := "#!/bin/sh\nexit 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10-fail.sh"), []byte(script), 0o755))
	writeHook(t, dir, "20-never.sh", marker, 0o755)

	err := hooks.RunDir(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, wperrors.IsCode(err, wperrors.ErrHookFailed))

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "hooks after the failure must not run")
}
