// Package hooks runs operator-supplied extension scripts at fixed
// points of the entrypoint run, in the spirit of the familiar
// /docker-entrypoint-initdb.d convention.
package hooks

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// RunDir executes every regular executable file in dir, in lexical
// order, with no arguments and the current process environment. A
// non-executable regular file is skipped with a diagnostic. A missing
// directory is a no-op. A failing hook aborts the run.
func RunDir(ctx context.Context, dir string) error {
	logger := logging.GetLogger("hooks")

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("dir", dir).Msg("Hook directory absent, skipping")
		return nil
	}
	if err != nil {
		return wperrors.Wrapf(err, wperrors.ErrHookFailed, "reading hook directory %s", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return wperrors.Wrapf(err, wperrors.ErrHookFailed, "stat %s", path)
		}
		if !info.Mode().IsRegular() {
			logger.Debug().Str("path", path).Msg("Not a regular file, skipping")
			continue
		}
		if info.Mode().Perm()&0o111 == 0 {
			logger.Warn().Str("path", path).Msg("Hook is not executable, skipping")
			continue
		}

		logger.Info().Str("path", path).Msg("Running hook")
		cmd := exec.CommandContext(ctx, path)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return wperrors.Wrapf(err, wperrors.ErrHookFailed, "hook %s", path)
		}
	}
	return nil
}
