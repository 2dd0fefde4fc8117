package entrypoint

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// WPCLIInstaller populates an empty document root with "wp core
// download". A docroot that already carries a WordPress tree is left
// exactly as it is.
type WPCLIInstaller struct {
	Bin       string
	AllowRoot bool
}

func (i *WPCLIInstaller) bin() string {
	if i.Bin == "" {
		return "wp"
	}
	return i.Bin
}

func (i *WPCLIInstaller) Ensure(ctx context.Context, docroot string) error {
	logger := logging.GetLogger("entrypoint.installer")

	// wp-includes/version.php is the canonical marker of an unpacked tree.
	marker := filepath.Join(docroot, "wp-includes", "version.php")
	if _, err := os.Stat(marker); err == nil {
		logger.Debug().Str("docroot", docroot).Msg("WordPress already present")
		return nil
	}

	logger.Info().Str("docroot", docroot).Msg("Downloading WordPress")
	args := []string{"core", "download", "--path=" + docroot}
	if i.AllowRoot {
		args = append(args, "--allow-root")
	}
	cmd := exec.CommandContext(ctx, i.bin(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return wperrors.Wrapf(err, wperrors.ErrInstallFailed,
			"wp core download: %s", string(out))
	}
	return nil
}

var _ Installer = (*WPCLIInstaller)(nil)
