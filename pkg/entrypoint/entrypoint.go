// Package entrypoint wires the resolver, database waiter, reconciler,
// secret provisioner and hook runner into the single sequential pass a
// container start performs, ending with an exec of the main process.
package entrypoint

import (
	"context"
	"os"
	"os/exec"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wpstrap/wpstrap/pkg/config"
	"github.com/wpstrap/wpstrap/pkg/dbwait"
	"github.com/wpstrap/wpstrap/pkg/envconf"
	"github.com/wpstrap/wpstrap/pkg/filesystem"
	"github.com/wpstrap/wpstrap/pkg/hooks"
	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wpconfig"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// Variables exported for hook scripts and the exec'd process.
const (
	EnvDriver       = "WORDPRESS_DB_DRIVER"
	EnvDocroot      = "WPSTRAP_DOCROOT"
	EnvHooksPreDir  = "WPSTRAP_HOOKS_PRE_DIR"
	EnvHooksPostDir = "WPSTRAP_HOOKS_POST_DIR"
)

// Installer ensures the document root holds a WordPress tree before
// the configuration is reconciled. Downloading and unpacking are the
// image's business; the real implementation shells out to WP-CLI.
type Installer interface {
	Ensure(ctx context.Context, docroot string) error
}

// ExecFunc replaces the current process image. The default is
// syscall.Exec; tests substitute a recorder.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// HookFunc runs one hook directory. The default is hooks.RunDir.
type HookFunc func(ctx context.Context, dir string) error

// Options carries the run's configuration and collaborators. Zero
// collaborators get production defaults.
type Options struct {
	Config  config.Settings
	Args    []string // command to exec once provisioning is done
	EnvFile string   // optional dotenv file loaded before resolution

	FS        filesystem.FS
	Generator wpconfig.Generator
	Installer Installer
	NewPinger func(envconf.Settings) dbwait.Pinger
	RunHooks  HookFunc
	Exec      ExecFunc
}

func (o *Options) defaults() {
	if o.FS == nil {
		o.FS = filesystem.NewOS()
	}
	if o.Generator == nil {
		o.Generator = &wpconfig.WPCLIGenerator{
			Bin:       o.Config.WPCLIBin,
			AllowRoot: o.Config.WPCLIAllowRoot,
		}
	}
	if o.Installer == nil {
		o.Installer = &WPCLIInstaller{
			Bin:       o.Config.WPCLIBin,
			AllowRoot: o.Config.WPCLIAllowRoot,
		}
	}
	if o.NewPinger == nil {
		o.NewPinger = func(s envconf.Settings) dbwait.Pinger {
			return dbwait.NewMySQLPinger(s)
		}
	}
	if o.RunHooks == nil {
		o.RunHooks = hooks.RunDir
	}
	if o.Exec == nil {
		o.Exec = syscall.Exec
	}
}

// Run performs the provisioning pass and execs the main process. Every
// step is idempotent or a pure read, so an interrupted run is safe to
// repeat.
func Run(ctx context.Context, opts Options) error {
	logger := logging.GetLogger("entrypoint")
	opts.defaults()

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return wperrors.Wrapf(err, wperrors.ErrEnvFile, "loading env file %s", opts.EnvFile)
		}
		logger.Debug().Str("path", opts.EnvFile).Msg("Loaded env file")
	}

	env := envconf.OSEnvironment()
	settings, _, err := envconf.Resolve(env)
	if err != nil {
		return err
	}

	if err := exportEnviron(settings, opts.Config); err != nil {
		return err
	}

	if err := opts.RunHooks(ctx, opts.Config.HooksPreDir); err != nil {
		return err
	}

	if opts.Config.DBSkipWait {
		logger.Info().Msg("Database wait disabled")
	} else {
		err := dbwait.Wait(ctx, opts.NewPinger(settings),
			opts.Config.DBWaitAttempts, opts.Config.DBWaitInterval)
		if err != nil {
			return err
		}
	}

	if err := opts.Installer.Ensure(ctx, opts.Config.Docroot); err != nil {
		return err
	}

	reconciler := &wpconfig.Reconciler{
		FS:        opts.FS,
		Path:      opts.Config.ConfigPath(),
		Generator: opts.Generator,
	}
	debug := wpconfig.DebugFlagsFromEnv(env)
	if err := reconciler.Reconcile(ctx, settings, debug, wpconfig.HTTPBlockConstants(env)...); err != nil {
		return err
	}

	if err := wpconfig.ProvisionSecrets(opts.FS, opts.Config.ConfigPath(), env); err != nil {
		return err
	}

	if err := opts.RunHooks(ctx, opts.Config.HooksPostDir); err != nil {
		return err
	}

	if len(opts.Args) == 0 {
		logger.Info().Msg("No command given, provisioning only")
		return nil
	}

	argv0, err := exec.LookPath(opts.Args[0])
	if err != nil {
		return wperrors.Wrapf(err, wperrors.ErrExecFailed, "locating %s", opts.Args[0])
	}
	logger.Info().Str("command", argv0).Msg("Handing over to main process")
	if err := opts.Exec(argv0, opts.Args, os.Environ()); err != nil {
		return wperrors.Wrapf(err, wperrors.ErrExecFailed, "exec %s", argv0)
	}
	return nil
}

func exportEnviron(settings envconf.Settings, cfg config.Settings) error {
	exported := settings.Environ()
	exported[EnvDriver] = dbwait.Driver
	exported[EnvDocroot] = cfg.Docroot
	exported[EnvHooksPreDir] = cfg.HooksPreDir
	exported[EnvHooksPostDir] = cfg.HooksPostDir

	for k, v := range exported {
		if err := os.Setenv(k, v); err != nil {
			return wperrors.Wrapf(err, wperrors.ErrInternal, "exporting %s", k)
		}
	}
	return nil
}
