package wpconfig

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/wpstrap/wpstrap/pkg/envconf"
	"github.com/wpstrap/wpstrap/pkg/filesystem"
	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// Constant is a single declaration handed to the generator.
type Constant struct {
	Key   string
	Value interface{}
}

// GenerateArgs carries everything the fresh-config generator needs to
// produce a valid wp-config.php.
type GenerateArgs struct {
	Path        string
	DBName      string
	DBUser      string
	DBPassword  string
	DBHost      string // host or host:port
	TablePrefix string
	Constants   []Constant
}

// Generator produces a fresh configuration file with default
// declarations. The real implementation shells out to WP-CLI; tests
// supply fakes.
type Generator interface {
	Create(ctx context.Context, args GenerateArgs) error
}

// truthyTokens are the values accepted as "true" for boolean-like
// environment variables, matched case-insensitively.
var truthyTokens = map[string]struct{}{
	"on": {}, "y": {}, "yes": {}, "1": {}, "t": {}, "true": {}, "enabled": {},
}

// IsTruthy reports whether a boolean-like environment value counts as
// true.
func IsTruthy(value string) bool {
	_, ok := truthyTokens[strings.ToLower(value)]
	return ok
}

// Debug and behavior toggles.
const (
	EnvDebug             = "WORDPRESS_DEBUG"
	EnvDebugDisplay      = "WORDPRESS_DEBUG_DISPLAY"
	EnvDebugLog          = "WORDPRESS_DEBUG_LOG"
	EnvHTTPBlockExternal = "WORDPRESS_HTTP_BLOCK_EXTERNAL"
)

// HTTPBlockConstants emits WP_HTTP_BLOCK_EXTERNAL only when the toggle
// is truthy, leaving the host default alone otherwise.
func HTTPBlockConstants(env envconf.Environment) []Constant {
	if IsTruthy(env[EnvHTTPBlockExternal]) {
		return []Constant{{Key: "WP_HTTP_BLOCK_EXTERNAL", Value: true}}
	}
	return nil
}

// DebugFlags holds the raw debug-related environment values.
type DebugFlags struct {
	Debug   string
	Display string
	Log     string
}

// DebugFlagsFromEnv collects the debug toggles from the environment.
func DebugFlagsFromEnv(env envconf.Environment) DebugFlags {
	return DebugFlags{
		Debug:   env[EnvDebug],
		Display: env[EnvDebugDisplay],
		Log:     env[EnvDebugLog],
	}
}

// Constants translates the flags into explicit declarations, emitting
// an override only when one is actually requested so the generator's
// own defaults survive otherwise. WP_DEBUG and WP_DEBUG_LOG are only
// ever turned on explicitly. WP_DEBUG_DISPLAY is only turned off when
// its variable is non-empty and not truthy: WordPress defaults display
// to on but logging to off, so an empty variable must not force an
// override.
func (d DebugFlags) Constants() []Constant {
	var constants []Constant
	if IsTruthy(d.Debug) {
		constants = append(constants, Constant{Key: "WP_DEBUG", Value: true})
	}
	if d.Display != "" && !IsTruthy(d.Display) {
		constants = append(constants, Constant{Key: "WP_DEBUG_DISPLAY", Value: false})
	}
	if IsTruthy(d.Log) {
		constants = append(constants, Constant{Key: "WP_DEBUG_LOG", Value: true})
	}
	return constants
}

// Reconciler owns a configuration file for the duration of one run and
// brings it to the state a Settings record describes.
type Reconciler struct {
	FS        filesystem.FS
	Path      string
	Generator Generator
}

// Reconcile creates the file through the generator when it is absent,
// or patches the resolved declarations in place when it exists. Fields
// that resolved empty leave the file untouched. The operation is
// idempotent: a second run with the same settings leaves the file
// byte-identical. Additional constants (extra) are only used on the
// create path, alongside the debug directives.
func (r *Reconciler) Reconcile(ctx context.Context, settings envconf.Settings, debug DebugFlags, extra ...Constant) error {
	logger := logging.GetLogger("wpconfig.reconcile")

	_, err := r.FS.Stat(r.Path)
	switch {
	case err == nil:
		return r.patchExisting(settings)
	case errors.Is(err, fs.ErrNotExist):
		logger.Info().Str("path", r.Path).Msg("Configuration absent, generating")
		args := GenerateArgs{
			Path:        r.Path,
			DBName:      settings.Name,
			DBUser:      settings.User,
			DBPassword:  settings.Password,
			DBHost:      settings.HostPort(),
			TablePrefix: settings.TablePrefix,
			Constants:   append(debug.Constants(), extra...),
		}
		if err := r.Generator.Create(ctx, args); err != nil {
			return wperrors.Wrapf(err, wperrors.ErrConfigGenerate, "generating %s", r.Path)
		}
		return nil
	default:
		return wperrors.Wrapf(err, wperrors.ErrConfigRead, "checking %s", r.Path)
	}
}

func (r *Reconciler) patchExisting(settings envconf.Settings) error {
	logger := logging.GetLogger("wpconfig.reconcile")
	logger.Info().Str("path", r.Path).Msg("Configuration present, patching")

	patches := []Constant{
		{Key: "DB_HOST", Value: settings.HostPort()},
		{Key: "DB_USER", Value: settings.User},
		{Key: "DB_PASSWORD", Value: settings.Password},
		{Key: "DB_NAME", Value: settings.Name},
		{Key: "$table_prefix", Value: settings.TablePrefix},
	}

	for _, p := range patches {
		if s, ok := p.Value.(string); ok && s == "" {
			continue
		}
		if _, err := PatchConstant(r.FS, r.Path, p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}
