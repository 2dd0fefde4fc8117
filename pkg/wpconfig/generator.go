package wpconfig

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// WPCLIGenerator creates wp-config.php by shelling out to WP-CLI.
type WPCLIGenerator struct {
	// Bin is the WP-CLI binary, "wp" by default.
	Bin string
	// AllowRoot passes --allow-root; container entrypoints usually run
	// as root before dropping privileges.
	AllowRoot bool
}

func (g *WPCLIGenerator) bin() string {
	if g.Bin == "" {
		return "wp"
	}
	return g.Bin
}

// Create runs "wp config create" with the resolved database arguments,
// then "wp config set" for each explicit constant override.
func (g *WPCLIGenerator) Create(ctx context.Context, args GenerateArgs) error {
	logger := logging.GetLogger("wpconfig.generator")
	docroot := filepath.Dir(args.Path)

	createArgs := []string{
		"config", "create",
		"--path=" + docroot,
		"--dbname=" + args.DBName,
		"--dbuser=" + args.DBUser,
		"--dbhost=" + args.DBHost,
		"--skip-check",
	}
	if args.DBPassword != "" {
		createArgs = append(createArgs, "--dbpass="+args.DBPassword)
	}
	if args.TablePrefix != "" {
		createArgs = append(createArgs, "--dbprefix="+args.TablePrefix)
	}
	if g.AllowRoot {
		createArgs = append(createArgs, "--allow-root")
	}

	if err := g.run(ctx, createArgs); err != nil {
		return err
	}

	for _, c := range args.Constants {
		setArgs := []string{
			"config", "set", c.Key, fmt.Sprintf("%v", c.Value),
			"--path=" + docroot,
			"--type=constant",
		}
		if _, isString := c.Value.(string); !isString {
			setArgs = append(setArgs, "--raw")
		}
		if g.AllowRoot {
			setArgs = append(setArgs, "--allow-root")
		}
		if err := g.run(ctx, setArgs); err != nil {
			return err
		}
	}

	logger.Info().Str("path", args.Path).Int("constants", len(args.Constants)).
		Msg("Generated configuration")
	return nil
}

func (g *WPCLIGenerator) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, g.bin(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return wperrors.Wrapf(err, wperrors.ErrConfigGenerate,
			"%s %s: %s", g.bin(), args[1], string(out))
	}
	return nil
}

var _ Generator = (*WPCLIGenerator)(nil)
