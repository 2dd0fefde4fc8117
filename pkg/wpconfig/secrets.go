package wpconfig

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/wpstrap/wpstrap/pkg/envconf"
	"github.com/wpstrap/wpstrap/pkg/filesystem"
	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// SecretPlaceholder is the sentinel WordPress ships in its sample
// configuration to mark a secret as not yet generated.
const SecretPlaceholder = "put your unique phrase here"

// SecretKeys are the eight authentication keys and salts, in the order
// they are provisioned. Each may be overridden through the environment
// variable "WORDPRESS_" + name.
var SecretKeys = []string{
	"AUTH_KEY",
	"SECURE_AUTH_KEY",
	"LOGGED_IN_KEY",
	"NONCE_KEY",
	"AUTH_SALT",
	"SECURE_AUTH_SALT",
	"LOGGED_IN_SALT",
	"NONCE_SALT",
}

// secretByteLen gives 160 bits of entropy, hex-encoded to 40 chars.
const secretByteLen = 20

func generateSecret() (string, error) {
	buf := make([]byte, secretByteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", wperrors.Wrap(err, wperrors.ErrSecretGenerate, "reading random bytes")
	}
	return hex.EncodeToString(buf), nil
}

// ProvisionSecrets makes sure every secret declaration holds a real
// value. An environment override is patched in as-is; a declaration
// still holding the placeholder gets a freshly generated value; any
// other existing value is left alone so live sessions stay valid.
func ProvisionSecrets(fsys filesystem.FS, path string, env envconf.Environment) error {
	logger := logging.GetLogger("wpconfig.secrets")

	for _, name := range SecretKeys {
		override, err := env.Lookup("WORDPRESS_" + name)
		if err != nil {
			return err
		}
		if override != "" {
			if _, err := PatchConstant(fsys, path, name, override); err != nil {
				return err
			}
			logger.Debug().Str("key", name).Msg("Secret set from environment")
			continue
		}

		current, found, err := ConstantValue(fsys, path, name)
		if err != nil {
			return err
		}
		if !found || current != SecretPlaceholder {
			continue
		}

		secret, err := generateSecret()
		if err != nil {
			return err
		}
		if _, err := PatchConstant(fsys, path, name, secret); err != nil {
			return err
		}
		logger.Info().Str("key", name).Msg("Generated secret")
	}
	return nil
}
