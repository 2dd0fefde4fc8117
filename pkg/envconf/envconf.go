// Package envconf resolves the database connection settings for a
// WordPress container from the process environment.
//
// Values can come from three places, in order of precedence: explicit
// WORDPRESS_DB_* variables, the MYSQL_* variables a linked database
// container publishes, and built-in defaults. Any variable may instead
// be supplied through a <NAME>_FILE twin pointing at a file (Docker
// secrets convention).
package envconf

import (
	"os"
	"strings"

	"github.com/wpstrap/wpstrap/pkg/logging"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

// Explicit variables.
const (
	EnvDBName      = "WORDPRESS_DB_NAME"
	EnvDBUser      = "WORDPRESS_DB_USER"
	EnvDBPassword  = "WORDPRESS_DB_PASSWORD"
	EnvDBHost      = "WORDPRESS_DB_HOST"
	EnvDBPort      = "WORDPRESS_DB_PORT"
	EnvDBPingQuery = "WORDPRESS_DB_PING_QUERY"
	EnvTablePrefix = "WORDPRESS_TABLE_PREFIX"
)

// Linked-service variables, populated by the container runtime when a
// database container is linked in.
const (
	EnvLinkedDatabase = "MYSQL_ENV_MYSQL_DATABASE"
	EnvLinkedUser     = "MYSQL_ENV_MYSQL_USER"
	EnvLinkedPassword = "MYSQL_ENV_MYSQL_PASSWORD"
	EnvLinkedAddr     = "MYSQL_PORT_3306_TCP_ADDR"
	EnvLinkedPort     = "MYSQL_PORT_3306_TCP_PORT"
)

// Defaults applied when neither source supplies a value.
const (
	DefaultDBName = "wordpress"
	DefaultDBUser = "wordpress"
	DefaultDBHost = "localhost"
)

// Environment is a snapshot of process environment variables. An unset
// variable is simply absent from the map.
type Environment map[string]string

// OSEnvironment captures the current process environment.
func OSEnvironment() Environment {
	env := make(Environment)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Lookup returns the value of name, honoring the <NAME>_FILE secrets
// convention: when the _FILE twin is set, the trimmed contents of that
// file become the value. Setting both the variable and its twin is a
// configuration error.
func (e Environment) Lookup(name string) (string, error) {
	value := e[name]
	fileName := e[name+"_FILE"]

	if value != "" && fileName != "" {
		return "", wperrors.Newf(wperrors.ErrEnvConflict,
			"both %s and %s_FILE are set (but are exclusive)", name, name)
	}
	if fileName != "" {
		data, err := os.ReadFile(fileName)
		if err != nil {
			return "", wperrors.Wrapf(err, wperrors.ErrEnvFile,
				"reading %s_FILE", name)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return value, nil
}

// Settings is the resolved database configuration. It is constructed
// once per run by Resolve and never mutated afterwards.
type Settings struct {
	Name           string
	User           string
	Password       string
	PasswordSource string // variable name the password came from; empty iff Password is empty
	Host           string
	Port           string // empty means "use the server's default port"
	PingQuery      string
	TablePrefix    string
}

// HostPort renders the host as it appears in DB_HOST: "host" or
// "host:port" when an explicit port was resolved.
func (s Settings) HostPort() string {
	if s.Port == "" {
		return s.Host
	}
	return s.Host + ":" + s.Port
}

// Environ returns the resolved values as environment variables for
// hook scripts and the exec'd main process.
func (s Settings) Environ() map[string]string {
	return map[string]string{
		EnvDBName:     s.Name,
		EnvDBUser:     s.User,
		EnvDBPassword: s.Password,
		EnvDBHost:     s.Host,
		EnvDBPort:     s.Port,
	}
}

// Resolve merges the prioritized sources into a Settings record. It
// never fails on missing values (defaults apply); the only errors are
// _FILE conflicts and unreadable secret files. Ambiguous host sources
// produce warnings, not errors.
func Resolve(env Environment) (Settings, []string, error) {
	logger := logging.GetLogger("envconf")

	get := func(name string, err *error) string {
		if *err != nil {
			return ""
		}
		var v string
		v, *err = env.Lookup(name)
		return v
	}

	var err error
	explicitName := get(EnvDBName, &err)
	explicitUser := get(EnvDBUser, &err)
	explicitPassword := get(EnvDBPassword, &err)
	explicitHost := get(EnvDBHost, &err)
	explicitPort := get(EnvDBPort, &err)
	linkedUser := get(EnvLinkedUser, &err)
	linkedPassword := get(EnvLinkedPassword, &err)
	if err != nil {
		return Settings{}, nil, err
	}

	// Linked-service variables never carry _FILE twins.
	linkedName := env[EnvLinkedDatabase]
	linkedAddr := env[EnvLinkedAddr]
	linkedPort := env[EnvLinkedPort]

	var s Settings
	var warnings []string

	// Database name: explicit, then linked, then default.
	switch {
	case explicitName != "":
		s.Name = explicitName
	case linkedName != "":
		s.Name = linkedName
	default:
		s.Name = DefaultDBName
	}

	// Username and password travel together: a linked password is only
	// trusted when it belongs to the user we ended up with.
	if explicitUser != "" {
		s.User = explicitUser
		switch {
		case explicitPassword != "":
			s.Password = explicitPassword
			s.PasswordSource = EnvDBPassword
		case explicitUser == linkedUser && linkedPassword != "":
			s.Password = linkedPassword
			s.PasswordSource = EnvLinkedPassword
		}
	} else if linkedUser != "" {
		s.User = linkedUser
		if linkedPassword != "" {
			s.Password = linkedPassword
			s.PasswordSource = EnvLinkedPassword
		}
	} else {
		s.User = DefaultDBUser
	}

	// Host: an explicit host always wins, but silently shadowing a
	// linked container is worth a warning.
	switch {
	case explicitHost != "":
		s.Host = explicitHost
		if linkedAddr != "" {
			warnings = append(warnings,
				EnvDBHost+" is set, ignoring linked address in "+EnvLinkedAddr)
		}
	case linkedAddr != "":
		s.Host = linkedAddr
	default:
		s.Host = DefaultDBHost
	}

	// Port: the linked port belongs to the linked address, so it is
	// only honored when the resolved host is that address.
	switch {
	case explicitPort != "":
		s.Port = explicitPort
	case linkedPort != "" && linkedAddr != "" && s.Host == linkedAddr:
		s.Port = linkedPort
	}

	s.PingQuery = env[EnvDBPingQuery]
	s.TablePrefix = env[EnvTablePrefix]

	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	evt := logger.Info().
		Str("name", s.Name).
		Str("user", s.User).
		Str("host", s.HostPort())
	if s.PasswordSource != "" {
		evt = evt.Str("password_source", s.PasswordSource)
	}
	if s.TablePrefix != "" {
		evt = evt.Str("table_prefix", s.TablePrefix)
	}
	evt.Msg("Resolved database settings")

	return s, warnings, nil
}
