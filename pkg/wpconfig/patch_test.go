package wpconfig

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wpstrap/wpstrap/pkg/filesystem"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

const sampleConfig = `<?php
/**
 * The base configuration for WordPress
 */

// ** Database settings ** //
define( 'DB_NAME', 'database_name_here' );

/** Database username */
define( 'DB_USER', "username_here" );

/** Database password */
define( 'DB_PASSWORD', 'password_here' );

/** Database hostname */
define( 'DB_HOST', 'localhost' );

define( 'AUTH_KEY', 'put your unique phrase here' );

define( 'WP_DEBUG', false );

$table_prefix = 'wp_';

require_once ABSPATH . 'wp-settings.php';
`

const configPath = "/var/www/html/wp-config.php"

func newTestFS(t *testing.T, content string) filesystem.FS {
	t.Helper()
	fsys := filesystem.NewAfero(afero.NewMemMapFs())
	require.NoError(t, fsys.MkdirAll("/var/www/html", 0o755))
	require.NoError(t, fsys.WriteFile(configPath, []byte(content), 0o644))
	return fsys
}

func readConfig(t *testing.T, fsys filesystem.FS) string {
	t.Helper()
	data, err := fsys.ReadFile(configPath)
	require.NoError(t, err)
	return string(data)
}

func TestPatchConstantString(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	patched, err := PatchConstant(fsys, configPath, "DB_NAME", "blog")
	require.NoError(t, err)
	assert.True(t, patched)

	content := readConfig(t, fsys)
	assert.Contains(t, content, "define( 'DB_NAME', 'blog' );")
	assert.NotContains(t, content, "database_name_here")
}

func TestPatchConstantDoubleQuotedOriginal(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	patched, err := PatchConstant(fsys, configPath, "DB_USER", "alice")
	require.NoError(t, err)
	assert.True(t, patched)

	// Re-emitted single-quoted regardless of the original quote style.
	assert.Contains(t, readConfig(t, fsys), "define( 'DB_USER', 'alice' );")
}

func TestPatchConstantIsolation(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	_, err := PatchConstant(fsys, configPath, "DB_PASSWORD", "s3cr3t")
	require.NoError(t, err)

	before := strings.Split(sampleConfig, "\n")
	after := strings.Split(readConfig(t, fsys), "\n")
	require.Equal(t, len(before), len(after))

	for i := range before {
		if strings.Contains(before[i], "DB_PASSWORD") {
			assert.Equal(t, "define( 'DB_PASSWORD', 's3cr3t' );", after[i])
			continue
		}
		assert.Equal(t, before[i], after[i], "line %d must be untouched", i+1)
	}
}

func TestPatchConstantQuotingSafety(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)
	hostile := `it's a "mix" of \ quotes \' here`

	_, err := PatchConstant(fsys, configPath, "DB_PASSWORD", hostile)
	require.NoError(t, err)

	got, found, err := ConstantValue(fsys, configPath, "DB_PASSWORD")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, hostile, got)
}

func TestPatchConstantRegexpMetacharsInValue(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)
	value := `pa$$word ${1} \0`

	_, err := PatchConstant(fsys, configPath, "DB_PASSWORD", value)
	require.NoError(t, err)

	got, found, err := ConstantValue(fsys, configPath, "DB_PASSWORD")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, value, got)
}

func TestPatchConstantMissingKeyIsNoOp(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	patched, err := PatchConstant(fsys, configPath, "DB_CHARSET", "utf8mb4")
	require.NoError(t, err)
	assert.False(t, patched)
	assert.Equal(t, sampleConfig, readConfig(t, fsys))
}

func TestPatchConstantBool(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	patched, err := PatchConstant(fsys, configPath, "WP_DEBUG", true)
	require.NoError(t, err)
	assert.True(t, patched)
	assert.Contains(t, readConfig(t, fsys), "define( 'WP_DEBUG', true );")
}

func TestPatchVariableAssignment(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	patched, err := PatchConstant(fsys, configPath, "$table_prefix", "wp2_")
	require.NoError(t, err)
	assert.True(t, patched)

	content := readConfig(t, fsys)
	assert.Contains(t, content, "$table_prefix = 'wp2_';")
	assert.NotContains(t, content, "'wp_'")
}

func TestPatchConstantMissingFile(t *testing.T) {
	fsys := filesystem.NewAfero(afero.NewMemMapFs())

	_, err := PatchConstant(fsys, configPath, "DB_NAME", "blog")
	require.Error(t, err)
	assert.True(t, wperrors.IsCode(err, wperrors.ErrConfigRead))
}

func TestPatchConstantUnsupportedValue(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	_, err := PatchConstant(fsys, configPath, "DB_NAME", 3.14)
	require.Error(t, err)
	assert.True(t, wperrors.IsCode(err, wperrors.ErrInvalidInput))
}

func TestConstantValueMissingKey(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	_, found, err := ConstantValue(fsys, configPath, "DB_CHARSET")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConstantValueNonString(t *testing.T) {
	fsys := newTestFS(t, sampleConfig)

	got, found, err := ConstantValue(fsys, configPath, "WP_DEBUG")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "false", got)
}

func TestPhpLiteralSerialization(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"plain_string", "hello", `'hello'`},
		{"single_quote", "it's", `'it\'s'`},
		{"backslash", `a\b`, `'a\\b'`},
		{"bool_true", true, "true"},
		{"bool_false", false, "false"},
		{"int", 3306, "3306"},
		{"int64", int64(-1), "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := phpLiteral(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhpUnquoteRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"it's",
		`back\slash`,
		`both ' and \ and "`,
		"",
	}
	for _, v := range values {
		lit, err := phpLiteral(v)
		require.NoError(t, err)
		assert.Equal(t, v, phpUnquote(lit), "round trip of %q", v)
	}
}
