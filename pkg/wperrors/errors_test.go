package wperrors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wpstrap/wpstrap/pkg/wperrors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    wperrors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "db_unavailable",
			code:    wperrors.ErrDBUnavailable,
			message: "database never became reachable",
			wantStr: "[DB_UNAVAILABLE] database never became reachable",
		},
		{
			name:    "config_write",
			code:    wperrors.ErrConfigWrite,
			message: "cannot write wp-config.php",
			wantStr: "[CONFIG_WRITE] cannot write wp-config.php",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wperrors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := wperrors.Wrap(cause, wperrors.ErrConfigWrite, "writing configuration")

	require.NotNil(t, err)
	assert.Equal(t, "[CONFIG_WRITE] writing configuration: permission denied", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, wperrors.Wrap(nil, wperrors.ErrConfigWrite, "never happens"))
	assert.Nil(t, wperrors.Wrapf(nil, wperrors.ErrConfigWrite, "never %s", "happens"))
}

func TestIsCode(t *testing.T) {
	inner := wperrors.New(wperrors.ErrHookFailed, "hook exited 1")
	wrapped := fmt.Errorf("running hooks: %w", inner)

	assert.True(t, wperrors.IsCode(wrapped, wperrors.ErrHookFailed))
	assert.False(t, wperrors.IsCode(wrapped, wperrors.ErrDBUnavailable))
	assert.False(t, wperrors.IsCode(fmt.Errorf("plain"), wperrors.ErrHookFailed))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, wperrors.ErrEnvConflict, wperrors.GetCode(wperrors.New(wperrors.ErrEnvConflict, "x")))
	assert.Equal(t, wperrors.ErrUnknown, wperrors.GetCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := wperrors.New(wperrors.ErrConfigGenerate, "generator failed").
		WithDetail("path", "/var/www/html/wp-config.php")

	assert.Equal(t, "/var/www/html/wp-config.php", err.Details["path"])
}
