package xenv_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gactor/pkg/xenv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	conf, err := xenv.Load("")
	require.NoError(t, err)
	assert.Equal(t, xenv.Default(), conf)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gactor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size: 6\ninbox_size: 32\nshutdown_timeout: 2s\n"), 0o600))
	t.Setenv("GACTOR_POOL_SIZE", "3")

	conf, err := xenv.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, conf.PoolSize)
	assert.Equal(t, 32, conf.InboxSize)
	assert.Equal(t, 2*time.Second, conf.ShutdownTimeout)
	assert.Equal(t, "info", conf.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("GACTOR_POOL_SIZE", "0")
	_, err := xenv.Load("")
	assert.Error(t, err)

	_, err = xenv.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
