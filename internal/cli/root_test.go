package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gactor", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, cmdName := range []string{"bench", "serve"} {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "", levelFlag.DefValue)
}

func TestSubCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	benchCmd, _, err := cmd.Find([]string{"bench"})
	require.NoError(t, err)
	require.NotNil(t, benchCmd.Flags().Lookup("size"))
	messages := benchCmd.Flags().Lookup("messages")
	require.NotNil(t, messages)
	assert.Equal(t, "10000", messages.DefValue)

	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	require.NotNil(t, serveCmd.Flags().Lookup("addr"))
}

func TestRootOptionsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gactor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size: 3\nlog_level: warn\n"), 0o644))

	opts := &RootOptions{ConfigPath: path, LogLevel: "error"}
	require.NoError(t, opts.load())
	assert.Equal(t, 3, opts.Config().PoolSize)
	assert.Equal(t, "error", opts.Config().LogLevel)

	bad := &RootOptions{LogLevel: "loud"}
	assert.Error(t, bad.load())
}
