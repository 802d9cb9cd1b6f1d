package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
env = "test"

[game]
max_stats = 25
entropy = "from-file"
quest_explore_time = "45s"

[ledger]
backend = "evm"
`), 0600)
	require.NoError(t, err)

	t.Setenv("PETQUEST_GAME_ENTROPY", "from-env")
	t.Setenv("PETQUEST_API_SERVER_PORT", "9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "test", cfg.Env)
	require.Equal(t, 25, cfg.Game.MaxStats)
	require.Equal(t, "from-env", cfg.Game.Entropy)
	require.Equal(t, 45*time.Second, cfg.Game.QuestExploreTime)
	require.Equal(t, 60*time.Second, cfg.Game.QuestCooldown)
	require.Equal(t, "evm", cfg.Ledger.Backend)
	require.Equal(t, "9999", cfg.ApiServer.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
