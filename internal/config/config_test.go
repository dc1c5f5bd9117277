package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GIFTFORGE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "TND", cfg.UI.CurrencySymbol)
	require.Equal(t, 2000, cfg.Pack.LoadingDelayMS)
	require.Equal(t, 500, cfg.Pack.CommitPacingMS)
	require.Equal(t, "single_unit", cfg.Pack.QuantityPolicy)
	require.Equal(t, []string{"#700100", "#1A1F2C", "#F1F0FB", "#FFD700"}, cfg.Pack.RibbonPalette)
	require.InDelta(t, 0.8, cfg.Pack.ArrangeRadius, 1e-9)
	require.NotEmpty(t, cfg.Database.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/tmp/forge-test.db"

[pack]
commit_pacing_ms = 50
quantity_policy = "merged"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("GIFTFORGE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/forge-test.db", cfg.Database.Path)
	require.Equal(t, 50, cfg.Pack.CommitPacingMS)
	require.Equal(t, "merged", cfg.Pack.QuantityPolicy)
	// untouched keys keep defaults
	require.Equal(t, 2000, cfg.Pack.LoadingDelayMS)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("GIFTFORGE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Pack.CommitPacingMS = 123
	cfg.UI.CurrencySymbol = "EUR"
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, 123, got.Pack.CommitPacingMS)
	require.Equal(t, "EUR", got.UI.CurrencySymbol)
}
