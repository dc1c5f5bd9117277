package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	UI       UIConfig
	Pack     PackConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// PackConfig holds composition engine settings.
type PackConfig struct {
	LoadingDelayMS int      `mapstructure:"loading_delay_ms"`
	CommitPacingMS int      `mapstructure:"commit_pacing_ms"`
	QuantityPolicy string   `mapstructure:"quantity_policy"` // single_unit or merged
	RibbonPalette  []string `mapstructure:"ribbon_palette"`
	ArrangeRadius  float64  `mapstructure:"arrange_radius"`
}

// Load reads configuration from file and env. Env var overrides use prefix GIFTFORGE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "giftforge", "giftforge.db"))
	v.SetDefault("ui.currency_symbol", "TND")
	v.SetDefault("pack.loading_delay_ms", 2000)
	v.SetDefault("pack.commit_pacing_ms", 500)
	v.SetDefault("pack.quantity_policy", "single_unit")
	v.SetDefault("pack.ribbon_palette", []string{"#700100", "#1A1F2C", "#F1F0FB", "#FFD700"})
	v.SetDefault("pack.arrange_radius", 0.8)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("GIFTFORGE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "giftforge"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GIFTFORGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory
// if needed, so edited preferences carry over to the next session.
func Save(cfg Config) error {
	path := os.Getenv("GIFTFORGE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "giftforge", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("pack.loading_delay_ms", cfg.Pack.LoadingDelayMS)
	v.Set("pack.commit_pacing_ms", cfg.Pack.CommitPacingMS)
	v.Set("pack.quantity_policy", cfg.Pack.QuantityPolicy)
	v.Set("pack.ribbon_palette", cfg.Pack.RibbonPalette)
	v.Set("pack.arrange_radius", cfg.Pack.ArrangeRadius)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
