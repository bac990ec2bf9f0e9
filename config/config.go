package config

import (
	"poolmanager/core"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file, POOL_ prefixed env vars override the file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("POOL")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaultConfig(config)
	return nil
}

func defaultConfig(cfg *core.Config) {
	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.App.Ledger == "" {
		cfg.App.Ledger = "ledger"
	}

	if cfg.PriceOracle.CacheTTL == 0 {
		cfg.PriceOracle.CacheTTL = 10
	}

	if cfg.Assets.Decimals == nil {
		cfg.Assets.Decimals = map[string]uint8{}
	}
}
