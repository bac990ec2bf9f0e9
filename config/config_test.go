package config

import (
	"testing"

	"poolmanager/core"

	"github.com/bmizerany/assert"
)

func TestDefaultConfig(t *testing.T) {
	var cfg core.Config
	cfg.PriceOracle.CacheTTL = 3

	defaultConfig(&cfg)
	assert.Equal(t, "UTC", cfg.App.Location)
	assert.Equal(t, "ledger", cfg.App.Ledger)
	assert.Equal(t, int64(3), cfg.PriceOracle.CacheTTL)
	assert.NotEqual(t, nil, cfg.Assets.Decimals)
}
