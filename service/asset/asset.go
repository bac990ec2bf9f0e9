package asset

import (
	"context"
	"fmt"

	"poolmanager/core"
)

type assetService struct {
	decimals map[string]uint8
}

// New asset decimals from config
func New(cfg core.Assets) core.IAssetDecimals {
	decimals := make(map[string]uint8, len(cfg.Decimals))
	for asset, d := range cfg.Decimals {
		decimals[asset] = d
	}

	return &assetService{decimals: decimals}
}

func (s *assetService) DecimalsOf(ctx context.Context, asset string) (uint8, error) {
	d, ok := s.decimals[asset]
	if !ok {
		return 0, fmt.Errorf("asset %q: decimals not configured", asset)
	}

	return d, nil
}
