package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"poolmanager/core"
	"poolmanager/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const priceKey = "price"

// Ticker price feed payload
type Ticker struct {
	// Price integer price scaled by 10^Decimals
	Price    decimal.Decimal `json:"price"`
	Decimals uint8           `json:"decimals"`
}

// New http price oracle, tickers are cached for ttl
func New(cfg core.PriceOracle) core.IPriceOracle {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Second
	}

	return &priceOracle{
		endpoint: cfg.EndPoint,
		cache:    gcache.New(1).LRU().Expiration(ttl).Build(),
		sf:       &singleflight.Group{},
	}
}

type priceOracle struct {
	endpoint string
	cache    gcache.Cache
	sf       *singleflight.Group
}

func (s *priceOracle) GetPrice(ctx context.Context) (decimal.Decimal, error) {
	ticker, err := s.ticker(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return ticker.Price, nil
}

func (s *priceOracle) GetPriceDecimals(ctx context.Context) (uint8, error) {
	ticker, err := s.ticker(ctx)
	if err != nil {
		return 0, err
	}

	return ticker.Decimals, nil
}

func (s *priceOracle) ticker(ctx context.Context) (*Ticker, error) {
	if v, err := s.cache.Get(priceKey); err == nil {
		if ticker, ok := v.(*Ticker); ok {
			return ticker, nil
		}
	}

	v, err, _ := s.sf.Do(priceKey, func() (interface{}, error) {
		ticker, err := s.pull(ctx)
		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(priceKey, ticker)
		return ticker, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Ticker), nil
}

func (s *priceOracle) pull(ctx context.Context) (*Ticker, error) {
	log := logger.FromContext(ctx).WithField("oracle", s.endpoint)

	resp, err := resthttp.Request(ctx).Get(s.endpoint)
	if err != nil {
		log.WithError(err).Errorln("pull price")
		return nil, err
	}

	var ticker Ticker
	if err := resthttp.ParseResponse(resp, &ticker); err != nil {
		log.WithError(err).Errorln("parse price")
		return nil, fmt.Errorf("oracle: %w", err)
	}

	if !ticker.Price.IsPositive() {
		return nil, core.ErrInvalidPrice
	}

	log.Debugf("price %s (%d decimals)", ticker.Price, ticker.Decimals)
	return &ticker, nil
}

// Static fixed price oracle
type Static struct {
	mux    sync.RWMutex
	ticker Ticker
}

// NewStatic new fixed price oracle
func NewStatic(price decimal.Decimal, decimals uint8) *Static {
	return &Static{ticker: Ticker{Price: price, Decimals: decimals}}
}

// Set replace the price
func (s *Static) Set(price decimal.Decimal) {
	s.mux.Lock()
	s.ticker.Price = price
	s.mux.Unlock()
}

// GetPrice the fixed price, zero or negative prices are reported as invalid
func (s *Static) GetPrice(ctx context.Context) (decimal.Decimal, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	if !s.ticker.Price.IsPositive() {
		return decimal.Zero, core.ErrInvalidPrice
	}

	return s.ticker.Price, nil
}

func (s *Static) GetPriceDecimals(ctx context.Context) (uint8, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	return s.ticker.Decimals, nil
}
