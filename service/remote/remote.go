// Package remote http client of the ledger admin api, used by the cli so a running server
// stays the only writer of the ledger
package remote

import (
	"context"
	"fmt"
	"net/url"

	"poolmanager/core"
	"poolmanager/pkg/id"
	"poolmanager/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Client admin api client acting as the holder of token
type Client struct {
	endpoint string
	token    string
}

// New new client of the server at endpoint, e.g. http://localhost:9000
func New(endpoint, token string) *Client {
	return &Client{endpoint: endpoint, token: token}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	requestID := id.TraceIDFromContext(ctx)
	if requestID == "" {
		requestID = id.GenTraceID()
	}

	return resthttp.WithRequestID(ctx, requestID).SetAuthToken(c.token)
}

func (c *Client) do(ctx context.Context, method, path string, body, resp interface{}) error {
	uri := c.endpoint + "/api" + path

	r := c.request(ctx)
	if body != nil {
		r = r.SetBody(body)
	}

	res, err := r.Execute(method, uri)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("remote:", method, uri)
		return err
	}

	return resthttp.ParseResponse(res, resp)
}

// CreatePool initialize the pool of userID
func (c *Client) CreatePool(ctx context.Context, userID string) (*core.UserReserve, error) {
	var reserve core.UserReserve
	if err := c.do(ctx, resty.MethodPost, "/pools", map[string]string{"user_id": userID}, &reserve); err != nil {
		return nil, fmt.Errorf("remote: create pool: %w", err)
	}

	return &reserve, nil
}

// PoolConfig current pool defaults
func (c *Client) PoolConfig(ctx context.Context) (*core.PoolConfig, error) {
	var cfg core.PoolConfig
	if err := c.do(ctx, resty.MethodGet, "/config", nil, &cfg); err != nil {
		return nil, fmt.Errorf("remote: pool config: %w", err)
	}

	return &cfg, nil
}

// SetPoolConfig replace the pool defaults, returning the stored config
func (c *Client) SetPoolConfig(ctx context.Context, cfg *core.PoolConfig) (*core.PoolConfig, error) {
	var updated core.PoolConfig
	if err := c.do(ctx, resty.MethodPut, "/config", cfg, &updated); err != nil {
		return nil, fmt.Errorf("remote: set pool config: %w", err)
	}

	return &updated, nil
}

// UserPoolConfig config of userID
func (c *Client) UserPoolConfig(ctx context.Context, userID string) (*core.UserPoolConfig, error) {
	var cfg core.UserPoolConfig
	if err := c.do(ctx, resty.MethodGet, "/users/"+url.PathEscape(userID)+"/config", nil, &cfg); err != nil {
		return nil, fmt.Errorf("remote: user pool config: %w", err)
	}

	return &cfg, nil
}

// SetUserPoolConfig replace the config of userID, returning the stored config
func (c *Client) SetUserPoolConfig(ctx context.Context, userID string, cfg *core.UserPoolConfig) (*core.UserPoolConfig, error) {
	var updated core.UserPoolConfig
	if err := c.do(ctx, resty.MethodPut, "/users/"+url.PathEscape(userID)+"/config", cfg, &updated); err != nil {
		return nil, fmt.Errorf("remote: set user pool config: %w", err)
	}

	return &updated, nil
}

type liquidateRequest struct {
	UserID             string `json:"user_id"`
	CollateralDecrease string `json:"collateral_decrease"`
	DebtDecrease       string `json:"debt_decrease"`
}

// Liquidate write down the position of userID
func (c *Client) Liquidate(ctx context.Context, userID string, collateralDecrease, debtDecrease decimal.Decimal) (*core.UserReserve, error) {
	req := liquidateRequest{
		UserID:             userID,
		CollateralDecrease: collateralDecrease.String(),
		DebtDecrease:       debtDecrease.String(),
	}

	var reserve core.UserReserve
	if err := c.do(ctx, resty.MethodPost, "/liquidate", req, &reserve); err != nil {
		return nil, fmt.Errorf("remote: liquidate: %w", err)
	}

	return &reserve, nil
}

// ClaimProtocolEarnings sweep the ledger balance to the token holder
func (c *Client) ClaimProtocolEarnings(ctx context.Context) (decimal.Decimal, error) {
	var resp struct {
		Amount decimal.Decimal `json:"amount"`
	}

	if err := c.do(ctx, resty.MethodPost, "/profit/claim", nil, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("remote: claim profit: %w", err)
	}

	return resp.Amount, nil
}
