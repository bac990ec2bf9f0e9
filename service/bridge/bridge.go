// Package bridge http client of the custody bridge, implementing collateral custody and loan asset transfers
package bridge

import (
	"context"
	"fmt"
	"net/url"

	"poolmanager/core"
	"poolmanager/pkg/id"
	"poolmanager/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Config bridge client config
type Config struct {
	EndPoint string
	Token    string
	// LoanAsset asset id moved by transfers
	LoanAsset string
	// Ledger source account of Transfer
	Ledger string
}

type bridge struct {
	cfg Config
}

// Bridge both ports served by one remote
type Bridge interface {
	core.ICollateralCustody
	core.ILoanAssetTransfer
}

// New new bridge client
func New(cfg Config) Bridge {
	return &bridge{cfg: cfg}
}

// request a request id derived from the operation trace and step,
// so a retried operation step reaches the bridge with the same id
func (b *bridge) request(ctx context.Context, step string) *resty.Request {
	requestID := id.GenTraceID()
	if traceID := id.TraceIDFromContext(ctx); traceID != "" {
		requestID = foxuuid.Modify(traceID, step)
	}

	r := resthttp.WithRequestID(ctx, requestID)
	if b.cfg.Token != "" {
		r = r.SetAuthToken(b.cfg.Token)
	}

	return r
}

func (b *bridge) post(ctx context.Context, path, step string, body, resp interface{}) error {
	uri := b.cfg.EndPoint + path
	r, err := b.request(ctx, step).SetBody(body).Post(uri)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("bridge: post", uri)
		return err
	}

	return resthttp.ParseResponse(r, resp)
}

type custodyRequest struct {
	From   string          `json:"from,omitempty"`
	To     string          `json:"to,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

func (b *bridge) LockAndMint(ctx context.Context, from string, amount decimal.Decimal) (decimal.Decimal, error) {
	var resp struct {
		Minted decimal.Decimal `json:"minted"`
	}

	if err := b.post(ctx, "/custody/lock", "lock:"+from, custodyRequest{From: from, Amount: amount}, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("bridge: lock and mint: %w", err)
	}

	return resp.Minted, nil
}

func (b *bridge) ConfirmRedeem(ctx context.Context, to string, amount decimal.Decimal) error {
	if err := b.post(ctx, "/custody/redeem", "redeem:"+to, custodyRequest{To: to, Amount: amount}, nil); err != nil {
		return fmt.Errorf("bridge: confirm redeem: %w", err)
	}

	return nil
}

func (b *bridge) Burn(ctx context.Context, amount decimal.Decimal) error {
	if err := b.post(ctx, "/custody/burn", "burn", custodyRequest{Amount: amount}, nil); err != nil {
		return fmt.Errorf("bridge: burn: %w", err)
	}

	return nil
}

type transferRequest struct {
	Asset  string          `json:"asset"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func (b *bridge) TransferFrom(ctx context.Context, src, dst string, amount decimal.Decimal) error {
	req := transferRequest{
		Asset:  b.cfg.LoanAsset,
		From:   src,
		To:     dst,
		Amount: amount,
	}

	if err := b.post(ctx, "/transfers", "transfer:"+src+":"+dst, req, nil); err != nil {
		return fmt.Errorf("bridge: transfer from %s: %w", src, err)
	}

	return nil
}

func (b *bridge) Transfer(ctx context.Context, dst string, amount decimal.Decimal) error {
	return b.TransferFrom(ctx, b.cfg.Ledger, dst, amount)
}

func (b *bridge) BalanceOf(ctx context.Context, holder string) (decimal.Decimal, error) {
	uri := fmt.Sprintf("%s/balances/%s/%s", b.cfg.EndPoint, url.PathEscape(b.cfg.LoanAsset), url.PathEscape(holder))
	r, err := b.request(ctx, "balance:"+holder).Get(uri)
	if err != nil {
		return decimal.Zero, err
	}

	var resp struct {
		Amount decimal.Decimal `json:"amount"`
	}

	if err := resthttp.ParseResponse(r, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("bridge: balance of %s: %w", holder, err)
	}

	return resp.Amount, nil
}
