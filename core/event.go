package core

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// EventAction ledger event type
type EventAction string

const (
	EventPoolCreated             EventAction = "PoolCreated"
	EventSupplied                EventAction = "Supplied"
	EventBorrowed                EventAction = "Borrowed"
	EventLoanAssetClaimed        EventAction = "LoanAssetClaimed"
	EventRepaid                  EventAction = "Repaid"
	EventLiquidated              EventAction = "Liquidated"
	EventLiquidationReverted     EventAction = "LiquidationReverted"
	EventWithdrawalRequested     EventAction = "WithdrawalRequested"
	EventCollateralClaimed       EventAction = "CollateralClaimed"
	EventProtocolEarningsClaimed EventAction = "ProtocolEarningsClaimed"
)

const (
	// EventKeyReserve post operation user reserve
	EventKeyReserve = "reserve"
	// EventKeyProtocolShare protocol part of a repay
	EventKeyProtocolShare = "protocol_share"
	// EventKeyDebtDecrease debt removed by a liquidation
	EventKeyDebtDecrease = "debt_decrease"
	// EventKeyInterest interest accrued by the operation
	EventKeyInterest = "interest"
)

// EventData extra data
type EventData map[string]interface{}

// NewEventData new event data instance
func NewEventData() EventData {
	return make(EventData)
}

// Put put data
func (d EventData) Put(key string, value interface{}) {
	d[key] = value
}

// PutReserve snapshot the reserve into the data
func (d EventData) PutReserve(reserve *UserReserve) {
	if reserve == nil {
		return
	}

	d.Put(EventKeyReserve, reserve.Clone())
}

// Format format as []byte by default
func (d EventData) Format() []byte {
	bs, err := json.Marshal(d)
	if err != nil {
		return []byte("{}")
	}

	return bs
}

// Event observable ledger event
type Event struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string          `sql:"size:36" json:"trace_id"`
	Action    EventAction     `sql:"size:32" json:"action"`
	Actor     string          `sql:"size:64" json:"actor"`
	UserID    string          `sql:"size:64" json:"user_id"`
	Amount    decimal.Decimal `sql:"type:decimal(64,0)" json:"amount"`
	Data      types.JSONText  `sql:"type:TEXT" json:"data"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// SetData set extra data
func (e *Event) SetData(data EventData) {
	bs := []byte("{}")
	if data != nil {
		bs = data.Format()
	}

	e.Data = bs
}

// Reserve decode the reserve snapshot carried by the event
func (e *Event) Reserve() (*UserReserve, error) {
	var data struct {
		Reserve *UserReserve `json:"reserve"`
	}

	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, err
	}

	return data.Reserve, nil
}
