package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrUnauthorized caller lacks the role required by the operation
	ErrUnauthorized ErrorCode = 100001
	// ErrInvalidAmount amount must be positive
	ErrInvalidAmount ErrorCode = 100002
	// ErrInvalidConfig rejected pool or user config
	ErrInvalidConfig ErrorCode = 100003

	// ErrPoolNotInitialized operation on a user without a pool
	ErrPoolNotInitialized ErrorCode = 100100
	// ErrPoolAlreadyInitialized duplicate create pool
	ErrPoolAlreadyInitialized ErrorCode = 100101
	// ErrExceedsLoanToValue borrow over the loan-to-value limit
	ErrExceedsLoanToValue ErrorCode = 100102
	// ErrExceedsWithdrawLimit withdraw would breach the liquidation threshold
	ErrExceedsWithdrawLimit ErrorCode = 100103
	// ErrInsufficientClaimable claim more than approved
	ErrInsufficientClaimable ErrorCode = 100104
	// ErrInsufficientRepayAmount repay does not cover the accrued interest
	ErrInsufficientRepayAmount ErrorCode = 100105
	// ErrCustodyShortfall custody minted less than the supplied amount
	ErrCustodyShortfall ErrorCode = 100106

	// ErrArithmeticOverflow fixed point overflow or unsigned underflow
	ErrArithmeticOverflow ErrorCode = 100200
	// ErrInvalidPrice zero or negative oracle price
	ErrInvalidPrice ErrorCode = 100201
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:                 "unknown",
	ErrUnauthorized:            "unauthorized",
	ErrInvalidAmount:           "invalid amount",
	ErrInvalidConfig:           "invalid config",
	ErrPoolNotInitialized:      "pool not initialized",
	ErrPoolAlreadyInitialized:  "pool already initialized",
	ErrExceedsLoanToValue:      "exceeds loan to value",
	ErrExceedsWithdrawLimit:    "exceeds withdraw limit",
	ErrInsufficientClaimable:   "insufficient claimable",
	ErrInsufficientRepayAmount: "insufficient repay amount",
	ErrCustodyShortfall:        "custody shortfall",
	ErrArithmeticOverflow:      "arithmetic overflow",
	ErrInvalidPrice:            "invalid price",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

// Message human readable description of the code
func (e ErrorCode) Message() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}

	return errorMessages[ErrUnknown]
}

func (e ErrorCode) Error() string {
	return e.String() + ": " + e.Message()
}
