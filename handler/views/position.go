package views

import (
	"poolmanager/core"
)

// Position user pool config, projected reserve and limits in one view
type Position struct {
	UserID  string               `json:"user_id"`
	Config  *core.UserPoolConfig `json:"config"`
	Reserve *core.UserReserve    `json:"reserve"`
	// Limits nil when no price is available
	Limits *core.Limits `json:"limits,omitempty"`
}

// Earnings protocol earnings transferred by a claim
type Earnings struct {
	Amount string `json:"amount"`
}
