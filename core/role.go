package core

// Role access role
type Role string

const (
	// RoleAdmin pool administrator
	RoleAdmin Role = "admin"
	// RoleLiquidator allowed to liquidate positions
	RoleLiquidator Role = "liquidator"
)

// IAuthorizer role lookup of callers
type IAuthorizer interface {
	HasRole(userID string, role Role) bool
}
