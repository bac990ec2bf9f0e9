package request

import (
	"context"
)

type key int

const (
	callerKey key = iota
)

type ContextX struct {
	context.Context
}

// NewContext context extension
func NewContext(ctx context.Context) ContextX {
	return ContextX{
		Context: ctx,
	}
}

// WithCaller context with the authenticated caller address
func (c ContextX) WithCaller(caller string) context.Context {
	return context.WithValue(c, callerKey, caller)
}

// GetCaller get caller from context
func (c ContextX) GetCaller() (string, bool) {
	caller, ok := c.Value(callerKey).(string)
	return caller, ok && caller != ""
}
