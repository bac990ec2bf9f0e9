package id

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceIDFromContext(ctx))

	traceID := GenTraceID()
	_, err := uuid.FromString(traceID)
	assert.Nil(t, err)
	assert.NotEqual(t, traceID, GenTraceID())

	assert.Equal(t, traceID, TraceIDFromContext(WithTraceID(ctx, traceID)))
}
