package codes

import (
	"errors"
	"fmt"
	"testing"

	"poolmanager/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/twitchtv/twirp"
)

func TestFrom(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		code twirp.ErrorCode
		want int
	}{
		{"unauthorized", core.ErrUnauthorized, twirp.PermissionDenied, int(core.ErrUnauthorized)},
		{"wrapped", fmt.Errorf("borrow: %w", core.ErrExceedsLoanToValue), twirp.FailedPrecondition, int(core.ErrExceedsLoanToValue)},
		{"not initialized", core.ErrPoolNotInitialized, twirp.NotFound, int(core.ErrPoolNotInitialized)},
		{"invalid argument", twirp.InvalidArgumentError("amount", "required"), twirp.InvalidArgument, InvalidArguments},
		{"optimistic lock", db.ErrOptimisticLock, twirp.Aborted, 409},
		{"unknown", errors.New("boom"), twirp.Internal, 500},
	} {
		t.Run(tt.name, func(t *testing.T) {
			twerr := From(tt.err)
			assert.Equal(t, tt.code, twerr.Code())
			assert.Equal(t, tt.want, Get(twerr))
		})
	}
}
