package pool

import (
	"context"

	"github.com/fox-one/pkg/logger"
)

// undo compensations of port calls that already went through
type undo []func(ctx context.Context) error

func (u *undo) push(fn func(ctx context.Context) error) {
	*u = append(*u, fn)
}

// run replay the compensations in reverse order. A failed compensation is logged with the
// trace id of the operation and left for reconciliation.
func (u undo) run(ctx context.Context) {
	if len(u) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx)

	for i := len(u) - 1; i >= 0; i-- {
		if err := u[i](ctx); err != nil {
			log.WithError(err).Errorln("undo port call failed, needs reconciliation")
		}
	}

	log.Warnf("%d port calls undone", len(u))
}
