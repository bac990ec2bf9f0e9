package codes

import (
	"errors"
	"strconv"

	"poolmanager/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100400
)

// With with specified error
func With(err error, code int) twirp.Error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// From convert ledger errors into twirp errors carrying the ledger code
func From(err error) twirp.Error {
	var twerr twirp.Error
	if errors.As(err, &twerr) {
		return twerr
	}

	var code core.ErrorCode
	if errors.As(err, &code) {
		return With(twirp.NewError(twirpCode(code), code.Message()), int(code))
	}

	if errors.Is(err, db.ErrOptimisticLock) {
		return twirp.NewError(twirp.Aborted, "concurrent update, retry")
	}

	return twirp.InternalErrorWith(err)
}

// Get get error code
func Get(err twirp.Error) int {
	if v := err.Meta(CustomCodeKey); v != "" {
		if code, e := strconv.Atoi(v); e == nil {
			return code
		}
	}

	switch code := err.Code(); code {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(code)
	}
}

func twirpCode(code core.ErrorCode) twirp.ErrorCode {
	switch code {
	case core.ErrUnauthorized:
		return twirp.PermissionDenied
	case core.ErrInvalidAmount, core.ErrInvalidConfig:
		return twirp.InvalidArgument
	case core.ErrPoolNotInitialized:
		return twirp.NotFound
	case core.ErrPoolAlreadyInitialized:
		return twirp.AlreadyExists
	case core.ErrExceedsLoanToValue,
		core.ErrExceedsWithdrawLimit,
		core.ErrInsufficientClaimable,
		core.ErrInsufficientRepayAmount:
		return twirp.FailedPrecondition
	case core.ErrArithmeticOverflow:
		return twirp.OutOfRange
	case core.ErrInvalidPrice:
		return twirp.Unavailable
	default:
		return twirp.Internal
	}
}
