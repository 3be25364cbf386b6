package instruction

import "github.com/pkg/errors"

var (
	ErrInvalidDecimals  = errors.New("invalid decimals")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrFieldTooLong     = errors.New("field too long")
	ErrInvalidSellerFee = errors.New("invalid seller fee basis points")
	ErrMemoTooLarge     = errors.New("memo too large")
	ErrInvalidMemo      = errors.New("memo is not valid utf-8")
	ErrMissingAccount   = errors.New("missing account")
)
