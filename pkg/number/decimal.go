package number

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Raw parse a human readable amount ("1.5") into raw token units of an asset with decimals
func Raw(v string, decimals uint8) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, err
	}

	raw := d.Shift(int32(decimals))
	if !raw.Equal(raw.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("%s has more than %d decimals", v, decimals)
	}

	return raw.Truncate(0), nil
}

// Human format raw token units with the asset decimals
func Human(raw decimal.Decimal, decimals uint8) string {
	return raw.Shift(-int32(decimals)).String()
}
