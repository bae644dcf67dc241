package ledger

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Column accessors. The MySQL driver hands back a mix of int64, []byte and
// string depending on column type, so each accessor coerces the common
// representations and reports whether the value was usable.

func (r Row) String(col string) (string, bool) {
	switch v := r[col].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func (r Row) Uint(col string) (uint, bool) {
	switch v := r[col].(type) {
	case uint:
		return v, true
	case uint64:
		return uint(v), true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	case []byte:
		if n, err := strconv.ParseUint(string(v), 10, 64); err == nil {
			return uint(n), true
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return uint(n), true
		}
	}
	return 0, false
}

func (r Row) Decimal(col string) (decimal.Decimal, bool) {
	switch v := r[col].(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case []byte:
		if d, err := decimal.NewFromString(string(v)); err == nil {
			return d, true
		}
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}
