package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRowString(t *testing.T) {
	r := Row{"id": "abc", "raw": []byte("xyz"), "n": int64(7)}

	s, ok := r.String("id")
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	s, ok = r.String("raw")
	assert.True(t, ok)
	assert.Equal(t, "xyz", s)

	_, ok = r.String("n")
	assert.False(t, ok)
	_, ok = r.String("missing")
	assert.False(t, ok)
}

func TestRowUint(t *testing.T) {
	r := Row{
		"a": int64(42),
		"b": []byte("17"),
		"c": "9",
		"d": float64(3),
		"e": "not a number",
	}
	for col, want := range map[string]uint{"a": 42, "b": 17, "c": 9, "d": 3} {
		got, ok := r.Uint(col)
		assert.True(t, ok, col)
		assert.Equal(t, want, got, col)
	}
	_, ok := r.Uint("e")
	assert.False(t, ok)
}

func TestRowDecimal(t *testing.T) {
	r := Row{
		"dec":   decimal.NewFromInt(5),
		"bytes": []byte("150.25"),
		"str":   "99.90",
		"int":   int64(12),
		"bad":   "-.x",
	}
	d, ok := r.Decimal("bytes")
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("150.25")))

	d, ok = r.Decimal("str")
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("99.90")))

	d, ok = r.Decimal("int")
	assert.True(t, ok)
	assert.True(t, d.Equal(decimal.NewFromInt(12)))

	_, ok = r.Decimal("bad")
	assert.False(t, ok)
}
