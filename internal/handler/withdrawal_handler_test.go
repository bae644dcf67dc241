package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"712345678", "254712345678"},
		{"+254 712 345 678", "254712345678"},
		{"0712-345-678", "254712345678"},
		{"12345", ""},
		{"", ""},
		{"notaphone", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, normalizePhone(c.in), c.in)
	}
}
