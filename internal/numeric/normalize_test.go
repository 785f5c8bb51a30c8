package numeric

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"json number", json.Number("3.25"), 3.25},
		{"dot decimal", "10.50", 10.5},
		{"comma decimal", " 10,50 ", 10.5},
		{"pt-BR thousands", "1.234,56", 1234.56},
		{"pt-BR millions", "-12.345.678,90", -12345678.9},
		{"en-US thousands is malformed", "1,234.56", 0},
		{"bad grouping", "1.23,45", 0},
		{"two commas", "1,2,3", 0},
		{"empty", "", 0},
		{"garbage", "not a number", 0},
		{"nan", math.NaN(), 0},
		{"inf string", "Inf", 0},
		{"unsupported type", struct{}{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ToFloat(tt.in), 1e-9)
		})
	}
}

func TestParseXMLFloat(t *testing.T) {
	assert.Equal(t, 0.0, ParseXMLFloat(""))
	assert.Equal(t, 0.0, ParseXMLFloat("   "))
	assert.Equal(t, 49.99, ParseXMLFloat(" 49.99 "))
	assert.Equal(t, 1.5, ParseXMLFloat("1,5"))
	assert.Equal(t, 0.0, ParseXMLFloat("abc"))
	assert.Equal(t, ToFloat(nil), ParseXMLFloat(""))
}

func TestParseBRL(t *testing.T) {
	v, ok := ParseBRL("R$ 1.234,56")
	assert.True(t, ok)
	assert.InDelta(t, 1234.56, v, 1e-9)

	v, ok = ParseBRL("12.5")
	assert.True(t, ok)
	assert.InDelta(t, 12.5, v, 1e-9)

	_, ok = ParseBRL("")
	assert.False(t, ok)

	_, ok = ParseBRL("doze reais")
	assert.False(t, ok)

	_, ok = ParseBRL("1,234.56")
	assert.False(t, ok, "comma before dot is not a pt-BR amount")

	v, ok = ParseBRL("1234,5")
	assert.True(t, ok)
	assert.InDelta(t, 1234.5, v, 1e-9)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "R$ 99,99", FormatBRL(99.99))
	assert.Equal(t, "R$ 1.234,56", FormatBRL(1234.56))
	assert.Equal(t, "R$ 1.000.000,00", FormatBRL(1e6))
	assert.Equal(t, "R$ 0,00", FormatBRL(math.NaN()))
}

func TestFormatDecimalBR(t *testing.T) {
	assert.Equal(t, "1234,56", FormatDecimalBR(1234.56))
	assert.Equal(t, "0,10", FormatDecimalBR(0.1))
}

func TestSumAndTolerance(t *testing.T) {
	assert.Equal(t, 99.99, Sum(50.00, 49.99))
	assert.Equal(t, 0.3, Sum(0.1, 0.2))

	assert.True(t, WithinTolerance(100.00, 100.01, 0.01))
	assert.False(t, WithinTolerance(100.00, 100.02, 0.01))
	assert.True(t, WithinTolerance(99.99, 99.99, 0.01))
}
