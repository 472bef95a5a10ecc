package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Quantity
	}{
		{"integer", `1000`, Kg(1000)},
		{"fraction", `12.5`, Kg(12.5)},
		{"string", `"250.25"`, Kg(250.25)},
		{"empty string", `""`, 0},
		{"null", `null`, 0},
		{"extra digits rounded", `0.00005`, Quantity(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.in), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestQuantityJSONRejectsText(t *testing.T) {
	var q Quantity
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &q))
}

func TestQuantityOutOfRange(t *testing.T) {
	for _, in := range []string{`2000000000000000`, `"-1000000000000.5"`, `1e30`} {
		var q Quantity
		assert.Error(t, json.Unmarshal([]byte(in), &q), in)
	}

	q, err := ParseQuantity("1000000000000")
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, q)
	assert.True(t, q.InRange())
	assert.False(t, (MaxQuantity + 1).InRange())
}

func TestSumSaturates(t *testing.T) {
	huge := Quantity(9_000_000_000_000_000_000)
	assert.Equal(t, Quantity(math.MaxInt64), Sum(huge, huge))
	assert.Equal(t, Quantity(math.MinInt64), Sum(-huge, -huge))
	assert.Equal(t, Kg(30), Sum(Kg(10), Kg(20)))
	assert.Equal(t, "18000000000000000000", SumDecimal(huge, huge).Shift(4).String())
}

func TestQuantityString(t *testing.T) {
	assert.Equal(t, "800", Kg(800).String())
	assert.Equal(t, "12.5", Kg(12.5).String())
	assert.Equal(t, "800 kg", Kg(800).Display())

	out, err := json.Marshal(Kg(99.75))
	require.NoError(t, err)
	assert.Equal(t, "99.75", string(out))
}

func TestQuantityClampZero(t *testing.T) {
	assert.Equal(t, Quantity(0), Kg(-3).ClampZero())
	assert.Equal(t, Kg(3), Kg(3).ClampZero())
}

func TestAmount(t *testing.T) {
	assert.True(t, MustMoney("6000").Equal(Amount(Kg(200), MustMoney("30"))))
	assert.True(t, MustMoney("500").Equal(Amount(Kg(5), MustMoney("100"))))
	assert.Equal(t, "Rs. 6000.00", FormatRupees(Amount(Kg(200), MustMoney("30"))))
}

func TestPricePerKg(t *testing.T) {
	assert.True(t, MustMoney("30").Equal(PricePerKg(MustMoney("6000"), Kg(200))))
	assert.True(t, PricePerKg(MustMoney("6000"), 0).IsZero())
}
