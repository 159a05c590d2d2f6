package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		token string
		want  float64
		ok    bool
	}{
		{"50", 50, true},
		{"1,000", 1000, true},
		{"1.000", 1000, true},
		{"1 000", 1000, true},
		{"2,5", 2.5, true},
		{"2.5", 2.5, true},
		{"1,234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"12,50", 12.5, true},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := Number(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		unit  string
	}{
		{"1,000 pcs", 1000, "pcs"},
		{"2,5", 2.5, ""},
		{"50 units", 50, "pcs"},
		{"approx. 300 m²", 300, "m2"},
		{"12 boxes of 100", 12, "box"},
		{"7 kg", 7, "kg"},
		{"10 blue", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := Parse(tt.input)
			require.NotNil(t, p.Value)
			assert.InDelta(t, tt.want, *p.Value, 1e-9)
			assert.Equal(t, tt.unit, p.Unit)
		})
	}
}

func TestParse_NoQuantity(t *testing.T) {
	for _, input := range []string{"", "n/a", "0", "0 pcs", "TBD"} {
		assert.Nil(t, Parse(input).Value, input)
	}
}

func TestFromDescription(t *testing.T) {
	tests := []struct {
		input string
		want  Embedded
	}{
		{"50x Cordless drill", Embedded{Value: 50, Description: "Cordless drill"}},
		{"50 x Cordless drill", Embedded{Value: 50, Description: "Cordless drill"}},
		{"Qty: 4 × Ladder", Embedded{Value: 4, Description: "Ladder"}},
		{"2 pcs Hammer", Embedded{Value: 2, Unit: "pcs", Description: "Hammer"}},
		{"100 m of cable NYM 3x1.5", Embedded{Value: 100, Unit: "m", Description: "cable NYM 3x1.5"}},
		{"Safety gloves - 200 pairs", Embedded{Value: 200, Unit: "pair", Description: "Safety gloves"}},
		{"Helmet x 30", Embedded{Value: 30, Description: "Helmet"}},
		{"Primer, 1,000 l", Embedded{Value: 1000, Unit: "l", Description: "Primer"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := FromDescription(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromDescription_NoQuantity(t *testing.T) {
	for _, input := range []string{
		"DEWALT DCD791D2 20V Cordless Drill",
		"Hex bolt M8",
		"3M H-700 Safety Helmet",
		"Paint - red",
		"0x Widget",
		"Cable - 20 blue",
	} {
		_, ok := FromDescription(input)
		assert.False(t, ok, input)
	}
}

func TestUnits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PCS", "pcs"},
		{"Units", "pcs"},
		{"ea.", "pcs"},
		{"Metres", "m"},
		{"KGS", "kg"},
		{"sqm", "m2"},
		{"Pairs", "pair"},
		{"widgets", "widgets"},
		{"  Bag ", "bag"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalUnit(tt.in))
		})
	}

	_, ok := LookupUnit("widgets")
	assert.False(t, ok)
}
