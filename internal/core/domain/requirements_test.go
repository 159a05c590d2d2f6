package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidQuantity(t *testing.T) {
	tests := []struct {
		name     string
		q        float64
		expected bool
	}{
		{"positive integer", 50, true},
		{"positive fraction", 2.5, true},
		{"zero", 0, false},
		{"negative", -3, false},
		{"infinity", math.Inf(1), false},
		{"nan", math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidQuantity(tt.q))
		})
	}
}

func TestQty(t *testing.T) {
	q := Qty(10)
	require.NotNil(t, q)
	assert.InDelta(t, 10.0, *q, 1e-9)

	assert.Nil(t, Qty(0))
	assert.Nil(t, Qty(-1))
}

func TestNewRequirementSet(t *testing.T) {
	set := NewRequirementSet()
	require.NotNil(t, set)
	assert.NotNil(t, set.Items)
	assert.True(t, set.IsEmpty())
}

func TestRequirementSet_IsEmpty(t *testing.T) {
	var nilSet *RequirementSet
	assert.True(t, nilSet.IsEmpty())

	set := &RequirementSet{Items: []LineItem{{Description: "Drill"}}}
	assert.False(t, set.IsEmpty())
}

func TestRequirementSet_Clean(t *testing.T) {
	bad := -4.0
	set := &RequirementSet{
		Items: []LineItem{
			{Description: "  DEWALT DCD791D2 Drill ", Quantity: Qty(50), Unit: " units "},
			{Description: "", Quantity: nil},
			{Description: "   "},
			{Description: "", Quantity: Qty(3)},
			{Description: "Helmet", Quantity: &bad},
		},
	}

	set.Clean()

	require.Len(t, set.Items, 3)
	assert.Equal(t, "DEWALT DCD791D2 Drill", set.Items[0].Description)
	assert.Equal(t, "units", set.Items[0].Unit)
	assert.True(t, set.Items[1].HasQuantity())
	assert.False(t, set.Items[1].HasDescription())
	assert.Equal(t, "Helmet", set.Items[2].Description)
	assert.Nil(t, set.Items[2].Quantity, "invalid quantity should be unset")
}

func TestRequirementSet_Clean_NilItems(t *testing.T) {
	set := &RequirementSet{}
	set.Clean()
	assert.NotNil(t, set.Items)
	assert.Empty(t, set.Items)
}

func TestRequirementSet_Clone(t *testing.T) {
	original := &RequirementSet{
		CustomerName: "ACME",
		Items:        []LineItem{{Description: "Drill", Quantity: Qty(5)}},
	}

	clone := original.Clone()
	*clone.Items[0].Quantity = 99
	clone.Items[0].Description = "Saw"

	assert.InDelta(t, 5.0, *original.Items[0].Quantity, 1e-9)
	assert.Equal(t, "Drill", original.Items[0].Description)
	assert.Equal(t, "ACME", clone.CustomerName)

	var nilSet *RequirementSet
	assert.NotNil(t, nilSet.Clone().Items)
}

func TestLineItem_HasValidQuantity(t *testing.T) {
	nan := math.NaN()
	assert.True(t, LineItem{Quantity: Qty(1)}.HasValidQuantity())
	assert.False(t, LineItem{}.HasValidQuantity())
	assert.False(t, LineItem{Quantity: &nan}.HasValidQuantity())
}
