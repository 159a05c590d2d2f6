package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

func TestProcess(t *testing.T) {
	in := &domain.RequirementSet{Items: []domain.LineItem{
		{Description: "Drill", Unit: "Units"},
		{Description: "Cable", Unit: "Metres"},
		{Description: "Paint", Unit: "Bucket"},
		{Description: "Bolt"},
	}}

	out, err := New().Process(context.Background(), in)
	require.NoError(t, err)

	units := make([]string, len(out.Items))
	for i, item := range out.Items {
		units[i] = item.Unit
	}
	assert.Equal(t, []string{"pcs", "m", "bucket", ""}, units)
	assert.Equal(t, "Units", in.Items[0].Unit)
}

func TestName(t *testing.T) {
	assert.Equal(t, "units", New().Name())
}
