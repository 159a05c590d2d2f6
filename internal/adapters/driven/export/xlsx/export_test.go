package xlsx

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

func qty(v float64) *float64 { return &v }

func sampleEntries() []Entry {
	return []Entry{
		{
			Document: domain.Document{ID: "doc-1", Name: "rfq.docx", Status: domain.DocumentCompleted},
			Result: &domain.StoredResult{
				DocumentID: "doc-1",
				Result: domain.ExtractionResult{
					Requirements: &domain.RequirementSet{
						CustomerName: "Acme",
						Items: []domain.LineItem{
							{Description: "Steel bolt M8", Quantity: qty(200), Unit: "pcs"},
							{Description: "Gasket", Specifications: "EPDM"},
						},
					},
					ExtractionMethod: domain.MethodDOCX,
					Confidence:       0.92,
					ProcessingTimeMS: 40,
					Attempts:         []domain.ExtractionAttempt{{Strategy: "docx"}},
				},
			},
		},
		{
			Document: domain.Document{ID: "doc-2", Name: "broken.pdf", Status: domain.DocumentError},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleEntries()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	items, err := f.GetRows(ItemsSheet)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, itemHeaders, items[0])
	assert.Equal(t, []string{"rfq.docx", "1", "Steel bolt M8", "200", "pcs", "", "Acme"}, items[1])
	assert.Equal(t, "Gasket", items[2][2])
	assert.Equal(t, "", items[2][3], "missing quantity stays blank")
	assert.Equal(t, "EPDM", items[2][5])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"rfq.docx", "doc-1", "completed", "docx", "0.92", "2", "40", "0", "1"}, summary[1])
	assert.Equal(t, []string{"broken.pdf", "doc-2", "error"}, summary[2])
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.xlsx")

	require.NoError(t, Export(path, sampleEntries()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{ItemsSheet, SummarySheet}, f.GetSheetList())
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ItemsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
