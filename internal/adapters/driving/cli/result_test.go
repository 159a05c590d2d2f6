package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// processSample extracts one file and returns its document ID.
func processSample(t *testing.T, env *testEnv) string {
	t.Helper()
	path := writeFile(t, t.TempDir(), "rfq.txt", "content")

	docs, _, err := openDocuments(runOptions{cfg: domain.DefaultExtractionConfig()})
	require.NoError(t, err)
	out, err := docs.Process(t.Context(), path)
	require.NoError(t, err)
	return out.Document.ID
}

func TestResultListCmd(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		setupCLI(t, sampleExtraction())

		out, err := execute(t, "", "result", "list")

		require.NoError(t, err)
		assert.Contains(t, out, "No documents processed yet.")
	})

	t.Run("table", func(t *testing.T) {
		env := setupCLI(t, sampleExtraction())
		id := processSample(t, env)

		out, err := execute(t, "", "result", "list")

		require.NoError(t, err)
		assert.Contains(t, out, id)
		assert.Contains(t, out, "rfq.txt")
		assert.Contains(t, out, string(domain.DocumentCompleted))
	})

	t.Run("json", func(t *testing.T) {
		env := setupCLI(t, sampleExtraction())
		id := processSample(t, env)

		out, err := execute(t, "", "results", "list", "--json")
		require.NoError(t, err)

		var docs []domain.Document
		require.NoError(t, json.Unmarshal([]byte(out), &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, id, docs[0].ID)
	})
}

func TestResultGetCmd(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		env := setupCLI(t, sampleExtraction())
		id := processSample(t, env)

		out, err := execute(t, "", "result", "get", id)

		require.NoError(t, err)
		assert.Contains(t, out, "Gate valve")
		assert.Contains(t, out, "Method:     text")
	})

	t.Run("json", func(t *testing.T) {
		env := setupCLI(t, sampleExtraction())
		id := processSample(t, env)

		out, err := execute(t, "", "result", "get", "--json", id)
		require.NoError(t, err)

		var row resultJSON
		require.NoError(t, json.Unmarshal([]byte(out), &row))
		assert.Equal(t, id, row.DocumentID)
		assert.True(t, row.Accepted)
		require.NotNil(t, row.Result)
		assert.InDelta(t, 0.92, row.Result.Confidence, 1e-9)
	})

	t.Run("failed document", func(t *testing.T) {
		env := setupCLI(t, sampleExtraction())
		env.extractor.err = assert.AnError
		path := writeFile(t, t.TempDir(), "broken.txt", "content")
		docs, _, err := openDocuments(runOptions{cfg: domain.DefaultExtractionConfig()})
		require.NoError(t, err)
		outcome, _ := docs.Process(t.Context(), path)

		out, err := execute(t, "", "result", "get", outcome.Document.ID)

		require.NoError(t, err)
		assert.Contains(t, out, "broken.txt (error)")
		assert.Contains(t, out, assert.AnError.Error())
	})

	t.Run("unknown id", func(t *testing.T) {
		setupCLI(t, sampleExtraction())

		_, err := execute(t, "", "result", "get", "nope")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestResultExportCmd(t *testing.T) {
	env := setupCLI(t, sampleExtraction())
	first := processSample(t, env)
	processSample(t, env)
	target := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := execute(t, "", "result", "export", target, first)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 document(s)")

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, first, summary[1][1])

	target = filepath.Join(t.TempDir(), "all.xlsx")
	out, err = execute(t, "", "result", "export", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 document(s)")
}
