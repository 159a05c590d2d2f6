package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategyKind_Order(t *testing.T) {
	assert.Less(t, int(KindFormat), int(KindLayout))
	assert.Less(t, int(KindLayout), int(KindVision))
	assert.Less(t, int(KindVision), int(KindFallback))
}

func TestStrategyKind_String(t *testing.T) {
	tests := []struct {
		kind     StrategyKind
		expected string
	}{
		{KindFormat, "format"},
		{KindLayout, "layout"},
		{KindVision, "vision"},
		{KindFallback, "fallback"},
		{StrategyKind(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestExtractionAttempt_Failed(t *testing.T) {
	assert.False(t, ExtractionAttempt{Strategy: "docx"}.Failed())
	assert.True(t, ExtractionAttempt{Err: errors.New("boom")}.Failed())
	assert.True(t, ExtractionAttempt{Error: "boom"}.Failed())
}

func TestExtractionResult_Accepted(t *testing.T) {
	var nilResult *ExtractionResult
	assert.False(t, nilResult.Accepted(0.85))

	r := &ExtractionResult{Confidence: 0.85}
	assert.True(t, r.Accepted(0.85))
	assert.False(t, r.Accepted(0.9))
}
