package internal

import (
	"testing"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/assert"
)

func TestSourceName(t *testing.T) {
	tests := []struct {
		name     string
		cfg      contract.Config
		expected string
	}{
		{"file", contract.Config{Source: schema.FileSource, InputPath: "/data/kpi_catalog.csv"}, "kpi_catalog.csv"},
		{"stdin", contract.Config{Source: schema.FileSource}, "stdin"},
		{"latest run", contract.Config{Source: schema.StoreSource}, "history (latest run)"},
		{"pinned run", contract.Config{Source: schema.StoreSource, RunID: 7}, "history (run 7)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SourceName(&tt.cfg))
		})
	}
}

func TestHeaderWriter(t *testing.T) {
	assert.NotNil(t, headerWriter(&contract.Config{Output: schema.TextOut}))
	assert.NotSame(t,
		headerWriter(&contract.Config{Output: schema.TextOut}),
		headerWriter(&contract.Config{Output: schema.JSONOut}))
	assert.Same(t,
		headerWriter(&contract.Config{Output: schema.TextOut}),
		headerWriter(&contract.Config{Output: schema.JSONOut, OutputFile: "out.json"}))
}
