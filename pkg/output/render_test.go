package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weykent/runitsv/pkg/output"
	"github.com/weykent/runitsv/pkg/types"
)

func TestRenderJSON(t *testing.T) {
	report := &types.Report{
		Paths:   map[string]bool{"/etc/sv/testsv/run": true, "/service/testsv": false},
		Changed: true,
	}

	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, report, output.FormatJSON))

	var decoded types.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.Paths, decoded.Paths)
	assert.True(t, decoded.Changed)
	assert.False(t, decoded.WouldChange)
}

func TestRenderTextPathsSorted(t *testing.T) {
	report := &types.Report{
		Paths: map[string]bool{"/b": true, "/a": false, "/c": false},
	}

	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, report, output.FormatText))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "/a")
	assert.Contains(t, lines[1], "/b")
	assert.Contains(t, lines[2], "/c")
}

func TestRenderTextMarksChangedPaths(t *testing.T) {
	report := &types.Report{
		Paths:   map[string]bool{"/changed": true, "/same": false},
		Changed: true,
	}

	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, report, output.FormatText))

	out := buf.String()
	assert.Contains(t, out, "~ /changed")
	assert.Contains(t, out, "  /same")
	assert.NotContains(t, out, "~ /same")
}

func TestRenderTextSummary(t *testing.T) {
	tests := []struct {
		name    string
		report  *types.Report
		summary string
	}{
		{
			name:    "no changes",
			report:  &types.Report{Paths: map[string]bool{"/a": false}},
			summary: "no changes",
		},
		{
			name:    "changes applied",
			report:  &types.Report{Paths: map[string]bool{"/a": true}, Changed: true},
			summary: "changes applied",
		},
		{
			name:    "dry run",
			report:  &types.Report{Paths: map[string]bool{"/a": true}, Changed: true, WouldChange: true},
			summary: "changes pending (dry run, nothing applied)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.Render(&buf, tt.report, output.FormatText))
			assert.Contains(t, buf.String(), tt.summary)
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := output.Render(&buf, &types.Report{}, output.Format("xml"))
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
