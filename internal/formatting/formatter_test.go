package formatting

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom/internal/component"
	"loom/internal/conformance"
)

func sampleSnapshot() map[component.Category][]*component.Record {
	return map[component.Category][]*component.Record{
		component.CategoryCapability: {
			{Category: component.CategoryCapability, Name: "echo", Description: "Echo a message", ModuleID: "echo"},
		},
		component.CategoryTemplate: {
			{Category: component.CategoryTemplate, Name: "summary", ModuleID: "summary"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"", "table", "json", "yaml"} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, "format %q", valid)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestRowsOrdering(t *testing.T) {
	rows := Rows(sampleSnapshot())
	require.Len(t, rows, 2)
	// Capabilities list before templates.
	assert.Equal(t, "capability", rows[0].Category)
	assert.Equal(t, "template", rows[1].Category)
}

func TestWriteComponentsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComponents(&buf, FormatJSON, Rows(sampleSnapshot())))

	var decoded []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "echo", decoded[0].Name)
}

func TestWriteComponentsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComponents(&buf, FormatTable, Rows(sampleSnapshot())))

	out := buf.String()
	assert.Contains(t, out, "echo")
	assert.Contains(t, out, "summary")
	assert.Contains(t, out, "2")
}

func TestWriteComponentsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComponents(&buf, FormatTable, nil))
	assert.Contains(t, buf.String(), "No components registered")
}

func TestWriteCheckResults(t *testing.T) {
	results := []conformance.Result{
		{Target: "capability/echo", File: "echo_check.yaml"},
		{Target: "capability/broken", File: "broken_check.yaml", Failures: []string{"output does not contain \"x\""}},
	}

	var buf bytes.Buffer
	allPassed, err := WriteCheckResults(&buf, FormatTable, results)
	require.NoError(t, err)
	assert.False(t, allPassed)

	out := buf.String()
	assert.Contains(t, out, "capability/echo")
	assert.Contains(t, out, "capability/broken")
	assert.Contains(t, out, "1/2 checks passed")
}

func TestWriteCheckResultsAllPass(t *testing.T) {
	var buf bytes.Buffer
	allPassed, err := WriteCheckResults(&buf, FormatJSON, []conformance.Result{
		{Target: "template/summary", File: "summary_check.yaml"},
	})
	require.NoError(t, err)
	assert.True(t, allPassed)
	assert.True(t, strings.Contains(buf.String(), `"passed": true`))
}
