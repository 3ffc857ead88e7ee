package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDemoScenarios runs the scenarios shipped in testdata/scenarios and
// compares their traces against testdata/golden.
func TestDemoScenarios(t *testing.T) {
	tests := []struct {
		name         string
		scenarioPath string
	}{
		{name: "people_find", scenarioPath: "../../testdata/scenarios/people_find.yaml"},
		{name: "people_schema", scenarioPath: "../../testdata/scenarios/people_schema.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			absPath, err := filepath.Abs(tt.scenarioPath)
			require.NoError(t, err)

			scenario, err := LoadScenario(absPath)
			require.NoError(t, err, "failed to load scenario from %s", tt.scenarioPath)
			assert.Equal(t, tt.name, scenario.Name)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario errors: %v", result.Errors)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}
