package detection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwatch/internal/models"
)

func writeOverrides(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "species.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestApplyOverrides(t *testing.T) {
	path := writeOverrides(t, `
confidence_threshold: 0.5
species:
  33: jackal
priorities:
  jackal: high
  cow: Medium
`)
	o, err := LoadOverrides(path)
	require.NoError(t, err)

	svc := newTestService(nil)
	require.NoError(t, svc.ApplyOverrides(o))

	assert.Equal(t, 0.5, svc.ConfidenceThreshold())
	assert.Contains(t, svc.SupportedSpecies(), "jackal")
	assert.Equal(t, models.PriorityHigh, svc.PriorityOf("jackal"))
	assert.Equal(t, models.PriorityMedium, svc.PriorityOf("cow"))

	got := svc.Filter([]models.RawDetection{{ClassID: 33, Confidence: 0.55}})
	require.Len(t, got, 1)
	assert.Equal(t, "jackal", got[0].Species)
}

func TestApplyOverrides_RejectsUnknownPriority(t *testing.T) {
	o, err := LoadOverrides(writeOverrides(t, "priorities:\n  cow: severe\n"))
	require.NoError(t, err)

	svc := newTestService(nil)
	assert.Error(t, svc.ApplyOverrides(o))
	assert.Equal(t, models.PriorityLow, svc.PriorityOf("cow"))
}

func TestLoadOverrides_Errors(t *testing.T) {
	_, err := LoadOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadOverrides(writeOverrides(t, "species: [not, a, map"))
	assert.Error(t, err)
}
