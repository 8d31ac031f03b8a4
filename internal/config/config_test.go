package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INCIDENTS_FILE", "data/incidents.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/incidents.csv", cfg.Data.IncidentsFile)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8090", cfg.API.Port)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 30, cfg.Analysis.HistogramBins)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INCIDENTS_FILE", "incidents.xlsx")
	t.Setenv("OUTPUT_DIR", "artifacts")
	t.Setenv("TOP_N", "25")
	t.Setenv("DATABASE_URL", "postgres://localhost/incidents")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "artifacts", cfg.Output.Dir)
	assert.Equal(t, 25, cfg.Analysis.TopN)
	assert.True(t, cfg.ArchiveEnabled())
}

func TestLoadRequiresIncidentsFile(t *testing.T) {
	t.Setenv("INCIDENTS_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INCIDENTS_FILE")
}

func TestLoadRejectsBadTunables(t *testing.T) {
	t.Setenv("INCIDENTS_FILE", "incidents.csv")
	t.Setenv("TOP_N", "-1")

	_, err := Load()
	require.Error(t, err)
}
