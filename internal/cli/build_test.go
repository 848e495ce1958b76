package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGolden(t *testing.T) {
	out, errOut, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", modelDir, sessionFile("scenario_b.yaml"))
	require.NoError(t, err)
	assert.Empty(t, errOut)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "build_scenario_b", []byte(out))
}

func TestBuildJSON(t *testing.T) {
	out, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "json"}),
		"--model", modelDir, sessionFile("scenario_b.yaml"))
	require.NoError(t, err)

	var result BuildResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "0192f0c4-0000-7000-8000-00000000000b", result.SessionID)
	assert.Equal(t, "Sales", result.Model)
	assert.False(t, result.Risky)
	assert.Empty(t, result.Problems)
	assert.Contains(t, result.Query, `'Customer'[Country] = "France"`)
}

func TestBuildNoMarkers(t *testing.T) {
	out, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", modelDir, "--no-markers", sessionFile("scenario_b.yaml"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "EVALUATE"), "got %q", out)
	assert.NotContains(t, out, "QUERY BUILDER")
}

func TestBuildSkipsUnresolvedEntries(t *testing.T) {
	out, errOut, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", modelDir, sessionFile("scenario_e.yaml"))
	require.NoError(t, err)

	assert.Contains(t, errOut, "warning:")
	assert.Contains(t, errOut, "OldTable.Retired")
	assert.Contains(t, out, "'Customer'[Country]")
	assert.Contains(t, out, "[Total Sales]")
	assert.NotContains(t, out, "Retired")
}

func TestBuildOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.dax")

	out, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", modelDir, "-o", path, sessionFile("scenario_b.yaml"))
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "// START QUERY BUILDER")
}

func TestBuildUntranslatableFilter(t *testing.T) {
	out, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", modelDir, sessionFile("bad_filter.json"))
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeSynthesis)
	assert.Contains(t, out, "'Sales'[Quantity]")
}

func TestBuildInvalidBetweenFlag(t *testing.T) {
	_, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", modelDir, "--between", "loose", sessionFile("scenario_b.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUsage)
}

func TestBuildMissingModel(t *testing.T) {
	out, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", filepath.Join(t.TempDir(), "missing"), sessionFile("scenario_b.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeModel)
	assert.Contains(t, out, "Error [E002]")
}

func TestBuildMissingSessionFile(t *testing.T) {
	_, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}),
		"--model", modelDir, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeSession)
}

func TestBuildRequiresModelFlag(t *testing.T) {
	_, _, err := execute(t, NewBuildCommand(&RootOptions{Format: "text"}), sessionFile("scenario_b.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}
