package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/todoui/internal/errors"
)

const scenarios = "../../internal/scenario/testdata/"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionShort(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestVersionLong(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Engine:")
	assert.Contains(t, out, "Go version:")
}

func TestConfigPrintsDefaults(t *testing.T) {
	out, err := run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "server:")
	assert.Contains(t, out, "addr:")
	assert.Contains(t, out, ":8080")
	assert.Contains(t, out, "pages_dir: pages")
	assert.Contains(t, out, "busy_timeout: 5s")
}

func TestConfigMissingFile(t *testing.T) {
	_, err := run(t, "config", "--config", "does-not-exist.yaml")
	require.Error(t, err)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "T021", e.Code)
}

func TestSimulatePassing(t *testing.T) {
	out, err := run(t, "simulate", scenarios+"empty_title.yaml", scenarios+"toggle.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "2 scenarios passed")
}

func TestSimulateGlobReportsFailure(t *testing.T) {
	out, err := run(t, "simulate", scenarios+"*.yaml")
	require.Error(t, err)
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "T004")
	assert.Contains(t, out, "1 of 3 scenarios failed")
}

func TestSimulateJSON(t *testing.T) {
	out, err := run(t, "simulate", "--json", scenarios+"toggle.yaml")
	require.NoError(t, err)

	var rep jsonReport
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rep))
	assert.True(t, rep.Passed)
	assert.Equal(t, 1, rep.Submissions)
	assert.Empty(t, rep.Error)
}

func TestSimulateNoMatch(t *testing.T) {
	_, err := run(t, "simulate", scenarios+"*.nothing")
	require.Error(t, err)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "T001", e.Code)
}

func TestServeMissingPagesDir(t *testing.T) {
	_, err := run(t, "serve", "--pages", "no-such-dir")
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "T031", e.Code)
}
