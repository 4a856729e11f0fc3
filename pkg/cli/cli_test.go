package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv keeps host configuration out of CLI tests.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ENV", "")
	t.Setenv("GCS_BUCKET_NAME", "")
	t.Setenv("DATAPREP_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dataprep version dev (commit: none)")
}

func TestVersionCmd_JSON(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "dev", body["version"])
	assert.Equal(t, "none", body["commit"])
}

func TestConfigShowCmd(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "config", "show", "--env", "staging")
	require.NoError(t, err)
	assert.Contains(t, out, "staging-churn-prediction-bucket")
	assert.Contains(t, out, "Environment:")
}

func TestConfigShowCmd_JSON(t *testing.T) {
	isolateEnv(t)

	out, err := execute(t, "config", "show", "--env", "production", "-o", "json")
	require.NoError(t, err)

	var cfg map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "prod-churn-prediction-bucket", cfg["Bucket"])
}

func TestConfigShowCmd_UnknownEnvFails(t *testing.T) {
	isolateEnv(t)

	_, err := execute(t, "config", "show", "--env", "qa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GCS_BUCKET_NAME")
}

func TestRunsListCmd_EmptyHistory(t *testing.T) {
	isolateEnv(t)
	t.Setenv("META_DB_PATH", filepath.Join(t.TempDir(), "meta.db"))

	out, err := execute(t, "runs", "list", "--env", "development")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN ID")
}

func TestRunsShowCmd_UnknownRun(t *testing.T) {
	isolateEnv(t)
	t.Setenv("META_DB_PATH", filepath.Join(t.TempDir(), "meta.db"))

	_, err := execute(t, "runs", "show", "nope", "--env", "development")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestZeroArgCommandsRejectPositionalArgs(t *testing.T) {
	isolateEnv(t)

	for _, args := range [][]string{
		{"version", "extra"},
		{"run", "extra"},
		{"config", "show", "extra"},
		{"runs", "list", "extra"},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, "args: %s", strings.Join(args, " "))
	}
}
