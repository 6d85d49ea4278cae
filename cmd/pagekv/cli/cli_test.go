package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	backups := t.TempDir()

	common := func(args ...string) []string {
		return append(args, "--dir", dir, "--direct-io=false", "--hex=false", "--log-level", "warn")
	}

	_, err := execute(t, common("put", "user:1", "ada")...)
	require.NoError(t, err)
	_, err = execute(t, common("put", "user:2", "grace")...)
	require.NoError(t, err)
	_, err = execute(t, common("put", "order:7", "pending")...)
	require.NoError(t, err)

	out, err := execute(t, common("get", "user:1")...)
	require.NoError(t, err)
	assert.Equal(t, "ada\n", out)

	_, err = execute(t, common("get", "user:3")...)
	assert.Error(t, err)

	out, err = execute(t, common("scan", "--lower", "user:", "--upper", "user;", "--limit", "0", "--keys-only=false")...)
	require.NoError(t, err)
	assert.Equal(t, "user:1\tada\nuser:2\tgrace\n", out)

	out, err = execute(t, common("scan", "--lower", "", "--upper", "", "--limit", "1", "--keys-only")...)
	require.NoError(t, err)
	assert.Equal(t, "order:7\n", out)

	out, err = execute(t, common("stats", "--format", "json")...)
	require.NoError(t, err)
	var st struct {
		Keys       int `json:"keys"`
		Partitions int `json:"partitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 3, st.Keys)
	assert.Equal(t, 2, st.Partitions)

	out, err = execute(t, common("backup", "snap.pkv", "--backup-dir", backups, "--compression", "lz4", "--format", "yaml")...)
	require.NoError(t, err)
	assert.Contains(t, out, "entries: 3")
	assert.Contains(t, out, "compression: lz4")
	assert.FileExists(t, filepath.Join(backups, "snap.pkv"))

	restored := filepath.Join(t.TempDir(), "restored")
	out, err = execute(t, "restore", "snap.pkv", "--backup-dir", backups, "--dir", restored, "--direct-io=false", "--hex=false", "--log-level", "warn", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"entries": 3`)

	out, err = execute(t, "get", "user:2", "--dir", restored, "--direct-io=false", "--hex=false")
	require.NoError(t, err)
	assert.Equal(t, "grace\n", out)

	out, err = execute(t, common("metrics")...)
	require.NoError(t, err)
	assert.Contains(t, out, "pagekv_range_visited_total 3")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pagekv v"))
}

func TestCLI_Hex(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "put", "00ff", "cafe", "--hex", "--dir", dir, "--direct-io=false", "--log-level", "warn")
	require.NoError(t, err)

	out, err := execute(t, "get", "00ff", "--hex", "--dir", dir, "--direct-io=false", "--log-level", "warn")
	require.NoError(t, err)
	assert.Equal(t, "cafe\n", out)

	_, err = execute(t, "get", "zz", "--hex", "--dir", dir, "--direct-io=false", "--log-level", "warn")
	assert.Error(t, err)

	_, err = execute(t, "get", "00ff", "--hex=false", "--dir", dir, "--log-level", "loud")
	assert.Error(t, err)

	_, err = execute(t, "get", "00ff", "--hex=false", "--dir", dir, "--log-level", "warn")
	assert.Error(t, err, "hex-encoded key does not exist as text")
}

func TestWrapString(t *testing.T) {
	s := WrapString(strings.Repeat("word ", 30))
	for _, line := range strings.Split(s, "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
}
