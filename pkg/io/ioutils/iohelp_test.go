package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, path string) []byte {
	t.Helper()
	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n1,2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}

func TestPlainAndGzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "a,b\n1,2\n", string(roundTrip(t, filepath.Join(dir, "nested", "plain.csv"))))

	gz := filepath.Join(dir, "rows.csv.gz")
	assert.Equal(t, "a,b\n1,2\n", string(roundTrip(t, gz)))
	raw, err := os.ReadFile(gz)
	require.NoError(t, err)
	assert.Equal(t, gzipMagic[:], raw[:2])
}

func TestOpenSniffsGzipWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	gz := filepath.Join(dir, "rows.csv.gz")
	roundTrip(t, gz)
	disguised := filepath.Join(dir, "rows.dat")
	require.NoError(t, os.Rename(gz, disguised))

	r, err := Open(disguised)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTrimExt(t *testing.T) {
	assert.Equal(t, "out/rows", TrimExt("out/rows.csv.gz"))
	assert.Equal(t, "rows", TrimExt("rows.parquet"))
}
