package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	fbxview "github.com/flywave/go-fbxview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerboseLogs(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fbxview.toml")
	require.NoError(t, fbxview.DefaultConfig().Save(cfgPath))
	objPath := filepath.Join(dir, "tri.obj")
	require.NoError(t, os.WriteFile(objPath, []byte("v 0 0 2\nv 1 0 2\nv 0 1 2\nf 1 2 3\n"), 0644))
	out := filepath.Join(dir, "tri.png")

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stderr := os.Stderr
	os.Stderr = w
	defer func() {
		os.Stderr = stderr
		fbxview.SetLogger(fbxview.DefaultConfig().Logger())
	}()

	root := newRootCmd()
	root.SetArgs([]string{"--config", cfgPath, "-v", "render", objPath, "-o", out})
	runErr := root.ExecuteContext(context.Background())
	require.NoError(t, w.Close())
	logged, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, runErr)
	assert.Contains(t, string(logged), "msg=rendering")
	assert.FileExists(t, out)
}
