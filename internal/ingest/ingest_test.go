package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.xml"))
	touch(t, filepath.Join(root, "a.PDF"))
	touch(t, filepath.Join(root, "notes.md"))
	touch(t, filepath.Join(root, "sub", "c.jpg"))
	touch(t, filepath.Join(root, ".hidden", "d.xml"))

	paths, stats, err := ScanDirectory(context.Background(), root, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.xml"),
		filepath.Join(root, "sub", "c.jpg"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)

	paths, _, err = ScanDirectory(context.Background(), root, []string{".xml"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, ".hidden", "d.xml"),
		filepath.Join(root, "b.xml"),
	}, paths)

	_, _, err = ScanDirectory(context.Background(), " ", nil, true)
	assert.Error(t, err)

	_, _, err = ScanDirectory(context.Background(), filepath.Join(root, "missing"), nil, true)
	assert.Error(t, err)
}

func TestAllowedExt(t *testing.T) {
	assert.True(t, AllowedExt(".XML"))
	assert.True(t, AllowedExt("txt"))
	assert.False(t, AllowedExt(".docx"))
	assert.True(t, IsHidden("/tmp/.env"))
	assert.False(t, IsHidden("/tmp/nota.xml"))
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.xml"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ev, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	select {
	case p := <-ev:
		assert.Equal(t, filepath.Join(root, "existing.xml"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan not emitted")
	}

	touch(t, filepath.Join(root, "ignored.md"))
	touch(t, filepath.Join(root, "new.pdf"))
	select {
	case p := <-ev:
		assert.Equal(t, filepath.Join(root, "new.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("new file not emitted")
	}

	cancel()
	for range ev {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
