package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siteworks/drawalign/pkg/cache"
)

func TestCountEntries(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatal(err)
		}
	}

	if got := countEntries(dir); got != 3 {
		t.Errorf("countEntries() = %d, want 3", got)
	}
	if got := countEntries(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("countEntries(missing) = %d, want 0", got)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfgPath := filepath.Join(dir, "config.toml")
	os.WriteFile(cfgPath, []byte("[cache]\ndir = \""+filepath.ToSlash(cacheDir)+"\"\n[store]\npath = \""+filepath.ToSlash(filepath.Join(dir, "store"))+"\"\n"), 0o644)

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	fc.Set(context.Background(), "k", []byte("v"), 0)

	out, err := runCLI(t, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", out, cacheDir)
	}

	if _, err := runCLI(t, "--config", cfgPath, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if got := countEntries(cacheDir); got != 0 {
		t.Errorf("entries after clear = %d", got)
	}
}

// runCLI executes the root command with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
