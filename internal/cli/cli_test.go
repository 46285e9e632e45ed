package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shelf/pkg/shelf"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// runCLI executes a fresh root command with the given stdin and arguments.
func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "shelf v"+shelf.Version+"\nmodule: "+modulePath+"\n", out)
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")

	out, _, err := runCLI(t, "", "init", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.BackendMemory, cfg.Backend)
	assert.True(t, cfg.Seed)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.SeedFile)

	out, _, err = runCLI(t, "", "init", "--config-dir", dir, "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Config already exists")

	again, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, data, again, "init must not overwrite an existing config")
}

func TestInitBackendFlag(t *testing.T) {
	dir := t.TempDir()

	_, _, err := runCLI(t, "", "init", "--config-dir", dir, "--backend", "sqlite")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend)

	_, _, err = runCLI(t, "", "init", "--config-dir", t.TempDir(), "--backend", "postgres")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestListDefaultSeed(t *testing.T) {
	for _, backend := range []string{types.BackendMemory, types.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			out, _, err := runCLI(t, "", "list", "--config-dir", t.TempDir(), "--backend", backend)
			require.NoError(t, err)
			assert.Contains(t, out, "Catalog holds 3 book(s):")
			assert.Less(t, strings.Index(out, "C程序设计"), strings.Index(out, "算法导论"))
			assert.Less(t, strings.Index(out, "算法导论"), strings.Index(out, "深入理解计算机系统"))
		})
	}
}

func TestListSorted(t *testing.T) {
	tests := []struct {
		name  string
		sort  string
		order []string
	}{
		{name: "by title", sort: "title", order: []string{"C程序设计", "深入理解计算机系统", "算法导论"}},
		{name: "by author", sort: "author", order: []string{"Randal E. Bryant", "Thomas H. Cormen", "谭浩强"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, "", "list", "--config-dir", t.TempDir(), "--sort", tt.sort)
			require.NoError(t, err)
			for i := 1; i < len(tt.order); i++ {
				assert.Less(t, strings.Index(out, tt.order[i-1]), strings.Index(out, tt.order[i]))
			}
		})
	}
}

func TestListInvalidSort(t *testing.T) {
	_, _, err := runCLI(t, "", "list", "--config-dir", t.TempDir(), "--sort", "price")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestListJSON(t *testing.T) {
	out, _, err := runCLI(t, "", "list", "--config-dir", t.TempDir(), "--json", "--backend", "sqlite")
	require.NoError(t, err)

	var books []types.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.Len(t, books, 3)
	assert.Equal(t, "9787111495482", books[0].ISBN)
	for _, b := range books {
		assert.NotEmpty(t, b.BookID)
		assert.True(t, b.Available)
	}
}

func TestListSeedDisabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: memory\nseed: false\n")

	out, _, err := runCLI(t, "", "list", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No books in the catalog.")
}

func TestListSeedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.jsonl"), []byte(
		`{"title":"Go","author":"Pike","isbn":"1","year":2015,"price":30}`+"\n"+
			`{"title":"Zig","author":"Kelley","isbn":"2","year":2020,"price":20,"available":false}`+"\n",
	), 0o644))
	writeConfig(t, dir, "seed: false\nseed_file: books.jsonl\n")

	out, _, err := runCLI(t, "", "list", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog holds 2 book(s):")
	assert.Contains(t, out, "Title:  Zig")
	assert.Contains(t, out, "Status: borrowed")
	assert.NotContains(t, out, "算法导论")
}

func TestListMissingSeedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "seed_file: missing.jsonl\n")

	_, _, err := runCLI(t, "", "list", "--config-dir", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		args    []string
		wantErr error
	}{
		{
			name:    "unknown backend in config",
			config:  "backend: postgres\n",
			wantErr: types.ErrBackendUnknown,
		},
		{
			name:    "empty backend in config",
			config:  "backend: \"\"\n",
			wantErr: types.ErrBackendEmpty,
		},
		{
			name:   "malformed yaml",
			config: "backend: [memory\n",
		},
		{
			name:   "invalid log level",
			config: "log_level: loud\n",
		},
		{
			name: "unknown backend flag",
			args: []string{"--backend", "oracle"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.config != "" {
				writeConfig(t, dir, tt.config)
			}
			args := append([]string{"list", "--config-dir", dir}, tt.args...)

			_, _, err := runCLI(t, "", args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestFlagOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: postgres\n")

	_, _, err := runCLI(t, "", "list", "--config-dir", dir, "--backend", "memory")
	assert.NoError(t, err)
}

func TestEnvOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: memory\n")
	t.Setenv("SHELF_BACKEND", "postgres")

	_, _, err := runCLI(t, "", "list", "--config-dir", dir)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SHELF_SEED=false\n"), 0o644))
	_, preset := os.LookupEnv("SHELF_SEED")
	require.False(t, preset, "SHELF_SEED must not be set for this test")
	t.Cleanup(func() { os.Unsetenv("SHELF_SEED") })

	out, _, err := runCLI(t, "", "list", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No books in the catalog.")
}

func TestDebugLogging(t *testing.T) {
	_, stderr, err := runCLI(t, "", "list", "--config-dir", t.TempDir(), "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "catalog opened")
	assert.Contains(t, stderr, "seeded=3")
}

func TestMenuSession(t *testing.T) {
	isbn := "9787111495482"
	input := strings.Join([]string{
		"5", isbn,
		"5", isbn,
		"2", "9787111187776",
		"7",
		"0",
	}, "\n") + "\n"

	for _, backend := range []string{types.BackendMemory, types.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			for _, args := range [][]string{
				{"--config-dir", t.TempDir(), "--backend", backend},
				{"menu", "--config-dir", t.TempDir(), "--backend", backend},
			} {
				out, _, err := runCLI(t, input, args...)
				require.NoError(t, err)
				assert.Contains(t, out, "Book borrowed.")
				assert.Contains(t, out, "Borrow failed: book is already borrowed.")
				assert.Contains(t, out, "Book removed.")
				assert.Contains(t, out, "Catalog holds 2 book(s):")
				assert.Contains(t, out, "Goodbye!")
			}
		})
	}
}

func TestMenuInterruptedExitsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader("7\n"))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"menu", "--config-dir", t.TempDir()})

	err := root.ExecuteContext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, exitSuccess, exitCode(err))
	assert.NotContains(t, out.String(), "Catalog holds")
}

func TestMenuRejectsArgs(t *testing.T) {
	_, _, err := runCLI(t, "", "menu", "extra", "--config-dir", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestExitCode(t *testing.T) {
	base := errors.New("boom")
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(base))
	assert.Equal(t, exitUserError, exitCode(userError(base)))
	assert.Equal(t, exitSysError, exitCode(sysError(base)))
	assert.ErrorIs(t, sysError(base), base)
	assert.Equal(t, "boom", sysError(base).Error())
}
