package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel"
	"github.com/j3hempsey/remotemandel/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

func TestParseDimensions(t *testing.T) {
	h, w, err := parseDimensions([]string{"480", "640"})
	require.NoError(t, err)
	assert.Equal(t, 480, h)
	assert.Equal(t, 640, w)

	for _, args := range [][]string{
		nil,
		{"480"},
		{"480", "640", "1"},
		{"0", "640"},
		{"480", "-1"},
		{"tall", "640"},
	} {
		_, _, err := parseDimensions(args)
		assert.Error(t, err, "%q", args)
	}
}

func TestRunLocal(t *testing.T) {
	logger := ltsvlog.NewLTSVLogger(io.Discard, false)
	for _, s := range []string{"dynamic", "block", "cyclic"} {
		cfg := config.Default()
		cfg.Strategy = s
		cfg.ChunkHeight = 7
		cfg.Procs = 3
		res, err := runLocal(context.Background(), cfg, 30, 20, logger)
		require.NoError(t, err, s)
		assert.True(t, res.Grid.Complete(), s)
		assert.Equal(t, 2, res.Terminations, s)
	}
}

func TestRunLocalNoWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.Procs = 1
	_, err := runLocal(context.Background(), cfg, 30, 20, ltsvlog.NewLTSVLogger(io.Discard, false))
	assert.ErrorIs(t, err, remotemandel.ErrNoWorkers)
}

func TestLoadConfigFile(t *testing.T) {
	saved := *configFile
	defer func() { *configFile = saved }()

	*configFile = filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(*configFile, []byte("procs = 6\nstrategy = \"block\"\n"), 0o644))
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Procs)
	assert.Equal(t, "block", cfg.Strategy)

	require.NoError(t, os.WriteFile(*configFile, []byte("output = \"out.gif\"\n"), 0o644))
	_, err = loadConfig()
	assert.Error(t, err)
}

// mainArgsEnv makes the test binary run main with the given arguments.
const mainArgsEnv = "MANDELBROT_TEST_MAIN_ARGS"

func TestMain(m *testing.M) {
	if args, ok := os.LookupEnv(mainArgsEnv); ok {
		os.Args = append([]string{"mandelbrot"}, strings.Fields(args)...)
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func runMain(t *testing.T, args string) (stdout, stderr string, code int) {
	t.Helper()
	cmd := exec.Command(os.Args[0])
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), mainArgsEnv+"="+args)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return outBuf.String(), errBuf.String(), code
}

func TestUsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args string
	}{
		{"no dimensions", ""},
		{"one dimension", "480"},
		{"zero height", "0 640"},
		{"negative width", "480 -1"},
		{"not a number", "tall 640"},
		{"coordinator without dimensions", "-mode coordinator"},
		{"worker with dimensions", "-mode worker 480 640"},
		{"unknown mode", "-mode spiral 480 640"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, code := runMain(t, tc.args)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "usage: mandelbrot <height> <width>")
			// nothing is logged because no group is ever set up
			assert.Empty(t, stdout)
		})
	}
}

func TestMainNoWorkersExitsCleanly(t *testing.T) {
	stdout, _, code := runMain(t, "-procs 1 8 8")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "process group has no workers")
}

func TestMainLocalWritesImage(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "m.png")
	_, _, code := runMain(t, "-procs 3 -chunk 4 -out "+name+" 16 12")
	require.Equal(t, 0, code)
	_, err := os.Stat(name)
	assert.NoError(t, err)
}
