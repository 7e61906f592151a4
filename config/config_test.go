package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j3hempsey/remotemandel/fractal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 100, c.ChunkHeight)
	assert.Equal(t, "dynamic", c.Strategy)
	assert.Equal(t, "mandelbrot-ms.png", c.Output)
	assert.Equal(t, fractal.DefaultPlane, c.FractalPlane())
	assert.Equal(t, 60*time.Second, c.Conn.PongWait.Duration)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "run.toml", `
chunk_height = 25
strategy = "cyclic"
procs = 8
output = "out.tiff"

[plane]
min_x = -1.0
max_x = 1.0
min_y = -0.5
max_y = 0.5

[conn]
write_wait = "2s"
pong_wait = "30s"

[worker]
reconnect_delay = "250ms"
max_connect_attempts = 3
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 25, c.ChunkHeight)
	assert.Equal(t, "cyclic", c.Strategy)
	assert.Equal(t, 8, c.Procs)
	assert.Equal(t, "out.tiff", c.Output)
	assert.Equal(t, fractal.Plane{MinX: -1, MaxX: 1, MinY: -0.5, MaxY: 0.5}, c.FractalPlane())

	cc := c.ConnConfig()
	assert.Equal(t, 2*time.Second, cc.WriteWait)
	assert.Equal(t, 30*time.Second, cc.PongWait)
	assert.Equal(t, 27*time.Second, cc.PingPeriod)
	assert.Equal(t, 256, cc.SendChannelLength)

	wc := c.WorkerConfig()
	assert.Equal(t, 250*time.Millisecond, wc.DelayBeforeReconnecting)
	assert.Equal(t, 3, wc.MaxConnectAttempts)
	assert.Equal(t, 2*time.Second, wc.WriteWait)
	// untouched keys keep their defaults
	assert.Equal(t, time.Second, wc.DelayAfterSendingClose)
	assert.Equal(t, 8, c.Density)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "run.yml", `
chunk_height: 10
strategy: block
debug: true
conn:
  send_channel_length: 16
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 10, c.ChunkHeight)
	assert.Equal(t, "block", c.Strategy)
	assert.True(t, c.Debug)
	assert.Equal(t, 16, c.ConnConfig().SendChannelLength)
	assert.Equal(t, 4, c.Procs)
}

func TestLoadEmptyYAML(t *testing.T) {
	c, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "run.json", `{}`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "run.toml", `chunk_hieght = 3`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "run.yaml", "procs: [1, 2]\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "run.toml", `[conn]
write_wait = "soon"`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []func(c *Config){
		func(c *Config) { c.ChunkHeight = 0 },
		func(c *Config) { c.Strategy = "spiral" },
		func(c *Config) { c.Procs = 0 },
		func(c *Config) { c.Plane.MaxX = c.Plane.MinX },
		func(c *Config) { c.Conn.SendChannelLength = 0 },
		func(c *Config) { c.Conn.PongWait = Duration{} },
	}
	for i, modify := range testCases {
		c := Default()
		modify(c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}
