// Package config loads the settings of a run from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/j3hempsey/remotemandel"
	"github.com/j3hempsey/remotemandel/fractal"
	"github.com/j3hempsey/remotemandel/worker"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a run. Zero values in a file keep the defaults.
type Config struct {
	// Rows per chunk for the dynamic strategy.
	ChunkHeight int `toml:"chunk_height" yaml:"chunk_height"`

	// One of dynamic, block, cyclic.
	Strategy string `toml:"strategy" yaml:"strategy"`

	// Process group size in local mode, or the number of ranks the
	// coordinator waits for (itself included).
	Procs int `toml:"procs" yaml:"procs"`

	Output  string `toml:"output" yaml:"output"`
	Density int    `toml:"density" yaml:"density"`
	Debug   bool   `toml:"debug" yaml:"debug"`

	Plane  Plane  `toml:"plane" yaml:"plane"`
	Conn   Conn   `toml:"conn" yaml:"conn"`
	Worker Worker `toml:"worker" yaml:"worker"`
}

type Plane struct {
	MinX float64 `toml:"min_x" yaml:"min_x"`
	MaxX float64 `toml:"max_x" yaml:"max_x"`
	MinY float64 `toml:"min_y" yaml:"min_y"`
	MaxY float64 `toml:"max_y" yaml:"max_y"`
}

type Conn struct {
	WriteWait         Duration `toml:"write_wait" yaml:"write_wait"`
	PongWait          Duration `toml:"pong_wait" yaml:"pong_wait"`
	MaxMessageSize    int64    `toml:"max_message_size" yaml:"max_message_size"`
	SendChannelLength int      `toml:"send_channel_length" yaml:"send_channel_length"`
}

type Worker struct {
	ReconnectDelay     Duration `toml:"reconnect_delay" yaml:"reconnect_delay"`
	CloseDelay         Duration `toml:"close_delay" yaml:"close_delay"`
	MaxConnectAttempts int      `toml:"max_connect_attempts" yaml:"max_connect_attempts"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the default settings.
func Default() *Config {
	cc := remotemandel.DefaultConnConfig()
	wc := worker.DefaultConfig()
	p := fractal.DefaultPlane
	return &Config{
		ChunkHeight: 100,
		Strategy:    string(remotemandel.Dynamic),
		Procs:       4,
		Output:      "mandelbrot-ms.png",
		Density:     8,
		Plane:       Plane{MinX: p.MinX, MaxX: p.MaxX, MinY: p.MinY, MaxY: p.MaxY},
		Conn: Conn{
			WriteWait:         Duration{cc.WriteWait},
			PongWait:          Duration{cc.PongWait},
			MaxMessageSize:    cc.MaxMessageSize,
			SendChannelLength: cc.SendChannelLength,
		},
		Worker: Worker{
			ReconnectDelay:     Duration{wc.DelayBeforeReconnecting},
			CloseDelay:         Duration{wc.DelayAfterSendingClose},
			MaxConnectAttempts: wc.MaxConnectAttempts,
		},
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(c)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(c)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported file extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.ChunkHeight <= 0 {
		return fmt.Errorf("chunk_height must be positive, got %d", c.ChunkHeight)
	}
	switch remotemandel.Strategy(c.Strategy) {
	case remotemandel.Dynamic, remotemandel.Block, remotemandel.Cyclic:
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.Procs <= 0 {
		return fmt.Errorf("procs must be positive, got %d", c.Procs)
	}
	if !c.FractalPlane().Valid() {
		return fmt.Errorf("plane has no extent: %+v", c.Plane)
	}
	if c.Conn.SendChannelLength <= 0 {
		return fmt.Errorf("conn.send_channel_length must be positive, got %d", c.Conn.SendChannelLength)
	}
	if c.Conn.PongWait.Duration <= 0 || c.Conn.WriteWait.Duration <= 0 {
		return errors.New("conn.pong_wait and conn.write_wait must be positive")
	}
	return nil
}

// FractalPlane returns the plane of the image.
func (c *Config) FractalPlane() fractal.Plane {
	return fractal.Plane{MinX: c.Plane.MinX, MaxX: c.Plane.MaxX, MinY: c.Plane.MinY, MaxY: c.Plane.MaxY}
}

// ConnConfig returns the coordinator side websocket settings.
func (c *Config) ConnConfig() remotemandel.ConnConfig {
	cc := remotemandel.DefaultConnConfig()
	cc.WriteWait = c.Conn.WriteWait.Duration
	cc.PongWait = c.Conn.PongWait.Duration
	cc.PingPeriod = (cc.PongWait * 9) / 10
	if c.Conn.MaxMessageSize > 0 {
		cc.MaxMessageSize = c.Conn.MaxMessageSize
	}
	cc.SendChannelLength = c.Conn.SendChannelLength
	return cc
}

// WorkerConfig returns the worker side websocket settings.
func (c *Config) WorkerConfig() worker.Config {
	wc := worker.DefaultConfig()
	wc.DelayBeforeReconnecting = c.Worker.ReconnectDelay.Duration
	wc.DelayAfterSendingClose = c.Worker.CloseDelay.Duration
	wc.MaxConnectAttempts = c.Worker.MaxConnectAttempts
	wc.WriteWait = c.Conn.WriteWait.Duration
	return wc
}
