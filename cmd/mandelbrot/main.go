// Command mandelbrot renders the Mandelbrot set with a coordinator handing
// out row chunks to a group of workers.
//
//	mandelbrot [flags] <height> <width>     local or coordinator mode
//	mandelbrot -mode worker [flags]         worker mode
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel"
	"github.com/j3hempsey/remotemandel/config"
	"github.com/j3hempsey/remotemandel/fractal"
	"github.com/muesli/termenv"
	"golang.org/x/net/context"
)

var (
	mode       = flag.String("mode", "local", "local, coordinator or worker")
	configFile = flag.String("config", "", "TOML or YAML configuration file")
	procs      = flag.Int("procs", 0, "process group size, coordinator included")
	chunk      = flag.Int("chunk", 0, "rows per chunk for the dynamic strategy")
	strategy   = flag.String("strategy", "", "dynamic, block or cyclic")
	addr       = flag.String("addr", "localhost:8080", "http service address")
	workerID   = flag.String("id", "worker1", "worker ID")
	out        = flag.String("out", "", "output image file (.png, .bmp, .tif)")
	debug      = flag.Bool("debug", false, "enable debug logs")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <height> <width>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s -mode worker [-addr host:port] [-id workerID]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	var height, width int
	switch *mode {
	case "local", "coordinator":
		var err error
		height, width, err = parseDimensions(flag.Args())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			usage()
			os.Exit(2)
		}
	case "worker":
		if flag.NArg() != 0 {
			usage()
			os.Exit(2)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := ltsvlog.NewLTSVLogger(os.Stdout, cfg.Debug)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			<-interrupt
			logger.Info().String("msg", "got interrupt").Log()
			cancel()
		}
	}()

	if *mode == "worker" {
		if err := runWorker(ctx, cfg, logger); err != nil {
			logger.Err(ltsvlog.Err(err).String("msg", "error from worker").
				String("workerID", *workerID).Stack(""))
			os.Exit(1)
		}
		return
	}

	start := time.Now()
	var res *remotemandel.Result
	if *mode == "local" {
		res, err = runLocal(ctx, cfg, height, width, logger)
	} else {
		res, err = runCoordinator(ctx, cfg, height, width, logger)
	}
	if errors.Is(err, remotemandel.ErrNoWorkers) {
		logger.Info().String("msg", "process group has no workers, no image written").
			Int("procs", cfg.Procs).Log()
		return
	}
	if err != nil {
		logger.Err(ltsvlog.Err(err).String("msg", "run failed").String("mode", *mode).Stack(""))
		os.Exit(1)
	}

	img := fractal.Render(res.Grid, fractal.NewPalette(cfg.Density))
	if err := fractal.WriteFile(cfg.Output, img); err != nil {
		logger.Err(ltsvlog.Err(err).String("msg", "failed to write image").
			String("output", cfg.Output).Stack(""))
		os.Exit(1)
	}
	logger.Info().String("msg", "wrote image").String("output", cfg.Output).
		Int("height", height).Int("width", width).Log()
	printSummary(cfg, res, time.Since(start))
}

func parseDimensions(args []string) (height, width int, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	height, err = strconv.Atoi(args[0])
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("height must be a positive integer: %q", args[0])
	}
	width, err = strconv.Atoi(args[1])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("width must be a positive integer: %q", args[1])
	}
	return height, width, nil
}

// loadConfig reads the configuration file, if any, and applies the flags
// given on the command line on top of it.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "procs":
			cfg.Procs = *procs
		case "chunk":
			cfg.ChunkHeight = *chunk
		case "strategy":
			cfg.Strategy = *strategy
		case "out":
			cfg.Output = *out
		case "debug":
			cfg.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := fractal.FormatFromName(cfg.Output); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printSummary(cfg *config.Config, res *remotemandel.Result, elapsed time.Duration) {
	o := termenv.NewOutput(os.Stderr)
	ok := o.String("done").Bold().Foreground(o.Color("2"))
	name := o.String(cfg.Output).Underline()
	fmt.Fprintf(os.Stderr, "%s %s: %dx%d, strategy %s, %d chunks, %d workers terminated in %s\n",
		ok, name, res.Grid.Height, res.Grid.Width, cfg.Strategy,
		len(res.Dispatches), res.Terminations, elapsed.Round(time.Millisecond))
}
