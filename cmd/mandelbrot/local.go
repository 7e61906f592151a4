package main

import (
	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel"
	"github.com/j3hempsey/remotemandel/config"
	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

// runLocal runs the coordinator and cfg.Procs-1 workers as goroutines.
func runLocal(ctx context.Context, cfg *config.Config, height, width int, logger ltsvlog.LogWriter) (*remotemandel.Result, error) {
	planner, err := remotemandel.NewPlanner(remotemandel.Strategy(cfg.Strategy), height, cfg.ChunkHeight, cfg.Procs-1)
	if err != nil {
		return nil, err
	}
	group := remotemandel.NewLocalGroup(cfg.Procs, 1)
	pixel := cfg.FractalPlane().PixelFunc(height, width)

	eg, ctx := errgroup.WithContext(ctx)
	for rank := 1; rank < group.Size(); rank++ {
		w := &remotemandel.Worker{
			Endpoint: group.Endpoint(rank),
			Height:   height,
			Width:    width,
			Pixel:    pixel,
			Logger:   logger,
		}
		eg.Go(func() error { return w.Run(ctx) })
	}
	var res *remotemandel.Result
	eg.Go(func() error {
		var err error
		res, err = remotemandel.NewCoordinator(group.Endpoint(remotemandel.Root), planner, height, width, logger).Run(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
