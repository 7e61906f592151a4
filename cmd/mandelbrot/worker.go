package main

import (
	"net/url"

	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel"
	"github.com/j3hempsey/remotemandel/config"
	"github.com/j3hempsey/remotemandel/fractal"
	"github.com/j3hempsey/remotemandel/msg"
	"github.com/j3hempsey/remotemandel/worker"
	"golang.org/x/net/context"
)

func runWorker(ctx context.Context, cfg *config.Config, logger ltsvlog.LogWriter) error {
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	w := worker.NewWorker(u, worker.DefaultWorkerIDHeaderName, *workerID, logger, cfg.WorkerConfig())
	return w.Run(ctx, newPixelFunc)
}

// newPixelFunc evaluates the plane the coordinator sent on registration.
func newPixelFunc(reg *msg.RegisterWorkerResult) remotemandel.PixelFunc {
	p := fractal.Plane{MinX: reg.Plane.MinX, MaxX: reg.Plane.MaxX, MinY: reg.Plane.MinY, MaxY: reg.Plane.MaxY}
	return p.PixelFunc(reg.Height, reg.Width)
}
