package main

import (
	"net/http"
	"time"

	"github.com/hnakamur/ltsvlog"
	"github.com/j3hempsey/remotemandel"
	"github.com/j3hempsey/remotemandel/config"
	"github.com/j3hempsey/remotemandel/msg"
	"github.com/j3hempsey/remotemandel/worker"
	"golang.org/x/net/context"
)

// Time allowed for workers to disconnect after the last Terminate.
const disconnectWait = 5 * time.Second

// runCoordinator serves /ws and /status on addr, waits until cfg.Procs-1
// workers have registered and then drives them.
func runCoordinator(ctx context.Context, cfg *config.Config, height, width int, logger ltsvlog.LogWriter) (*remotemandel.Result, error) {
	planner, err := remotemandel.NewPlanner(remotemandel.Strategy(cfg.Strategy), height, cfg.ChunkHeight, cfg.Procs-1)
	if err != nil {
		return nil, err
	}
	p := cfg.Plane
	hub := remotemandel.NewHub(cfg.Procs, height, width,
		msg.Plane{MinX: p.MinX, MaxX: p.MaxX, MinY: p.MinY, MaxY: p.MaxY}, logger)
	coord := remotemandel.NewCoordinator(hub, planner, height, width, logger)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go func() {
		if err := hub.Run(hubCtx); err != nil {
			logger.Err(ltsvlog.Err(err).String("msg", "error from hub.Run").Stack(""))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", remotemandel.ServeWS(hub, worker.DefaultWorkerIDHeaderName, logger, cfg.ConnConfig()))
	mux.HandleFunc("/status", remotemandel.StatusHandler(coord, logger))
	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Info().String("msg", "server start listening").String("address", *addr).Log()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Err(ltsvlog.Err(err).String("msg", "failed to listen").String("address", *addr).Stack(""))
			stopHub()
		}
	}()
	defer srv.Close()

	if err := hub.WaitReady(ctx); err != nil {
		return nil, err
	}
	res, err := coord.Run(ctx)
	if err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, disconnectWait)
	defer cancel()
	if err := hub.WaitGone(waitCtx); err != nil {
		logger.Info().String("msg", "workers still connected after run").String("err", err.Error()).Log()
	}
	return res, nil
}
