package main

import (
	"context"
	"math/rand"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"metersim/internal/config"
	httpserver "metersim/internal/http"
	"metersim/internal/query"
	"metersim/internal/sim"
	"metersim/internal/store"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("config error")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		logger.WithError(err).Fatal("store error")
	}

	var rng *rand.Rand
	if cfg.RandomSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.RandomSeed))
	}

	engine := sim.New(st, logger, rng)
	queries := query.New(st)

	srv := httpserver.New(cfg, engine, queries, logger)
	logger.WithField("addr", cfg.ListenAddr()).Info("meter API listening")

	if err := srv.Run(ctx); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
