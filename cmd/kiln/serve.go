package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/kilnlm/kiln/internal/api"
	"github.com/kilnlm/kiln/internal/inference"
	"github.com/kilnlm/kiln/internal/logger"
	"github.com/kilnlm/kiln/internal/metrics"
	"github.com/kilnlm/kiln/internal/model"
	"github.com/kilnlm/kiln/internal/respcache"
	"github.com/kilnlm/kiln/internal/tokenizer"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		weights     string
		hidden      int64
		seed        int64
		capacity    int64
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the text-generation REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "weights",
				Usage:       "path to model weights JSON (seeded random model when empty)",
				Destination: &weights,
			},
			&cli.Int64Flag{
				Name:        "hidden",
				Usage:       "hidden size for the seeded model",
				Value:       64,
				Destination: &hidden,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "weight seed for the seeded model",
				Value:       1,
				Destination: &seed,
			},
			&cli.Int64Flag{
				Name:        "cache-capacity",
				Usage:       "response cache admission limit",
				Value:       respcache.DefaultCapacity,
				Destination: &capacity,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.JSON(os.Stderr, logger.ParseLevel(cfg.LogLevel))
			applyServeConfig(cmd, cfg, &addr, &weights, &capacity)
			applyModelConfig(cmd, cfg, &hidden, &seed)

			tok := tokenizer.NewByteLevel(false)
			lm, err := loadModel(weights, tok.VocabSize(), int(hidden), seed)
			if err != nil {
				// Fatal: the service must not come up half-initialized.
				return fmt.Errorf("load model: %w", err)
			}
			log.Info("model ready", "vocab", lm.VocabSize(), "weights", weights)

			reg := prometheus.NewRegistry()
			met := metrics.New(reg)
			engine := inference.NewEngine(tok, lm)
			defer engine.Close()

			service := api.NewGenerateService(engine, respcache.New(int(capacity)), met, log)
			server := api.NewServer(service, met, reg, log)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(logger.WithContext(ctx, log), e)
		},
	}
}

// loadModel reads weights from disk, or builds a seeded model when no path
// is given. The loaded vocabulary must match the tokenizer's id space.
func loadModel(weights string, vocab, hidden int, seed int64) (*model.TinyLM, error) {
	if weights == "" {
		return model.NewSeeded(vocab, hidden, seed), nil
	}
	lm, err := model.Load(weights)
	if err != nil {
		return nil, err
	}
	if lm.VocabSize() != vocab {
		return nil, fmt.Errorf("weights vocab %d does not match tokenizer vocab %d", lm.VocabSize(), vocab)
	}
	return lm, nil
}
