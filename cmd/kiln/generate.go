package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/kilnlm/kiln/internal/inference"
	"github.com/kilnlm/kiln/internal/logger"
	"github.com/kilnlm/kiln/internal/tokenizer"
)

func generateCmd() *cli.Command {
	var (
		prompt       string
		weights      string
		hidden       int64
		seed         int64
		maxNewTokens int64
		temperature  float64
	)

	return &cli.Command{
		Name:  "generate",
		Usage: "Run one generation and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "prompt",
				Usage:       "prompt text",
				Required:    true,
				Destination: &prompt,
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
				Usage:       "sampling and weight seed",
				Value:       1,
				Destination: &seed,
			},
			&cli.Int64Flag{
				Name:        "max-new-tokens",
				Usage:       "maximum tokens to generate",
				Value:       inference.DefaultMaxNewTokens,
				Destination: &maxNewTokens,
			},
			&cli.Float64Flag{
				Name:        "temperature",
				Usage:       "sampling temperature (below 0.01 decodes greedily)",
				Value:       inference.DefaultTemperature,
				Destination: &temperature,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.Default()

			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyModelConfig(cmd, cfg, &hidden, &seed)

			tok := tokenizer.NewByteLevel(false)
			lm, err := loadModel(weights, tok.VocabSize(), int(hidden), seed)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}

			engine := inference.NewEngine(tok, lm)
			defer engine.Close()

			result, err := engine.Generate(ctx, &inference.Request{
				Prompt:       prompt,
				MaxNewTokens: int(maxNewTokens),
				Temperature:  temperature,
				Seed:         seed,
			})
			if err != nil {
				return err
			}

			log.Info("generation complete",
				"tokens", result.TokensGenerated,
				"duration", result.Stats.Duration,
				"tps", result.Stats.TPS,
			)
			fmt.Println(result.Text)
			return nil
		},
	}
}
