package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/intelligenceonchain/tornadoview/internal/config"
	"github.com/intelligenceonchain/tornadoview/internal/handlers/cli"
	"github.com/intelligenceonchain/tornadoview/internal/infra/explorer/etherscan"
	"github.com/intelligenceonchain/tornadoview/internal/infra/storage/keyfile"
	"github.com/intelligenceonchain/tornadoview/internal/pkg/logger"
	"github.com/intelligenceonchain/tornadoview/internal/pkg/resilience/retry"
	"github.com/intelligenceonchain/tornadoview/internal/pkg/telemetry"
	transporthttp "github.com/intelligenceonchain/tornadoview/internal/pkg/transport/http"
	"github.com/intelligenceonchain/tornadoview/internal/report"
)

const serviceName = "tornadoview"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithLevel(settings.LogLevel)); err != nil {
		return err
	}
	defer logger.Sync()

	if settings.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := shutdown(flushCtx); err != nil {
				logger.Warn(flushCtx, "telemetry shutdown failed", "error", err)
			}
		}()
	}

	keyPath := settings.KeyFile
	if keyPath == "" {
		keyPath, err = keyfile.DefaultPath()
		if err != nil {
			return err
		}
	}
	keys := keyfile.New(keyPath)

	newExplorer := func(apiKey string) *etherscan.Client {
		return etherscan.New(apiKey,
			etherscan.WithBaseURL(settings.BaseURL),
			etherscan.WithChainID(settings.ChainID),
			etherscan.WithPageSize(settings.PageSize),
			etherscan.WithHTTPClient(transporthttp.NewClient(
				transporthttp.WithTimeout(settings.HTTPTimeout),
				transporthttp.WithRetryWaitMin(settings.RetryWaitMin),
				transporthttp.WithRetryWaitMax(settings.RetryWaitMax),
				transporthttp.WithRetryMax(settings.RetryMax),
			)),
			etherscan.WithRetrier(retry.New(
				retry.WithAttempts(settings.RateLimitAttempts),
				retry.WithDelay(settings.RateLimitDelay),
				retry.WithRetryIf(func(err error) bool { return errors.Is(err, report.ErrRateLimited) }),
			)),
		)
	}

	explorerFactory := func(apiKey string) report.Explorer {
		return newExplorer(apiKey)
	}
	keyProbe := func(ctx context.Context, apiKey string) error {
		return newExplorer(apiKey).ValidateKey(ctx)
	}

	return cli.Run(ctx, keys, explorerFactory, keyProbe)
}
