package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/intelligenceonchain/tornadoview/internal/render"
	"github.com/intelligenceonchain/tornadoview/internal/report"
	"github.com/intelligenceonchain/tornadoview/internal/withdrawal"
)

// relativeWindows maps the shortcut range flags to their durations.
var relativeWindows = []struct {
	flag     string
	duration time.Duration
}{
	{"last-24h", 24 * time.Hour},
	{"last-7d", 7 * 24 * time.Hour},
	{"last-30d", 30 * 24 * time.Hour},
	{"last-90d", 90 * 24 * time.Hour},
}

// missingKeyMessage tells a first-time user how to configure an API key.
const missingKeyMessage = `no explorer API key is configured.

Get a free key at https://etherscan.io/myapikey, then store it with:

  tornadoview key set --key <YOUR_KEY>`

// reportFlags returns the flags of the root report command.
func reportFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "pools",
			Usage: "Comma-separated pool denominations to query (1, 10, 100)",
			Value: "1,10,100",
		},
		&cli.StringFlag{
			Name:  "start-date",
			Usage: "Start of the query window, YYYY-MM-DD",
		},
		&cli.StringFlag{
			Name:  "end-date",
			Usage: "End of the query window (inclusive), YYYY-MM-DD. Requires --start-date",
		},
		&cli.StringFlag{
			Name:    "export",
			Aliases: []string{"e"},
			Usage:   "Write the report as CSV to the given file instead of printing a table",
		},
		&cli.BoolFlag{
			Name:  "reset-key",
			Usage: "Discard the stored explorer API key before running",
		},
	}

	for _, window := range relativeWindows {
		flags = append(flags, &cli.BoolFlag{
			Name:  window.flag,
			Usage: fmt.Sprintf("Query the last %s only", window.flag[len("last-"):]),
		})
	}
	return flags
}

// reportAction returns the root action: resolve the query, generate the
// report, render it.
func reportAction(keys KeyStore, newExplorer ExplorerFactory, out io.Writer) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		pools, err := withdrawal.ParseSelection(c.String("pools"))
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}

		rng, err := resolveRange(c, time.Now())
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}

		if c.Bool("reset-key") {
			if err := keys.Delete(); err != nil {
				return fmt.Errorf("resetting api key: %w", err)
			}
		}

		apiKey, err := keys.Get()
		if err != nil {
			return cli.Exit(missingKeyMessage, 1)
		}

		rep, err := report.New(newExplorer(apiKey)).Generate(ctx, report.Request{
			Pools: pools,
			Range: rng,
		})
		if err != nil {
			if errors.Is(err, report.ErrAuth) {
				return cli.Exit("the stored API key was rejected by the explorer.\n\n"+
					"Store a valid key with: tornadoview key set --key <YOUR_KEY>", 1)
			}
			return err
		}

		if path := c.String("export"); path != "" {
			return exportCSV(path, rep, out)
		}
		return render.Table(out, rep)
	}
}

// resolveRange turns the range flags into a report time window. The relative
// shortcuts and explicit dates are mutually exclusive; no range flag at all
// means all time.
func resolveRange(c *cli.Command, now time.Time) (report.TimeRange, error) {
	selected := make([]string, 0, 1)
	for _, window := range relativeWindows {
		if c.Bool(window.flag) {
			selected = append(selected, "--"+window.flag)
		}
	}
	if c.String("start-date") != "" {
		selected = append(selected, "--start-date")
	}

	switch {
	case len(selected) > 1:
		return report.TimeRange{}, fmt.Errorf("flags %v are mutually exclusive; pick one date range", selected)
	case c.String("end-date") != "" && c.String("start-date") == "":
		return report.TimeRange{}, errors.New("--end-date requires --start-date")
	}

	for _, window := range relativeWindows {
		if c.Bool(window.flag) {
			return report.LastRange(window.duration, now), nil
		}
	}

	if start := c.String("start-date"); start != "" {
		return report.DateRange(start, c.String("end-date"), now)
	}

	return report.AllTime(), nil
}

// exportCSV writes the report to the given file and prints a confirmation.
func exportCSV(path string, rep report.Report, out io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if err := render.CSV(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("writing export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}

	fmt.Fprintf(out, "Report exported to %s (%d recipients)\n", path, len(rep.Summaries))
	return nil
}
