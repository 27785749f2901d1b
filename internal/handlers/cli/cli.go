// Package cli wires the terminal interface: the root command generates a
// withdrawal report, and the key subcommands manage the stored explorer API
// key. Report output goes to stdout (or a CSV file); logs go to stderr.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/intelligenceonchain/tornadoview/internal/report"
)

// KeyStore abstracts the persisted API key so commands can be tested without
// touching the real config file.
type KeyStore interface {
	Get() (string, error)
	Set(key string) error
	Delete() error
	Path() string
}

// ExplorerFactory builds an explorer client authenticated with the given key.
type ExplorerFactory func(apiKey string) report.Explorer

// KeyProbe checks a candidate API key against the explorer before it is
// stored.
type KeyProbe func(ctx context.Context, apiKey string) error

// Run executes the tornadoview CLI application.
//
// The root command queries the selected Tornado Cash ETH pools and renders
// the per-recipient withdrawal report; `key set`, `key show`, and `key delete`
// manage the stored explorer API key.
func Run(ctx context.Context, keys KeyStore, newExplorer ExplorerFactory, probe KeyProbe) error {
	return newApp(keys, newExplorer, probe, os.Stdout).Run(ctx, os.Args)
}

// newApp assembles the command tree. The writer receives report output and is
// injected so tests can capture it.
func newApp(keys KeyStore, newExplorer ExplorerFactory, probe KeyProbe, out io.Writer) *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "tornadoview",
		Description:           "Command-line viewer for Tornado Cash ETH pool withdrawals, aggregated per recipient.",
		Usage:                 "tornadoview [flags] | tornadoview key [command]",
		Flags:                 reportFlags(),
		Action:                reportAction(keys, newExplorer, out),
		Commands: []*cli.Command{
			keyCommand(keys, probe, out),
		},
	}
}
