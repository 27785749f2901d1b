package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/intelligenceonchain/tornadoview/internal/report"
)

// keyCommand groups the API key management subcommands.
//
// Usage examples:
//
//	tornadoview key set --key ABCD1234
//	tornadoview key show
//	tornadoview key delete
func keyCommand(keys KeyStore, probe KeyProbe, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "key",
		Description: "Manage the stored block explorer API key.",
		Usage:       "Store, inspect, or remove the explorer API key used for report queries.",
		Commands: []*cli.Command{
			setKeyCommand(keys, probe, out),
			showKeyCommand(keys, out),
			deleteKeyCommand(keys, out),
		},
	}
}

// setKeyCommand validates a candidate key against the explorer and stores it.
func setKeyCommand(keys KeyStore, probe KeyProbe, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "set",
		Description: "Validate an API key against the explorer and store it for future runs.",
		Usage:       "Stores the given key after a test request confirms the explorer accepts it.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "key",
				Usage:    "Explorer API key to store",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			key := strings.TrimSpace(c.String("key"))
			if key == "" {
				return cli.Exit("the API key must not be empty", 2)
			}

			if err := probe(ctx, key); err != nil {
				if errors.Is(err, report.ErrAuth) {
					return cli.Exit("the explorer rejected this API key; check it and try again", 1)
				}
				return fmt.Errorf("validating api key: %w", err)
			}

			if err := keys.Set(key); err != nil {
				return fmt.Errorf("storing api key: %w", err)
			}

			fmt.Fprintf(out, "API key stored in %s\n", keys.Path())
			return nil
		},
	}
}

// showKeyCommand prints the stored key in masked form.
func showKeyCommand(keys KeyStore, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "show",
		Description: "Show the stored API key with the middle characters masked.",
		Usage:       "Prints a masked form of the stored key and the config file location.",
		Action: func(ctx context.Context, c *cli.Command) error {
			key, err := keys.Get()
			if err != nil {
				return cli.Exit(missingKeyMessage, 1)
			}

			fmt.Fprintf(out, "%s (stored in %s)\n", maskKey(key), keys.Path())
			return nil
		},
	}
}

// deleteKeyCommand removes the stored key.
func deleteKeyCommand(keys KeyStore, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Description: "Remove the stored API key.",
		Usage:       "Deletes the key from the config file. Safe to run when no key is stored.",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := keys.Delete(); err != nil {
				return fmt.Errorf("deleting api key: %w", err)
			}

			fmt.Fprintln(out, "API key removed")
			return nil
		},
	}
}

// maskKey hides all but the first and last four characters of the key. Short
// keys are fully masked.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
