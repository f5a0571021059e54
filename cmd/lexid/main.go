// Command lexid runs the keyspace server, grounded on db.c's main()/HELP
// text shape, rebuilt on urfave/cli/v2 instead of hand-rolled argv
// scanning.
package main

import (
	"fmt"
	"os"

	"github.com/lexidb/lexid/internal/config"
	"github.com/lexidb/lexid/internal/lexiserver"
	"github.com/lexidb/lexid/internal/serverlog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "lexid",
		Usage:     "an in-memory key/value server",
		Version:   lexiserver.Version,
		Args:      true,
		ArgsUsage: "[config-file]",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "lexid:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	path := "../lexi.conf"
	if c.Args().Len() > 0 {
		path = c.Args().Get(0)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading config file %q", path)
	}

	cfg, err := config.Parse(string(contents))
	if err != nil {
		return errors.Wrap(err, "parsing config file")
	}

	log, err := serverlog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return errors.Wrap(err, "initializing logger")
	}
	defer log.Sync()

	srv := lexiserver.New(cfg, log)
	if err := srv.Run(); err != nil {
		return errors.Wrap(err, "running server")
	}
	return nil
}
