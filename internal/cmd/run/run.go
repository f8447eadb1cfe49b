// Package run implements the run command: execute a guest module against a
// headless page and print what it rendered.
package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/moshez/ward/host"
	"github.com/moshez/ward/infrastructure/htmldom"
	"github.com/moshez/ward/internal/cmd/cmdutil"
)

var flags = []cli.Flag{
	&cli.PathFlag{
		Name:    "document",
		Aliases: []string{"d"},
		Usage:   "render into the page at `path`",
	},
	&cli.StringFlag{
		Name:  "url",
		Usage: "initial window `url`",
	},
	&cli.BoolFlag{
		Name:  "wasi",
		Usage: "provide wasi_snapshot_preview1 to the guest",
	},
	&cli.PathFlag{
		Name:  "storage",
		Usage: "persist key-value data under `dir`",
	},
	&cli.PathFlag{
		Name:  "files",
		Usage: "let file inputs open files under `dir`",
	},
	&cli.StringFlag{
		Name:  "notifications",
		Usage: "notification `permission`: granted, denied, default or prompt",
	},
	&cli.DurationFlag{
		Name:  "timeout",
		Usage: "stop the guest after `duration` (0 waits for it to exit)",
	},
}

var overrides = []cmdutil.FlagOverride{
	{Flag: "document", Key: "document"},
	{Flag: "url", Key: "url"},
	{Flag: "wasi", Key: "wasi"},
	{Flag: "storage", Key: "storage.path"},
	{Flag: "files", Key: "files.root"},
	{Flag: "notifications", Key: "notifications.permission"},
}

// Command returns the run command.
func Command() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute a guest webassembly module",
		ArgsUsage: "[module.wasm]",
		Flags:     flags,
		Action:    run,
	}
}

func run(c *cli.Context) error {
	cfg, err := cmdutil.LoadConfig(c, overrides...)
	if err != nil {
		return err
	}
	if c.Args().Present() {
		cfg.Module = c.Args().First()
	}
	if cfg.Module == "" {
		return cli.Exit("no guest module given", 2)
	}
	logger, err := cmdutil.Logger(c, cfg)
	if err != nil {
		return err
	}

	wasm, err := host.NewLoader().Load(cfg.Module)
	if err != nil {
		return err
	}
	doc, err := loadDocument(cfg.Document)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cfg, doc, logger, c.App.Reader, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	s, err := host.NewSession(env.opts...)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close(context.Background()) }()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
	defer cancel()
	if d := c.Duration("timeout"); d > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, d)
		defer stop()
	}

	start := time.Now()
	if err := s.Start(ctx, wasm); err != nil {
		return fmt.Errorf("start %s: %w", cfg.Module, err)
	}
	select {
	case <-s.Done():
		logger.Debug("guest finished", "elapsed", time.Since(start))
	case <-ctx.Done():
		logger.Info("stopping guest", "reason", context.Cause(ctx))
	}

	var out string
	if err := s.Do(context.Background(), func(context.Context) error {
		out = doc.InnerHTML(env.root)
		return nil
	}); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, out)
	return err
}

func loadDocument(path string) (*htmldom.Document, error) {
	if path == "" {
		return htmldom.ParseString("")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return htmldom.Parse(f)
}
