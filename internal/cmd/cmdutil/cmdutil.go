// Package cmdutil holds what the wardhost commands share: global flags,
// configuration loading and logger setup.
package cmdutil

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/moshez/ward/application/config"
	"github.com/moshez/ward/application/template"
	"github.com/moshez/ward/infrastructure/parser"
	wardlog "github.com/moshez/ward/log"
)

// Flags are the global flags.
var Flags = []cli.Flag{
	&cli.PathFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "read configuration from `path`",
		EnvVars: []string{"WARD_CONFIG"},
	},
	&cli.StringSliceFlag{
		Name:  "set",
		Usage: "override a configuration `key=value`, e.g. fetch.allow_private=true",
	},
	&cli.StringFlag{
		Name:    "logfmt",
		Aliases: []string{"f"},
		Usage:   "`format` logs as text or json",
		EnvVars: []string{"WARD_LOGFMT"},
	},
	&cli.StringFlag{
		Name:    "loglvl",
		Usage:   "set logging `level` to debug, info, warn or error",
		EnvVars: []string{"WARD_LOGLVL"},
	},
}

// FlagOverride maps a command flag onto a configuration key.
type FlagOverride struct {
	Flag string
	Key  string
}

var globalOverrides = []FlagOverride{
	{Flag: "logfmt", Key: "log.format"},
	{Flag: "loglvl", Key: "log.level"},
}

// ConfigTemplate renders configuration files with the process environment
// as {{.Env.NAME}}.
func ConfigTemplate() config.LoadOption {
	return config.WithTemplate(template.NewGoTemplateEngine(), template.EnvData())
}

// LoadConfig reads the configuration file named by --config and applies
// --set values, then the flags in extra that were given.
func LoadConfig(c *cli.Context, extra ...FlagOverride) (*config.Config, error) {
	p := parser.NewYamlConfigParser()
	cfg, err := config.Load(c.Path("config"), p, ConfigTemplate())
	if err != nil {
		return nil, err
	}

	overrides, err := config.ParseOverrides(c.StringSlice("set"))
	if err != nil {
		return nil, err
	}
	for _, o := range append(globalOverrides, extra...) {
		if !c.IsSet(o.Flag) {
			continue
		}
		v := c.Value(o.Flag)
		if d, ok := v.(time.Duration); ok {
			v = d.String()
		}
		overrides[o.Key] = v
	}
	if err := config.Apply(cfg, overrides, p); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger builds the host logger for cfg, writing to the app's error stream.
func Logger(c *cli.Context, cfg *config.Config) (*slog.Logger, error) {
	level, err := wardlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := wardlog.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return wardlog.NewLogger(c.App.ErrWriter,
		wardlog.WithLevel(level),
		wardlog.WithFormat(format),
	), nil
}
