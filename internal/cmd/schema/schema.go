// Package schema implements the schema, check and config commands.
package schema

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/moshez/ward/application/config"
	"github.com/moshez/ward/application/schema"
	"github.com/moshez/ward/application/validation"
	"github.com/moshez/ward/internal/cmd/cmdutil"
)

// Command returns the schema command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "print the JSON schema of the configuration file",
		Action: func(c *cli.Context) error {
			b, err := schema.ConfigSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, string(b))
			return err
		},
	}
}

// CheckCommand returns the check command. It exits with status 1 when the
// file does not conform.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "validate a configuration file against the schema",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("no configuration file given", 2)
			}
			doc, err := config.ReadDocument(path, cmdutil.ConfigTemplate())
			if err != nil {
				return err
			}
			v, err := validation.NewConfigValidator()
			if err != nil {
				return err
			}
			res, err := v.Validate(doc)
			if err != nil {
				return err
			}
			if res.Valid {
				_, err = fmt.Fprintf(c.App.Writer, "%s: ok\n", path)
				return err
			}
			for _, e := range res.Errors {
				field := e.Field
				if field == "" {
					field = "(document)"
				}
				fmt.Fprintf(c.App.Writer, "%s: %s: %s\n", path, field, e.Message)
			}
			return cli.Exit(fmt.Sprintf("%s: %d problem(s)", path, len(res.Errors)), 1)
		},
	}
}

// ConfigCommand returns the config command.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration as YAML",
		Action: func(c *cli.Context) error {
			cfg, err := cmdutil.LoadConfig(c)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(c.App.Writer)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
