// Package parsehtml implements the parse-html command, which shows what the
// sanitizer hands a guest for some markup.
package parsehtml

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/moshez/ward/hostfuncs"
	"github.com/moshez/ward/wireformat"
)

// Command returns the parse-html command.
func Command() *cli.Command {
	return &cli.Command{
		Name:      "parse-html",
		Usage:     "sanitize markup and print the resulting token stream",
		ArgsUsage: "[file.html]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "write the encoded stream instead of decoding it",
			},
		},
		Action: func(c *cli.Context) error {
			markup, err := readInput(c)
			if err != nil {
				return err
			}
			stream := hostfuncs.SanitizeHTML(markup)
			if c.Bool("raw") {
				_, err := c.App.Writer.Write(stream)
				return err
			}
			return Print(c.App.Writer, stream)
		},
	}
}

func readInput(c *cli.Context) ([]byte, error) {
	if !c.Args().Present() || c.Args().First() == "-" {
		return io.ReadAll(c.App.Reader)
	}
	return os.ReadFile(c.Args().First())
}

// Print writes one line per markup record, indented by depth.
func Print(w io.Writer, stream []byte) error {
	d := wireformat.NewMarkupDecoder(stream)
	depth := 0
	for d.Next() {
		tok := d.Token()
		if tok.Kind == wireformat.MarkupClose {
			depth = max(depth-1, 0)
		}
		indent := strings.Repeat("  ", depth)

		var line string
		switch tok.Kind {
		case wireformat.MarkupOpen:
			var b strings.Builder
			b.WriteString("<" + tok.Tag)
			for _, a := range tok.Attrs {
				b.WriteString(" " + a.Name + "=" + strconv.Quote(a.Value))
			}
			b.WriteString(">")
			line = b.String()
			depth++
		case wireformat.MarkupText:
			line = strconv.Quote(tok.Text)
		case wireformat.MarkupClose:
			line = "</>"
		}
		if _, err := fmt.Fprintln(w, indent+line); err != nil {
			return err
		}
	}
	return d.Err()
}
