package parsehtml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func app(in string, out *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:     "wardhost",
		Reader:   strings.NewReader(in),
		Writer:   out,
		Commands: []*cli.Command{Command()},
	}
}

func TestParseHTML_Stdin(t *testing.T) {
	var out bytes.Buffer
	markup := `<div class="a"><a href="/x" onclick="steal()">go</a><script>bad()</script></div>`
	require.NoError(t, app(markup, &out).Run([]string{"wardhost", "parse-html"}))

	assert.Equal(t, strings.Join([]string{
		`<div class="a">`,
		`  <a href="/x">`,
		`    "go"`,
		`  </>`,
		`</>`,
	}, "\n")+"\n", out.String())
}

func TestParseHTML_Raw(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, app("<p>hi</p>", &out).Run([]string{"wardhost", "parse-html", "--raw"}))

	var printed bytes.Buffer
	require.NoError(t, Print(&printed, out.Bytes()))
	assert.Equal(t, "<p>\n  \"hi\"\n</>\n", printed.String())
}
