package schema

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/moshez/ward/internal/cmd/cmdutil"
)

func app(out *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:     "wardhost",
		Writer:   out,
		Flags:    cmdutil.Flags,
		Commands: []*cli.Command{Command(), CheckCommand(), ConfigCommand()},
	}
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, app(&out).Run([]string{"wardhost", "schema"}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded, "properties")
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ward.yaml")
	require.NoError(t, os.WriteFile(path, []byte("module: app.wasm\nfetch:\n  timeout: 3s\n"), 0o600))

	var out bytes.Buffer
	err := app(&out).Run([]string{"wardhost", "--config", path, "--set", "wasi=false", "--loglvl", "debug", "config"})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "app.wasm", got["module"])
	assert.Equal(t, false, got["wasi"])
	assert.Equal(t, "3s", got["fetch"].(map[string]interface{})["timeout"])
	assert.Equal(t, "debug", got["log"].(map[string]interface{})["level"])
}

func TestConfigCommand_Invalid(t *testing.T) {
	var out bytes.Buffer
	err := app(&out).Run([]string{"wardhost", "--set", "log.level=loud", "config"})
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("wasi: false\nlog:\n  level: debug\n"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("log:\n  level: loud\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, app(&out).Run([]string{"wardhost", "check", good}))
	assert.Equal(t, good+": ok\n", out.String())

	out.Reset()
	a := app(&out)
	a.ExitErrHandler = func(*cli.Context, error) {}
	err := a.Run([]string{"wardhost", "check", bad})
	require.Error(t, err)
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
	assert.Contains(t, out.String(), "log.level")
}
