package run

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/host"
	"github.com/moshez/ward/internal/cmd/cmdutil"
	wb "github.com/moshez/ward/internal/testutil/wasmbuild"
	"github.com/moshez/ward/wireformat"
)

func app(out, errOut *bytes.Buffer) *cli.App {
	return &cli.App{
		Name:      "wardhost",
		Reader:    strings.NewReader(""),
		Writer:    out,
		ErrWriter: errOut,
		Flags:     cmdutil.Flags,
		Commands:  []*cli.Command{Command()},
	}
}

// writeGuest writes a guest that renders flush during init and then exits.
func writeGuest(t *testing.T, flush []byte) string {
	t.Helper()
	m := wb.New()
	flushFn := m.Import(entities.ImportModule, host.ImportDOMFlush, 2, 0)
	exitFn := m.Import(entities.ImportModule, host.ImportExit, 0, 0)
	m.Memory(1)
	m.Data(0, flush)
	m.Func(entities.ExportInit, 1, 0, wb.Code(
		wb.I32Const(0), wb.I32Const(int32(len(flush))), wb.Call(flushFn),
		wb.Call(exitFn),
	)...)

	path := filepath.Join(t.TempDir(), "guest.wasm")
	require.NoError(t, os.WriteFile(path, m.Bytes(), 0o600))
	return path
}

func TestRun_PrintsRenderedRoot(t *testing.T) {
	module := writeGuest(t, new(wireformat.MutationBuilder).
		CreateElement(1, 0, "h1").
		SetText(1, "ward").
		Bytes())

	var out, errOut bytes.Buffer
	err := app(&out, &errOut).Run([]string{"wardhost", "run", "--wasi=false", module})
	require.NoError(t, err, errOut.String())
	assert.Equal(t, "<h1>ward</h1>\n", out.String())
}

func TestRun_CustomDocument(t *testing.T) {
	module := writeGuest(t, new(wireformat.MutationBuilder).
		CreateElement(1, 0, "li").
		SetText(1, "one").
		Bytes())
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<ul id="list"></ul>`), 0o600))

	var out, errOut bytes.Buffer
	err := app(&out, &errOut).Run([]string{
		"wardhost", "--set", "root=#list",
		"run", "--document", page, "--storage", filepath.Join(dir, "kv"), module,
	})
	require.NoError(t, err, errOut.String())
	assert.Equal(t, "<li>one</li>\n", out.String())
}

func TestRun_Timeout(t *testing.T) {
	m := wb.New()
	m.Memory(1)
	path := filepath.Join(t.TempDir(), "idle.wasm")
	require.NoError(t, os.WriteFile(path, m.Bytes(), 0o600))

	var out, errOut bytes.Buffer
	err := app(&out, &errOut).Run([]string{"wardhost", "run", "--timeout", "20ms", path})
	require.NoError(t, err)
	assert.Equal(t, "\n", out.String())
	assert.Contains(t, errOut.String(), "stopping guest")
}

func TestRun_Errors(t *testing.T) {
	var out, errOut bytes.Buffer

	notWasm := filepath.Join(t.TempDir(), "x.wasm")
	require.NoError(t, os.WriteFile(notWasm, []byte("hello"), 0o600))
	assert.ErrorIs(t, app(&out, &errOut).Run([]string{"wardhost", "run", notWasm}), host.ErrNotWasm)

	module := writeGuest(t, nil)
	err := app(&out, &errOut).Run([]string{"wardhost", "--set", "root=#nowhere", "run", module})
	assert.Error(t, err)

	err = app(&out, &errOut).Run([]string{"wardhost", "run", "--notifications", "sometimes", module})
	assert.Error(t, err)
}
