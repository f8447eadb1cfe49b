package host_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/host"
	"github.com/moshez/ward/infrastructure/htmldom"
	"github.com/moshez/ward/internal/testutil"
	wb "github.com/moshez/ward/internal/testutil/wasmbuild"
	"github.com/moshez/ward/wireformat"
)

func newSession(t *testing.T, logw io.Writer, opts ...host.Option) (*host.Session, *htmldom.Document) {
	t.Helper()
	doc, err := htmldom.ParseString("")
	require.NoError(t, err)
	if logw == nil {
		logw = io.Discard
	}
	opts = append([]host.Option{
		host.WithDocument(doc, doc.Find("#ward-root")),
		host.WithLogger(slog.New(slog.NewTextHandler(logw, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	}, opts...)
	s, err := host.NewSession(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, doc
}

func TestGuest_InitRendersAndExits(t *testing.T) {
	flush := new(wireformat.MutationBuilder).
		CreateElement(1, 0, "p").
		SetText(1, "hello").
		Bytes()

	m := wb.New()
	logFn := m.Import(entities.ImportModule, host.ImportLog, 3, 0)
	flushFn := m.Import(entities.ImportModule, host.ImportDOMFlush, 2, 0)
	exitFn := m.Import(entities.ImportModule, host.ImportExit, 0, 0)
	m.Memory(1)
	m.Data(0, []byte("booted"))
	m.Data(64, flush)
	m.Func(entities.ExportInit, 1, 0, wb.Code(
		wb.I32Const(1), wb.I32Const(0), wb.I32Const(6), wb.Call(logFn),
		wb.I32Const(64), wb.I32Const(int32(len(flush))), wb.Call(flushFn),
		wb.Call(exitFn),
	)...)

	var logs bytes.Buffer
	s, doc := newSession(t, &logs)
	require.NoError(t, s.Start(context.Background(), m.Bytes()))

	assert.True(t, testutil.Closed(s.Done()))
	assert.Equal(t, entities.SessionEnded, s.State())
	assert.Equal(t, `<p>hello</p>`, doc.InnerHTML(doc.Find("#ward-root")))
	assert.Contains(t, logs.String(), "booted")
	assert.Contains(t, logs.String(), "source=guest")
}

func TestGuest_TimerFires(t *testing.T) {
	m := wb.New()
	timerFn := m.Import(entities.ImportModule, host.ImportSetTimer, 2, 0)
	exitFn := m.Import(entities.ImportModule, host.ImportExit, 0, 0)
	m.Memory(1)
	m.Func(entities.ExportInit, 1, 0, wb.Code(
		wb.I32Const(1), wb.I32Const(77), wb.Call(timerFn),
	)...)
	m.Func(entities.ExportTimerFire, 1, 0, wb.Call(exitFn)...)

	s, _ := newSession(t, nil)
	require.NoError(t, s.Start(context.Background(), m.Bytes()))
	assert.Equal(t, entities.SessionRunning, s.State())

	testutil.Eventually(t, func() bool { return testutil.Closed(s.Done()) })
	assert.Equal(t, entities.SessionEnded, s.State())
}

func TestGuest_InitializeRunsFirst(t *testing.T) {
	m := wb.New()
	logFn := m.Import(entities.ImportModule, host.ImportLog, 3, 0)
	m.Memory(1)
	m.Data(0, []byte("reactor"))
	m.Data(16, []byte("init"))
	m.Func(entities.ExportInitialize, 0, 0, wb.Code(
		wb.I32Const(1), wb.I32Const(0), wb.I32Const(7), wb.Call(logFn),
	)...)
	m.Func(entities.ExportInit, 1, 0, wb.Code(
		wb.I32Const(1), wb.I32Const(16), wb.I32Const(4), wb.Call(logFn),
	)...)

	var logs bytes.Buffer
	s, _ := newSession(t, &logs)
	require.NoError(t, s.Start(context.Background(), m.Bytes()))

	out := logs.String()
	first := bytes.Index([]byte(out), []byte("reactor"))
	second := bytes.Index([]byte(out), []byte("msg=init"))
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
}

func TestGuest_WithoutInitKeepsRunning(t *testing.T) {
	m := wb.New()
	m.Memory(1)

	s, _ := newSession(t, nil)
	require.NoError(t, s.Start(context.Background(), m.Bytes()))
	assert.Equal(t, entities.SessionRunning, s.State())
	assert.False(t, testutil.Closed(s.Done()))
}

func TestGuest_WASIExitEndsSession(t *testing.T) {
	m := wb.New()
	procExit := m.Import("wasi_snapshot_preview1", "proc_exit", 1, 0)
	m.Memory(1)
	m.Func(entities.ExportInit, 1, 0, wb.Code(wb.I32Const(3), wb.Call(procExit))...)

	s, _ := newSession(t, nil, host.WithWASI(true))
	require.NoError(t, s.Start(context.Background(), m.Bytes()))
	assert.True(t, testutil.Closed(s.Done()))
	assert.Equal(t, entities.SessionEnded, s.State())
}

func TestGuest_InitTrapFailsStart(t *testing.T) {
	m := wb.New()
	m.Memory(1)
	m.Func(entities.ExportInit, 1, 0, wb.OpUnreachable)

	s, _ := newSession(t, nil)
	err := s.Start(context.Background(), m.Bytes())
	require.Error(t, err)
	assert.Equal(t, entities.SessionEnded, s.State())
	assert.True(t, testutil.Closed(s.Done()))
}

func TestGuest_InvalidModuleFailsStart(t *testing.T) {
	s, _ := newSession(t, nil)
	err := s.Start(context.Background(), []byte("\x00asm\x01\x00\x00\x00\xff"))
	require.Error(t, err)
	assert.Equal(t, entities.SessionEnded, s.State())
}

func TestGuest_MissingImportFailsStart(t *testing.T) {
	m := wb.New()
	m.Import(entities.ImportModule, "ward_not_a_host_function", 0, 0)
	m.Memory(1)

	s, _ := newSession(t, nil)
	require.Error(t, s.Start(context.Background(), m.Bytes()))
}
