package run

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/moshez/ward/application/config"
	wardErrors "github.com/moshez/ward/domain/errors"
	"github.com/moshez/ward/domain/policy"
	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/host"
	"github.com/moshez/ward/hostfuncs"
	"github.com/moshez/ward/infrastructure/clipboard"
	"github.com/moshez/ward/infrastructure/datastore"
	"github.com/moshez/ward/infrastructure/filepicker"
	"github.com/moshez/ward/infrastructure/grantstore"
	"github.com/moshez/ward/infrastructure/htmldom"
	"github.com/moshez/ward/infrastructure/notify"
	"github.com/moshez/ward/infrastructure/push"
)

// FileAttribute is the attribute of a file input naming the file it selects,
// relative to files.root.
const FileAttribute = "value"

// environment is the page and capabilities one run hands its session.
type environment struct {
	doc     *htmldom.Document
	root    ports.Node
	window  *htmldom.Window
	closers []io.Closer
	opts    []host.Option
}

func (e *environment) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	return errors.Join(errs...)
}

// newEnvironment builds the adapters cfg asks for. Prompts for notification
// permission read from in and write to out.
func newEnvironment(cfg *config.Config, doc *htmldom.Document, logger *slog.Logger, in io.Reader, out io.Writer) (*environment, error) {
	root := doc.Find(cfg.Root)
	if root == nil {
		return nil, &wardErrors.ConfigError{Field: "root", Err: fmt.Errorf("no element matches %q", cfg.Root)}
	}
	env := &environment{doc: doc, root: root, window: htmldom.NewWindow(cfg.URL)}

	kv, err := openStore(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, kv)

	var cb ports.Clipboard = clipboard.NewMemory()
	if cfg.Clipboard.System {
		sys, err := clipboard.NewSystem()
		if err != nil {
			logger.Warn("system clipboard unavailable, using memory", "error", err)
		} else {
			cb = sys
		}
	}

	permission, err := notify.ParsePermission(cfg.Notifications.Permission)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	notifyOpts := []notify.Option{
		notify.WithLogger(logger),
		notify.WithPrompter(notify.NewCliPrompter(in, out)),
		notify.WithOrigin(env.window.Origin()),
	}
	if cfg.Notifications.Grants != "" {
		notifyOpts = append(notifyOpts, notify.WithPermissionStore(
			grantstore.NewFileStore(grantstore.WithPath(cfg.Notifications.Grants))))
	}
	notifier := notify.New(permission, notifyOpts...)

	pol := policy.NewPolicy(cfg.Grants(), policy.WithDenialHandler(&policy.LogDenialHandler{Logger: logger}))

	env.opts = []host.Option{
		host.WithName(filepath.Base(cfg.Module)),
		host.WithDocument(doc, root),
		host.WithWindow(env.window),
		host.WithLogger(logger),
		host.WithKVStore(kv),
		host.WithPolicy(pol),
		host.WithHTTPClient(hostfuncs.NewFetcher(
			hostfuncs.WithFetchTimeout(cfg.Fetch.Timeout.Std()),
			hostfuncs.WithFetchMaxBodySize(cfg.Fetch.MaxBodyBytes),
			hostfuncs.WithFetchAllowPrivate(cfg.Fetch.AllowPrivate),
		)),
		host.WithClipboard(cb),
		host.WithNotifier(notifier),
		host.WithPushService(push.NewMemoryService(cfg.Push.Endpoint)),
		host.WithWASI(cfg.WASI),
		host.WithStdio(out, out),
		host.WithMaxFlushBytes(cfg.Limits.MaxFlushBytes),
		host.WithDecompressLimit(cfg.Decompress.MaxBytes),
	}

	if cfg.Files.Root != "" {
		picker, err := filepicker.NewDirPicker(cfg.Files.Root, func(input ports.Node) (string, bool) {
			return doc.Attribute(input, FileAttribute)
		}, filepicker.WithPolicy(pol))
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		env.closers = append(env.closers, picker)
		env.opts = append(env.opts, host.WithFilePicker(picker))
	}
	return env, nil
}

func openStore(cfg config.Storage, logger *slog.Logger) (*datastore.Store, error) {
	if cfg.Path == "" {
		return datastore.NewMemoryNamespace(cfg.Namespace), nil
	}
	return datastore.OpenBadger(cfg.Path, cfg.Namespace, logger)
}
