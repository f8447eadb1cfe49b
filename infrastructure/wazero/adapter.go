package wazero

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/moshez/ward/domain/entities"
	"github.com/moshez/ward/domain/ports"
	"github.com/moshez/ward/hostfuncs"
)

// Func is the body of a host import. Parameters arrive as i32 values in
// stack; results are written back to the front of stack.
type Func func(ctx context.Context, mem ports.Memory, stack []uint64)

// HostFunction describes one import. All parameters and results are i32.
type HostFunction struct {
	Fn      Func
	Name    string
	Params  int
	Results int
	// Fault holds the results reported when Fn panics. Missing entries
	// are 0.
	Fault []int32
}

// Middleware wraps the body of the named import.
type Middleware func(name string, next Func) Func

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// ModuleName is the host module name (default: "env").
	ModuleName string

	// Middleware is applied in order, the first entry outermost.
	Middleware []Middleware
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "env").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMiddleware appends middleware around every import.
func WithMiddleware(mw ...Middleware) AdapterOption {
	return func(c *AdapterConfig) {
		c.Middleware = append(c.Middleware, mw...)
	}
}

func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName: entities.ImportModule,
	}
}

// RegisterWithRuntime instantiates a host module exporting fns.
//
// Example:
//
//	mod, err := wazero.RegisterWithRuntime(ctx, rt, imports,
//	    wazero.WithMiddleware(wazero.Recover(logger), wazero.Trace(logger)),
//	)
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, fns []HostFunction, opts ...AdapterOption) (api.Module, error) {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	seen := make(map[string]struct{}, len(fns))

	for _, hf := range fns {
		if hf.Fn == nil {
			return nil, fmt.Errorf("host function %q has no body", hf.Name)
		}
		if _, dup := seen[hf.Name]; dup {
			return nil, fmt.Errorf("host function %q registered twice", hf.Name)
		}
		seen[hf.Name] = struct{}{}

		fn := Chain(hf.Name, hf.Fn, cfg.Middleware...)
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				var mem ports.Memory
				if m := mod.Memory(); m != nil {
					mem = m
				}
				fn(ctx, mem, stack)
			}), i32s(hf.Params), i32s(hf.Results)).
			WithName(hf.Name).
			Export(hf.Name)
	}

	return builder.Instantiate(ctx)
}

// Chain applies middleware to fn, the first entry outermost.
func Chain(name string, fn Func, mw ...Middleware) Func {
	for i := len(mw) - 1; i >= 0; i-- {
		fn = mw[i](name, fn)
	}
	return fn
}

// Recover turns a panicking import into one that returns its fault results.
func Recover(logger *slog.Logger, faults func(name string) []int32) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string, next Func) Func {
		fault := faults(name)
		return func(ctx context.Context, mem ports.Memory, stack []uint64) {
			err := hostfuncs.Guard(name, func() { next(ctx, mem, stack) })
			if err != nil {
				logger.ErrorContext(ctx, "wazero: host import panicked",
					"import", name, "session", SessionNameFromContext(ctx), "error", err)
				for i := 0; i < len(fault) && i < len(stack); i++ {
					stack[i] = api.EncodeI32(fault[i])
				}
			}
		}
	}
}

// Trace logs every import call at debug level.
func Trace(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string, next Func) Func {
		return func(ctx context.Context, mem ports.Memory, stack []uint64) {
			if !logger.Enabled(ctx, slog.LevelDebug) {
				next(ctx, mem, stack)
				return
			}
			start := time.Now()
			next(ctx, mem, stack)
			logger.DebugContext(ctx, "wazero: host import",
				"import", name, "session", SessionNameFromContext(ctx), "duration", time.Since(start))
		}
	}
}

// FaultResults indexes the fault results of fns by name for Recover. Each
// entry has one value per declared result.
func FaultResults(fns []HostFunction) func(name string) []int32 {
	faults := make(map[string][]int32, len(fns))
	for _, hf := range fns {
		f := make([]int32, hf.Results)
		copy(f, hf.Fault)
		faults[hf.Name] = f
	}
	return func(name string) []int32 { return faults[name] }
}

func i32s(n int) []api.ValueType {
	if n == 0 {
		return []api.ValueType{}
	}
	types := make([]api.ValueType, n)
	for i := range types {
		types[i] = api.ValueTypeI32
	}
	return types
}
