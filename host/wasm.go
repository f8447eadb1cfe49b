package host

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/moshez/ward/domain/entities"
	wardErrors "github.com/moshez/ward/domain/errors"
	"github.com/moshez/ward/domain/ports"
)

func newRuntime(ctx context.Context, wasi bool) (wazero.Runtime, error) {
	rt := wazero.NewRuntime(ctx)
	if wasi {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to instantiate wasi: %w", err)
		}
	}
	return rt, nil
}

// instantiateGuest instantiates wasm without running start functions; a
// reactor's _initialize is called by the session instead.
func instantiateGuest(ctx context.Context, rt wazero.Runtime, wasm []byte, stdout, stderr io.Writer) (*wasmGuest, error) {
	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}
	cfg := wazero.NewModuleConfig().
		WithName("guest").
		WithStartFunctions().
		WithStdout(stdout).
		WithStderr(stderr)

	mod, err := rt.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}
	return &wasmGuest{module: mod}, nil
}

// wasmGuest is a ports.Guest over a wazero module.
type wasmGuest struct {
	module api.Module
}

func (g *wasmGuest) Call(ctx context.Context, export string, args ...int32) error {
	f := g.module.ExportedFunction(export)
	if f == nil {
		return &wardErrors.GuestError{Export: export, Err: wardErrors.ErrExportNotFound}
	}
	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = api.EncodeI32(a)
	}
	if _, err := f.Call(ctx, params...); err != nil {
		return &wardErrors.GuestError{Export: export, Err: err}
	}
	return nil
}

func (g *wasmGuest) HasExport(export string) bool {
	return g.module.ExportedFunction(export) != nil
}

func (g *wasmGuest) Memory() ports.Memory {
	if m := g.module.Memory(); m != nil {
		return m
	}
	return nil
}

// memory helpers shared by the import bodies.

func argI32(stack []uint64, i int) int32 {
	return api.DecodeI32(stack[i])
}

func argU32(stack []uint64, i int) uint32 {
	return api.DecodeU32(stack[i])
}

func argNode(stack []uint64, i int) entities.NodeID {
	return entities.NodeID(api.DecodeU32(stack[i]))
}

func setI32(stack []uint64, v int32) {
	stack[0] = api.EncodeI32(v)
}

// readBytes copies n bytes at ptr out of guest memory.
func readBytes(mem ports.Memory, ptr, n uint32) ([]byte, bool) {
	if n == 0 {
		return []byte{}, true
	}
	if mem == nil {
		return nil, false
	}
	b, ok := mem.Read(ptr, n)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true
}

func readString(mem ports.Memory, ptr, n uint32) (string, bool) {
	if n == 0 {
		return "", true
	}
	if mem == nil {
		return "", false
	}
	b, ok := mem.Read(ptr, n)
	if !ok {
		return "", false
	}
	return string(b), true
}

// writeBytes writes at most limit bytes of data at ptr and returns how many
// were written.
func writeBytes(mem ports.Memory, ptr uint32, limit int32, data []byte) int32 {
	if limit <= 0 || len(data) == 0 || mem == nil {
		return 0
	}
	n := min(len(data), int(limit))
	if !mem.Write(ptr, data[:n]) {
		return 0
	}
	return int32(n)
}
