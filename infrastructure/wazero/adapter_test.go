package wazero

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/moshez/ward/domain/ports"
)

func TestDefaultAdapterConfig(t *testing.T) {
	cfg := defaultAdapterConfig()
	assert.Equal(t, "env", cfg.ModuleName)
	assert.Empty(t, cfg.Middleware)
}

func TestWithModuleName(t *testing.T) {
	cfg := defaultAdapterConfig()
	WithModuleName("custom_module")(&cfg)
	assert.Equal(t, "custom_module", cfg.ModuleName)
}

func TestChain_Order(t *testing.T) {
	var calls []string
	mark := func(tag string) Middleware {
		return func(name string, next Func) Func {
			return func(ctx context.Context, mem ports.Memory, stack []uint64) {
				calls = append(calls, tag+":"+name)
				next(ctx, mem, stack)
			}
		}
	}
	fn := Chain("f", func(context.Context, ports.Memory, []uint64) {
		calls = append(calls, "body")
	}, mark("outer"), mark("inner"))

	fn(context.Background(), nil, nil)
	assert.Equal(t, []string{"outer:f", "inner:f", "body"}, calls)
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	fns := []HostFunction{
		{Name: "boom", Results: 1},
		{Name: "visible", Results: 2, Fault: []int32{1}},
		{Name: "missing", Results: 1, Fault: []int32{-1}},
	}
	faults := FaultResults(fns)
	panicking := func(_ context.Context, _ ports.Memory, stack []uint64) {
		for i := range stack {
			stack[i] = 7
		}
		panic("adapter fault")
	}
	ctx := WithSessionName(context.Background(), "s1")

	tests := []struct {
		name string
		want []uint64
	}{
		{"boom", []uint64{0, 7}},
		{"visible", []uint64{1, 0}},
		{"missing", []uint64{api.EncodeI32(-1), 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := Chain(tt.name, panicking, Recover(logger, faults))
			stack := []uint64{3, 3}
			require.NotPanics(t, func() { fn(ctx, nil, stack) })
			assert.Equal(t, tt.want, stack)
		})
	}

	assert.Contains(t, logs.String(), "adapter fault")
	assert.Contains(t, logs.String(), "import=boom")
	assert.Contains(t, logs.String(), "session=s1")
}

func TestSessionName(t *testing.T) {
	assert.Equal(t, "", SessionNameFromContext(context.Background()))
	assert.Equal(t, "abc", SessionNameFromContext(WithSessionName(context.Background(), "abc")))
}

func TestRegisterWithRuntime(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	var got []uint64
	mod, err := RegisterWithRuntime(ctx, rt, []HostFunction{
		{
			Name:    "add",
			Params:  2,
			Results: 1,
			Fn: func(_ context.Context, _ ports.Memory, stack []uint64) {
				got = append(got, stack[0], stack[1])
				stack[0] = api.EncodeI32(api.DecodeI32(stack[0]) + api.DecodeI32(stack[1]))
			},
		},
	}, WithModuleName("test_env"))
	require.NoError(t, err)
	assert.Equal(t, "test_env", mod.Name())

	res, err := mod.ExportedFunction("add").Call(ctx, api.EncodeI32(40), api.EncodeI32(2))
	require.NoError(t, err)
	assert.Equal(t, int32(42), api.DecodeI32(res[0]))
	assert.Len(t, got, 2)

	def := mod.ExportedFunction("add").Definition()
	assert.Equal(t, []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, def.ParamTypes())
	assert.Equal(t, []api.ValueType{api.ValueTypeI32}, def.ResultTypes())
}

func TestRegisterWithRuntime_Rejects(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	noop := func(context.Context, ports.Memory, []uint64) {}

	_, err := RegisterWithRuntime(ctx, rt, []HostFunction{{Name: "nobody"}})
	assert.Error(t, err)

	_, err = RegisterWithRuntime(ctx, rt, []HostFunction{
		{Name: "twice", Fn: noop},
		{Name: "twice", Fn: noop},
	})
	assert.Error(t, err)
}
