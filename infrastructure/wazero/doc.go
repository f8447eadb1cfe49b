// Package wazero registers the bridge's host imports with the wazero runtime.
//
// Imports are plain i32 functions. Each body receives the calling module's
// linear memory as a ports.Memory, so the same body can be driven by tests
// without a runtime.
//
// # Basic Usage
//
//	rt := wazero.NewRuntime(ctx)
//	mod, err := wazero.RegisterWithRuntime(ctx, rt, []wazero.HostFunction{
//	    {Name: "ward_exit", Fn: exit},
//	    {Name: "ward_js_get_visibility_state", Results: 1, Fn: visibility},
//	})
//
// # Middleware
//
// Recover keeps an adapter panic from unwinding into the guest and zeroes
// the import's results instead. Trace logs calls at debug level.
package wazero
