package completion

import "github.com/moshez/ward/domain/entities"

// Op describes one kind of asynchronous host operation: the guest export its
// completion is delivered to and the scalar arguments reported on failure.
type Op struct {
	Name    string
	Export  string
	Failure []int32
}

// Operation catalog.
var (
	OpTimer         = Op{Name: "timer", Export: entities.ExportTimerFire}
	OpKVPut         = Op{Name: "kv.put", Export: entities.ExportKVFire, Failure: []int32{-1}}
	OpKVDelete      = Op{Name: "kv.delete", Export: entities.ExportKVFire, Failure: []int32{-1}}
	OpKVGet         = Op{Name: "kv.get", Export: entities.ExportKVFireGet, Failure: []int32{0}}
	OpFetch         = Op{Name: "fetch", Export: entities.ExportFetchComplete, Failure: []int32{0, 0}}
	OpClipboard     = Op{Name: "clipboard.write", Export: entities.ExportClipboardComplete, Failure: []int32{0}}
	OpFileOpen      = Op{Name: "file.open", Export: entities.ExportFileOpen, Failure: []int32{0, 0}}
	OpDecompress    = Op{Name: "decompress", Export: entities.ExportDecompressed, Failure: []int32{0, 0}}
	OpPermission    = Op{Name: "notification.permission", Export: entities.ExportPermissionResult, Failure: []int32{0}}
	OpPushSubscribe = Op{Name: "push.subscribe", Export: entities.ExportPushSubscription, Failure: []int32{0}}
	OpPushGet       = Op{Name: "push.subscription", Export: entities.ExportPushSubscription, Failure: []int32{0}}
)

// Result is what a finished operation hands back to the guest: scalar
// arguments following the token, and optionally bytes staged in the stash
// before delivery.
type Result struct {
	Args    []int32
	Payload []byte
}

// Success builds a result with the given arguments.
func Success(args ...int32) Result {
	return Result{Args: args}
}

// Failure builds op's failure result.
func Failure(op Op) Result {
	return Result{Args: append([]int32(nil), op.Failure...)}
}
