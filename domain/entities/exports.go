package entities

// Guest exports the host calls. A guest may omit any of them; deliveries to a
// missing export are dropped.
const (
	ExportInit              = "ward_node_init"
	ExportTimerFire         = "ward_timer_fire"
	ExportEventFire         = "ward_on_event"
	ExportKVFire            = "ward_idb_fire"
	ExportKVFireGet         = "ward_idb_fire_get"
	ExportFetchComplete     = "ward_on_fetch_complete"
	ExportClipboardComplete = "ward_on_clipboard_complete"
	ExportFileOpen          = "ward_on_file_open"
	ExportDecompressed      = "ward_on_decompress_complete"
	ExportPermissionResult  = "ward_on_permission_result"
	ExportPushSubscription  = "ward_on_push_subscribe"
	ExportMeasureSet        = "ward_measure_set"
	ExportStashSetInt       = "ward_bridge_stash_set_int"
	ExportInitialize        = "_initialize"
)

// Side-channel slots written through ExportStashSetInt before a delivery that
// staged bytes.
const (
	SlotStashID  int32 = 0
	SlotStashLen int32 = 1
)

// ImportModule is the module name every host import is registered under.
const ImportModule = "env"
