package host

import (
	wazeroinfra "github.com/moshez/ward/infrastructure/wazero"
)

// Import names, all in module "env".
const (
	ImportDOMFlush            = "ward_dom_flush"
	ImportSetImageSrc         = "ward_set_image_src"
	ImportSetTimer            = "ward_set_timer"
	ImportExit                = "ward_exit"
	ImportKVPut               = "ward_idb_js_put"
	ImportKVGet               = "ward_idb_js_get"
	ImportKVDelete            = "ward_idb_js_delete"
	ImportFocusWindow         = "ward_js_focus_window"
	ImportVisibility          = "ward_js_get_visibility_state"
	ImportLog                 = "ward_js_log"
	ImportGetURL              = "ward_js_get_url"
	ImportGetURLHash          = "ward_js_get_url_hash"
	ImportSetURLHash          = "ward_js_set_url_hash"
	ImportReplaceState        = "ward_js_replace_state"
	ImportPushState           = "ward_js_push_state"
	ImportMeasureNode         = "ward_js_measure_node"
	ImportQuerySelector       = "ward_js_query_selector"
	ImportReadTextContent     = "ward_js_read_text_content"
	ImportCaretFromPoint      = "ward_js_caret_position_from_point"
	ImportMeasureTextOffset   = "ward_js_measure_text_offset"
	ImportAddEventListener    = "ward_js_add_event_listener"
	ImportRemoveEventListener = "ward_js_remove_event_listener"
	ImportPreventDefault      = "ward_js_prevent_default"
	ImportFetch               = "ward_js_fetch"
	ImportClipboardWriteText  = "ward_js_clipboard_write_text"
	ImportFileOpen            = "ward_js_file_open"
	ImportFileRead            = "ward_js_file_read"
	ImportFileClose           = "ward_js_file_close"
	ImportDecompress          = "ward_js_decompress"
	ImportBlobRead            = "ward_js_blob_read"
	ImportBlobFree            = "ward_js_blob_free"
	ImportNotificationRequest = "ward_js_notification_request_permission"
	ImportNotificationShow    = "ward_js_notification_show"
	ImportPushSubscribe       = "ward_js_push_subscribe"
	ImportPushGetSubscription = "ward_js_push_get_subscription"
	ImportParseHTML           = "ward_js_parse_html"
	ImportStashRead           = "ward_bridge_stash_read"
)

// imports is the session's host import table.
func (s *Session) imports() []wazeroinfra.HostFunction {
	return []wazeroinfra.HostFunction{
		// tree
		{Name: ImportDOMFlush, Params: 2, Fn: s.domFlush},
		{Name: ImportSetImageSrc, Params: 5, Fn: s.setImageSrc},
		{Name: ImportMeasureNode, Params: 1, Results: 1, Fn: s.measureNode},
		{Name: ImportQuerySelector, Params: 2, Results: 1, Fault: []int32{-1}, Fn: s.querySelector},
		{Name: ImportReadTextContent, Params: 1, Results: 1, Fn: s.readTextContent},
		{Name: ImportCaretFromPoint, Params: 3, Results: 1, Fault: []int32{-1}, Fn: s.caretPositionFromPoint},
		{Name: ImportMeasureTextOffset, Params: 2, Results: 1, Fn: s.measureTextOffset},

		// events
		{Name: ImportAddEventListener, Params: 4, Fn: s.addEventListener},
		{Name: ImportRemoveEventListener, Params: 1, Fn: s.removeEventListener},
		{Name: ImportPreventDefault, Fn: s.preventDefault},

		// lifecycle
		{Name: ImportSetTimer, Params: 2, Fn: s.setTimer},
		{Name: ImportExit, Fn: s.exit},

		// window
		{Name: ImportFocusWindow, Fn: s.focusWindow},
		{Name: ImportVisibility, Results: 1, Fault: []int32{1}, Fn: s.visibility},
		{Name: ImportLog, Params: 3, Fn: s.log},
		{Name: ImportGetURL, Params: 2, Results: 1, Fn: s.getURL},
		{Name: ImportGetURLHash, Params: 2, Results: 1, Fn: s.getURLHash},
		{Name: ImportSetURLHash, Params: 2, Fn: s.setURLHash},
		{Name: ImportReplaceState, Params: 2, Fn: s.replaceState},
		{Name: ImportPushState, Params: 2, Fn: s.pushState},

		// async capabilities
		{Name: ImportKVPut, Params: 5, Fn: s.kvPut},
		{Name: ImportKVGet, Params: 3, Fn: s.kvGet},
		{Name: ImportKVDelete, Params: 3, Fn: s.kvDelete},
		{Name: ImportFetch, Params: 3, Fn: s.fetch},
		{Name: ImportClipboardWriteText, Params: 3, Fn: s.clipboardWriteText},
		{Name: ImportFileOpen, Params: 2, Fn: s.fileOpen},
		{Name: ImportFileRead, Params: 4, Results: 1, Fn: s.fileRead},
		{Name: ImportFileClose, Params: 1, Fn: s.fileClose},
		{Name: ImportDecompress, Params: 4, Fn: s.decompress},
		{Name: ImportBlobRead, Params: 4, Results: 1, Fn: s.blobRead},
		{Name: ImportBlobFree, Params: 1, Fn: s.blobFree},
		{Name: ImportNotificationRequest, Params: 1, Fn: s.notificationRequestPermission},
		{Name: ImportNotificationShow, Params: 2, Fn: s.notificationShow},
		{Name: ImportPushSubscribe, Params: 3, Fn: s.pushSubscribe},
		{Name: ImportPushGetSubscription, Params: 1, Fn: s.pushGetSubscription},

		// data
		{Name: ImportParseHTML, Params: 2, Results: 1, Fn: s.parseHTML},
		{Name: ImportStashRead, Params: 3, Results: 1, Fn: s.stashRead},
	}
}
