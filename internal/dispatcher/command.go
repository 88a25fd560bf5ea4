package dispatcher

// Kind identifies a request command.
type Kind uint8

// Command kinds. The zero value is not a valid command.
const (
	KindInvalid Kind = iota
	KindPing
	KindCreateBuffer
	KindOpenFile
	KindGetContent
	KindGetBufferInfo
	KindListBuffers
	KindApplyEdit
	KindUpdateCursor
	KindUpdateScroll
	KindSearch
	KindReplace
	KindGetEditHistory
	KindUpdateContent
	KindSaveFile
	KindCloseBuffer
	KindDeleteFile
	KindMarkSaved
	KindSetLanguage
	KindReloadFile
	KindDiffBuffer
	KindStats
	KindGetCLIArgs

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:        "",
	KindPing:           "ping",
	KindCreateBuffer:   "create_new_buffer",
	KindOpenFile:       "open_file",
	KindGetContent:     "get_content",
	KindGetBufferInfo:  "get_buffer_info",
	KindListBuffers:    "list_buffers",
	KindApplyEdit:      "apply_edit",
	KindUpdateCursor:   "update_cursor_position",
	KindUpdateScroll:   "update_scroll_position",
	KindSearch:         "search_in_buffer",
	KindReplace:        "replace_in_buffer",
	KindGetEditHistory: "get_edit_history",
	KindUpdateContent:  "update_buffer_content",
	KindSaveFile:       "save_file",
	KindCloseBuffer:    "close_buffer",
	KindDeleteFile:     "delete_file",
	KindMarkSaved:      "mark_as_saved",
	KindSetLanguage:    "set_language",
	KindReloadFile:     "reload_file",
	KindDiffBuffer:     "diff_buffer",
	KindStats:          "get_stats",
	KindGetCLIArgs:     "get_cli_args",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindPing; k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// String returns the wire name.
func (k Kind) String() string {
	if k >= kindCount || k == KindInvalid {
		return "invalid"
	}
	return kindNames[k]
}

// Valid reports whether k names a command.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// ParseKind returns the Kind for a wire name.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Kinds returns every valid command kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := KindPing; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
