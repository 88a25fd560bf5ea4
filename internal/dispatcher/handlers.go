package dispatcher

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/dshills/vuno/internal/engine"
	"github.com/dshills/vuno/internal/engine/buffer"
)

// HandlerFunc executes one command. The result is marshalled as JSON.
type HandlerFunc func(ctx context.Context, d *Dispatcher, args gjson.Result) (any, error)

var handlerTable = [kindCount]HandlerFunc{
	KindPing:           handlePing,
	KindCreateBuffer:   handleCreateBuffer,
	KindOpenFile:       handleOpenFile,
	KindGetContent:     handleGetContent,
	KindGetBufferInfo:  handleGetBufferInfo,
	KindListBuffers:    handleListBuffers,
	KindApplyEdit:      handleApplyEdit,
	KindUpdateCursor:   handleUpdateCursor,
	KindUpdateScroll:   handleUpdateScroll,
	KindSearch:         handleSearch,
	KindReplace:        handleReplace,
	KindGetEditHistory: handleGetEditHistory,
	KindUpdateContent:  handleUpdateContent,
	KindSaveFile:       handleSaveFile,
	KindCloseBuffer:    handleCloseBuffer,
	KindDeleteFile:     handleDeleteFile,
	KindMarkSaved:      handleMarkSaved,
	KindSetLanguage:    handleSetLanguage,
	KindReloadFile:     handleReloadFile,
	KindDiffBuffer:     handleDiffBuffer,
	KindStats:          handleStats,
	KindGetCLIArgs:     handleGetCLIArgs,
}

func bufferID(args gjson.Result) (buffer.ID, error) {
	n, err := argInt(args, "buffer_id")
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, badRequest("buffer_id must not be negative")
	}
	return buffer.ID(n), nil
}

func handlePing(context.Context, *Dispatcher, gjson.Result) (any, error) {
	return "pong", nil
}

func handleCreateBuffer(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	content, err := argString(args, "content", false)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, "path", false)
	if err != nil {
		return nil, err
	}
	return d.manager.CreateBuffer(content, path), nil
}

func handleOpenFile(ctx context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	path, err := argString(args, "path", true)
	if err != nil {
		return nil, err
	}
	return d.manager.OpenFile(ctx, path)
}

func handleGetContent(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	return d.manager.Content(id)
}

func handleGetBufferInfo(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	return d.manager.Info(id)
}

func handleListBuffers(_ context.Context, d *Dispatcher, _ gjson.Result) (any, error) {
	return d.manager.List(), nil
}

func handleApplyEdit(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	start, err := argInt(args, "start")
	if err != nil {
		return nil, err
	}
	end, err := argInt(args, "end")
	if err != nil {
		return nil, err
	}
	text, err := argString(args, "text", false)
	if err != nil {
		return nil, err
	}
	return nil, d.manager.ApplyEdit(id, start, end, text)
}

func handleUpdateCursor(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	pos, err := argInt(args, "position")
	if err != nil {
		return nil, err
	}
	return nil, d.manager.UpdateCursorPosition(id, pos)
}

func handleUpdateScroll(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	pos, err := argInt(args, "position")
	if err != nil {
		return nil, err
	}
	return nil, d.manager.UpdateScrollPosition(id, pos)
}

func handleSearch(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	query, err := argString(args, "query", false)
	if err != nil {
		return nil, err
	}
	caseSensitive, err := argBool(args, "case_sensitive")
	if err != nil {
		return nil, err
	}
	matches, err := d.manager.Search(id, query, caseSensitive)
	if err != nil {
		return nil, err
	}
	pairs := make([][2]int64, len(matches))
	for i, m := range matches {
		pairs[i] = [2]int64{m.Start, m.End}
	}
	return pairs, nil
}

func handleReplace(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	query, err := argString(args, "query", false)
	if err != nil {
		return nil, err
	}
	replacement, err := argString(args, "replacement", false)
	if err != nil {
		return nil, err
	}
	caseSensitive, err := argBool(args, "case_sensitive")
	if err != nil {
		return nil, err
	}
	return d.manager.Replace(id, query, replacement, caseSensitive)
}

func handleGetEditHistory(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	return d.manager.EditHistory(id), nil
}

func handleUpdateContent(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	content, err := argString(args, "content", true)
	if err != nil {
		return nil, err
	}
	return nil, d.manager.UpdateContent(id, content)
}

func handleSaveFile(ctx context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	path, err := argString(args, "path", false)
	if err != nil {
		return nil, err
	}
	return d.manager.SaveFile(ctx, id, path)
}

func handleCloseBuffer(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	return nil, d.manager.CloseBuffer(id)
}

func handleDeleteFile(ctx context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	path, err := argString(args, "path", true)
	if err != nil {
		return nil, err
	}
	return nil, d.manager.DeleteFile(ctx, path)
}

func handleMarkSaved(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	return nil, d.manager.MarkSaved(id)
}

func handleSetLanguage(_ context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	tag, err := argString(args, "language", true)
	if err != nil {
		return nil, err
	}
	return d.manager.SetLanguage(id, tag)
}

func handleReloadFile(ctx context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	force, err := argBool(args, "force")
	if err != nil {
		return nil, err
	}
	return nil, d.manager.ReloadFile(ctx, id, force)
}

func handleDiffBuffer(ctx context.Context, d *Dispatcher, args gjson.Result) (any, error) {
	id, err := bufferID(args)
	if err != nil {
		return nil, err
	}
	return d.manager.Diff(ctx, id)
}

// StatsResult is the get_stats payload.
type StatsResult struct {
	Buffers  engine.Stats    `json:"buffers"`
	Requests MetricsSnapshot `json:"requests"`
	Pool     PoolStats       `json:"pool"`
}

func handleStats(_ context.Context, d *Dispatcher, _ gjson.Result) (any, error) {
	return StatsResult{
		Buffers:  d.manager.Stats(),
		Requests: d.metrics.Snapshot(),
		Pool:     d.pool.Stats(),
	}, nil
}

func handleGetCLIArgs(_ context.Context, d *Dispatcher, _ gjson.Result) (any, error) {
	if file, ok := d.takeCLIFile(); ok {
		return file, nil
	}
	return nil, nil
}
