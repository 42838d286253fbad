package editor

import (
	"reflect"

	"boardbuilder/internal/schema"
)

// historyLimit caps undo depth; the oldest snapshot is evicted past this.
const historyLimit = 50

// snapshot is one undoable editor state. Selection is deliberately not part
// of it: changing what is selected must never create an undo step.
type snapshot struct {
	blocks []schema.Block
	title  string
	slug   string
}

type history struct {
	entries []snapshot
	index   int
}

func newHistory(initial snapshot) *history {
	return &history{entries: []snapshot{initial}, index: 0}
}

// push records a new state, dropping any redo tail. Consecutive equal states
// collapse into one entry.
func (h *history) push(s snapshot) {
	if snapshotsEqual(h.entries[h.index], s) {
		return
	}
	h.entries = append(h.entries[:h.index+1], s)
	if len(h.entries) > historyLimit {
		h.entries = h.entries[len(h.entries)-historyLimit:]
	}
	h.index = len(h.entries) - 1
}

func (h *history) canUndo() bool { return h.index > 0 }
func (h *history) canRedo() bool { return h.index < len(h.entries)-1 }

func (h *history) undo() (snapshot, bool) {
	if !h.canUndo() {
		return snapshot{}, false
	}
	h.index--
	return h.entries[h.index], true
}

func (h *history) redo() (snapshot, bool) {
	if !h.canRedo() {
		return snapshot{}, false
	}
	h.index++
	return h.entries[h.index], true
}

func snapshotsEqual(a, b snapshot) bool {
	if a.title != b.title || a.slug != b.slug || len(a.blocks) != len(b.blocks) {
		return false
	}
	for i := range a.blocks {
		if !blocksEqual(a.blocks[i], b.blocks[i]) {
			return false
		}
	}
	return true
}

func blocksEqual(a, b schema.Block) bool {
	if a.ID != b.ID || a.Type != b.Type {
		return false
	}
	if (a.Position == nil) != (b.Position == nil) {
		return false
	}
	if a.Position != nil && *a.Position != *b.Position {
		return false
	}
	if (a.Size == nil) != (b.Size == nil) {
		return false
	}
	if a.Size != nil && *a.Size != *b.Size {
		return false
	}
	if a.ParentID != b.ParentID || a.ContainerID != b.ContainerID {
		return false
	}
	return reflect.DeepEqual(a.Data, b.Data) && reflect.DeepEqual(a.Styles, b.Styles)
}

// copyBlocks copies the slice along with each block's maps and pointers, so a
// snapshot can never alias the live editing state. An in-place data edit must
// leave prior snapshots untouched or undo has nothing to restore.
func copyBlocks(blocks []schema.Block) []schema.Block {
	out := make([]schema.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b
		out[i].Data = copyMap(b.Data)
		out[i].Styles = copyMap(b.Styles)
		if b.Position != nil {
			p := *b.Position
			out[i].Position = &p
		}
		if b.Size != nil {
			sz := *b.Size
			out[i].Size = &sz
		}
	}
	return out
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
