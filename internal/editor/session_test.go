package editor_test

import (
	"context"
	"fmt"
	"testing"

	"boardbuilder/internal/editor"
	"boardbuilder/internal/schema"
	"boardbuilder/internal/transform"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func openSession(t *testing.T, blocks ...schema.Block) *editor.Session {
	t.Helper()
	s := editor.NewSession(zap.NewNop())
	s.Open(&transform.BoardMeta{
		ID:      uuid.NewString(),
		OwnerID: uuid.NewString(),
		Title:   "Launch Page",
		Slug:    "launch-page",
	}, blocks)
	return s
}

func textBlock(text string) schema.Block {
	return schema.Block{
		ID:   uuid.NewString(),
		Type: "text",
		Data: map[string]interface{}{"text": text},
	}
}

func TestSession_AddAndUndoRedo(t *testing.T) {
	s := openSession(t)
	b := textBlock("hello")

	assert.NoError(t, s.AddBlock(b))
	assert.Len(t, s.Blocks(), 1)
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	assert.True(t, s.Undo())
	assert.Empty(t, s.Blocks())
	assert.True(t, s.CanRedo())

	assert.True(t, s.Redo())
	assert.Len(t, s.Blocks(), 1)
	assert.Equal(t, b.ID, s.Blocks()[0].ID)
}

func TestSession_MutationDropsRedoTail(t *testing.T) {
	s := openSession(t)

	assert.NoError(t, s.AddBlock(textBlock("one")))
	assert.NoError(t, s.AddBlock(textBlock("two")))
	assert.True(t, s.Undo())
	assert.True(t, s.CanRedo())

	assert.NoError(t, s.AddBlock(textBlock("three")))
	assert.False(t, s.CanRedo(), "a new edit invalidates the redo branch")
}

func TestSession_SelectionNotInHistory(t *testing.T) {
	b := textBlock("hello")
	s := openSession(t, b)

	s.Select(b.ID)
	assert.False(t, s.CanUndo(), "selection changes are not undoable")
	assert.Equal(t, b.ID, s.Selection())
}

func TestSession_RemoveBlockClearsSelection(t *testing.T) {
	b := textBlock("hello")
	s := openSession(t, b)
	s.Select(b.ID)

	assert.NoError(t, s.RemoveBlock(b.ID))

	assert.Empty(t, s.Blocks())
	assert.Empty(t, s.Selection())
}

func TestSession_HistoryCappedAtFifty(t *testing.T) {
	s := openSession(t)

	for i := 0; i < 80; i++ {
		assert.NoError(t, s.AddBlock(textBlock(fmt.Sprintf("block %d", i))))
	}

	undos := 0
	for s.Undo() {
		undos++
	}
	assert.Equal(t, 49, undos, "fifty retained snapshots allow forty-nine undos")
	assert.Len(t, s.Blocks(), 31)
}

func TestSession_DataEditIsUndoable(t *testing.T) {
	b := textBlock("hello")
	s := openSession(t, b)

	assert.NoError(t, s.UpdateBlock(b.ID, func(blk *schema.Block) {
		blk.Data["text"] = "bye"
		blk.Data["align"] = "center"
	}))

	assert.True(t, s.CanUndo(), "content edits must create an undo step")
	assert.Equal(t, "bye", s.Blocks()[0].Data["text"])

	assert.True(t, s.Undo())
	restored := s.Blocks()[0].Data
	assert.Equal(t, "hello", restored["text"])
	assert.NotContains(t, restored, "align")

	assert.True(t, s.Redo())
	assert.Equal(t, "bye", s.Blocks()[0].Data["text"])
}

func TestSession_SnapshotsDoNotAliasLiveBlocks(t *testing.T) {
	b := textBlock("hello")
	s := openSession(t, b)

	// Mutating the returned copy must never reach the session's state.
	s.Blocks()[0].Data["text"] = "tampered"

	assert.Equal(t, "hello", s.Blocks()[0].Data["text"])
	assert.False(t, s.CanUndo())
}

func TestSession_NoOpMutationCollapses(t *testing.T) {
	b := textBlock("hello")
	s := openSession(t, b)

	assert.NoError(t, s.UpdateBlock(b.ID, func(*schema.Block) {}))

	assert.False(t, s.CanUndo(), "identical states collapse into one entry")
}

func TestSession_OpenResetsHistory(t *testing.T) {
	s := openSession(t)
	assert.NoError(t, s.AddBlock(textBlock("one")))
	assert.True(t, s.CanUndo())

	s.Open(&transform.BoardMeta{ID: uuid.NewString(), Title: "Other", Slug: "other"}, nil)

	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.Empty(t, s.Blocks())
}

func TestSession_UpdateTitleOptimistic_RollsBackOnError(t *testing.T) {
	s := openSession(t)

	err := s.UpdateTitleOptimistic(context.Background(), "New Title",
		func(context.Context, string) error { return assert.AnError })

	assert.Error(t, err)
	assert.Equal(t, "Launch Page", s.Board().Title)
}

func TestSession_UpdateTitleOptimistic_KeepsOnSuccess(t *testing.T) {
	s := openSession(t)

	err := s.UpdateTitleOptimistic(context.Background(), "New Title",
		func(context.Context, string) error { return nil })

	assert.NoError(t, err)
	assert.Equal(t, "New Title", s.Board().Title)
}

func TestSession_SaveTracksStatus(t *testing.T) {
	s := openSession(t)
	assert.NoError(t, s.AddBlock(textBlock("one")))

	err := s.Save(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)

	status, lastSaved, dirty, lastErr := s.Status()
	assert.Equal(t, editor.SaveSaved, status)
	assert.False(t, lastSaved.IsZero())
	assert.False(t, dirty)
	assert.NoError(t, lastErr)
}

func TestSession_SaveFailureStaysDirty(t *testing.T) {
	s := openSession(t)
	assert.NoError(t, s.AddBlock(textBlock("one")))

	err := s.Save(context.Background(), func(context.Context) error { return assert.AnError })
	assert.Error(t, err)

	status, _, dirty, lastErr := s.Status()
	assert.Equal(t, editor.SaveError, status)
	assert.True(t, dirty)
	assert.Error(t, lastErr)
}

func TestSession_NoBoardOpen(t *testing.T) {
	s := editor.NewSession(zap.NewNop())

	assert.ErrorIs(t, s.AddBlock(textBlock("x")), editor.ErrNoBoard)
	assert.ErrorIs(t, s.SetTitle("x"), editor.ErrNoBoard)
	assert.False(t, s.Undo())
}
