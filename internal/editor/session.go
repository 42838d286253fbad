// Package editor holds the in-memory editing session for one open board:
// block mutations, selection, save state, and a bounded undo/redo history.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"boardbuilder/internal/schema"
	"boardbuilder/internal/transform"
)

// SaveStatus is the persistence state of the open board.
type SaveStatus string

const (
	SaveIdle   SaveStatus = "idle"
	SaveSaving SaveStatus = "saving"
	SaveSaved  SaveStatus = "saved"
	SaveError  SaveStatus = "error"
)

var ErrNoBoard = errors.New("no board open in session")

// Session is the mutable editing state for one open board. All methods are
// safe for concurrent use.
type Session struct {
	mu sync.Mutex

	board  *transform.BoardMeta
	blocks []schema.Block

	selection  string
	loading    bool
	navigating bool

	status    SaveStatus
	lastSaved time.Time
	dirty     bool
	lastErr   error

	hist   *history
	logger *zap.Logger
}

func NewSession(logger *zap.Logger) *Session {
	return &Session{status: SaveIdle, logger: logger}
}

// Open loads a board into the session, discarding any previous state
// including the undo history of the board it replaces.
func (s *Session) Open(board *transform.BoardMeta, blocks []schema.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := *board
	s.board = &b
	s.blocks = copyBlocks(blocks)
	s.board.Blocks = copyBlocks(blocks)
	s.selection = ""
	s.loading = false
	s.navigating = false
	s.status = SaveIdle
	s.dirty = false
	s.lastErr = nil
	s.hist = newHistory(s.snapshot())
}

func (s *Session) Board() *transform.BoardMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return nil
	}
	b := *s.board
	return &b
}

func (s *Session) Blocks() []schema.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBlocks(s.blocks)
}

// Select changes the highlighted block. Never recorded in history.
func (s *Session) Select(blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = blockID
}

func (s *Session) Selection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

func (s *Session) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *Session) SetNavigating(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigating = v
}

func (s *Session) AddBlock(b schema.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ErrNoBoard
	}
	s.blocks = append(copyBlocks(s.blocks), b)
	s.afterMutation()
	return nil
}

func (s *Session) RemoveBlock(blockID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ErrNoBoard
	}
	next := make([]schema.Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		if b.ID != blockID {
			next = append(next, b)
		}
	}
	s.blocks = next
	if s.selection == blockID {
		s.selection = ""
	}
	s.afterMutation()
	return nil
}

// UpdateBlock applies mutate to the block with the given id, if present.
func (s *Session) UpdateBlock(blockID string, mutate func(*schema.Block)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ErrNoBoard
	}
	next := copyBlocks(s.blocks)
	for i := range next {
		if next[i].ID == blockID {
			mutate(&next[i])
			break
		}
	}
	s.blocks = next
	s.afterMutation()
	return nil
}

func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ErrNoBoard
	}
	s.board.Title = title
	s.afterMutation()
	return nil
}

func (s *Session) SetSlug(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.board == nil {
		return ErrNoBoard
	}
	s.board.Slug = slug
	s.afterMutation()
	return nil
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist != nil && s.hist.canUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist != nil && s.hist.canRedo()
}

func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hist == nil {
		return false
	}
	snap, ok := s.hist.undo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hist == nil {
		return false
	}
	snap, ok := s.hist.redo()
	if !ok {
		return false
	}
	s.restore(snap)
	return true
}

// Save runs persist while tracking save status. The session stays usable on
// failure; status moves to error and the state remains dirty.
func (s *Session) Save(ctx context.Context, persist func(context.Context) error) error {
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return ErrNoBoard
	}
	s.status = SaveSaving
	s.mu.Unlock()

	err := persist(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.status = SaveError
		s.lastErr = err
		s.logger.Warn("board save failed", zap.Error(err))
		return err
	}
	s.status = SaveSaved
	s.lastSaved = time.Now()
	s.dirty = false
	s.lastErr = nil
	return nil
}

// UpdateTitleOptimistic applies the title locally before persisting and
// rolls it back if persist fails.
func (s *Session) UpdateTitleOptimistic(ctx context.Context, title string, persist func(context.Context, string) error) error {
	s.mu.Lock()
	if s.board == nil {
		s.mu.Unlock()
		return ErrNoBoard
	}
	previous := s.board.Title
	s.board.Title = title
	s.afterMutation()
	s.mu.Unlock()

	if err := persist(ctx, title); err != nil {
		s.mu.Lock()
		s.board.Title = previous
		s.afterMutation()
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Session) Status() (SaveStatus, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.lastSaved, s.dirty, s.lastErr
}

// afterMutation keeps board.Blocks in lockstep with the working set and
// records the new state. Callers hold s.mu.
func (s *Session) afterMutation() {
	s.board.Blocks = copyBlocks(s.blocks)
	s.dirty = true
	s.hist.push(s.snapshot())
}

func (s *Session) snapshot() snapshot {
	return snapshot{
		blocks: copyBlocks(s.blocks),
		title:  s.board.Title,
		slug:   s.board.Slug,
	}
}

func (s *Session) restore(snap snapshot) {
	s.blocks = copyBlocks(snap.blocks)
	s.board.Blocks = copyBlocks(snap.blocks)
	s.board.Title = snap.title
	s.board.Slug = snap.slug
	s.dirty = true
}
