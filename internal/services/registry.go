package services

import (
	"context"
	"sync"
	"time"

	"feedbackboard/internal/observability"
	"feedbackboard/internal/serviceinterfaces"
	"feedbackboard/internal/storage"
)

// DefaultBoardID names the shared board that uses the bare storage keys
const DefaultBoardID = ""

type registryEntry struct {
	board    *FeedbackBoard
	lastUsed time.Time
}

// BoardRegistry hands out one lazily loaded FeedbackBoard per board id. Session boards
// idle for longer than BoardOptions.IdleTimeout are dropped when a new board is opened,
// and the least recently used ones go once BoardOptions.MaxBoards are open. Dropping a
// board only forgets its rating filter; records and display mode live in storage.
type BoardRegistry struct {
	mu         sync.Mutex
	store      storage.KVStore
	logger     *observability.Logger
	opts       BoardOptions
	perSession bool
	boards     map[string]*registryEntry
}

// NewBoardRegistry creates a registry over store. With perSession false every id maps to
// the default board.
func NewBoardRegistry(store storage.KVStore, logger *observability.Logger, opts BoardOptions, perSession bool) *BoardRegistry {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &BoardRegistry{
		store:      store,
		logger:     logger,
		opts:       opts.withDefaults(),
		perSession: perSession,
		boards:     make(map[string]*registryEntry),
	}
}

// StorageKeyPrefix is the namespace of a board's keys
func StorageKeyPrefix(boardID string) string {
	if boardID == DefaultBoardID {
		return ""
	}
	return boardID + ":"
}

// Board implements serviceinterfaces.BoardRegistryInterface
func (r *BoardRegistry) Board(ctx context.Context, boardID string) (serviceinterfaces.FeedbackBoardInterface, error) {
	return r.FeedbackBoard(ctx, boardID)
}

// TransientBoard implements serviceinterfaces.BoardRegistryInterface. A session board that
// is not open yet is loaded without being kept, so read-only visits from clients that
// never come back cost no memory.
func (r *BoardRegistry) TransientBoard(ctx context.Context, boardID string) (serviceinterfaces.FeedbackBoardInterface, error) {
	if !r.perSession || boardID == DefaultBoardID {
		return r.FeedbackBoard(ctx, boardID)
	}

	r.mu.Lock()
	entry, ok := r.boards[boardID]
	if ok {
		entry.lastUsed = r.opts.Now()
	}
	r.mu.Unlock()
	if ok {
		return entry.board, nil
	}

	board := r.newBoard(boardID)
	if err := board.Load(ctx); err != nil {
		return nil, err
	}
	return board, nil
}

// FeedbackBoard returns the loaded board for boardID, creating it on first use
func (r *BoardRegistry) FeedbackBoard(ctx context.Context, boardID string) (result0 *FeedbackBoard, err error) {
	if !r.perSession {
		boardID = DefaultBoardID
	}

	r.mu.Lock()
	now := r.opts.Now()
	entry, ok := r.boards[boardID]
	if !ok {
		r.evictLocked(ctx, now)
		entry = &registryEntry{board: r.newBoard(boardID)}
		r.boards[boardID] = entry
	}
	entry.lastUsed = now
	r.mu.Unlock()

	if ok {
		return entry.board, nil
	}

	// Loading outside the registry lock keeps one slow board from blocking the others.
	// A failed load forgets the board so the next call retries.
	if err := entry.board.Load(ctx); err != nil {
		r.mu.Lock()
		if r.boards[boardID] == entry {
			delete(r.boards, boardID)
		}
		r.mu.Unlock()
		return nil, err
	}
	r.logger.Debug(ctx, "Board opened", map[string]interface{}{"board_id": boardID})
	return entry.board, nil
}

func (r *BoardRegistry) newBoard(boardID string) *FeedbackBoard {
	return NewFeedbackBoard(storage.WithPrefix(r.store, StorageKeyPrefix(boardID)), r.logger, r.opts)
}

// evictLocked makes room for one more board; callers hold r.mu
func (r *BoardRegistry) evictLocked(ctx context.Context, now time.Time) {
	idle := 0
	for id, entry := range r.boards {
		if id != DefaultBoardID && now.Sub(entry.lastUsed) > r.opts.IdleTimeout {
			delete(r.boards, id)
			idle++
		}
	}

	crowded := 0
	for len(r.boards) >= r.opts.MaxBoards {
		oldestID, found := r.leastRecentlyUsedLocked()
		if !found {
			break
		}
		delete(r.boards, oldestID)
		crowded++
	}

	if idle+crowded > 0 {
		r.logger.Debug(ctx, "Boards evicted", map[string]interface{}{
			"idle":      idle,
			"over_max":  crowded,
			"remaining": len(r.boards),
		})
	}
}

func (r *BoardRegistry) leastRecentlyUsedLocked() (string, bool) {
	var (
		oldestID string
		oldest   time.Time
		found    bool
	)
	for id, entry := range r.boards {
		if id == DefaultBoardID {
			continue
		}
		if !found || entry.lastUsed.Before(oldest) {
			oldestID, oldest, found = id, entry.lastUsed, true
		}
	}
	return oldestID, found
}

// Len returns how many boards are open
func (r *BoardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
